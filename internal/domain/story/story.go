package story

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/storyline/internal/domain"
)

// Field bounds, counted in runes.
const (
	MinTitleLen = 2
	MaxTitleLen = 20
	MinBodyLen  = 10
	MaxBodyLen  = 999
)

// Draft is a validated {title, body} pair ready to be inserted.
type Draft struct {
	title string
	body  string
}

// NewDraft validates a new story's fields.
func NewDraft(title, body string) (Draft, error) {
	if err := ValidateTitle(title); err != nil {
		return Draft{}, err
	}
	if err := ValidateBody(body); err != nil {
		return Draft{}, err
	}
	return Draft{title: title, body: body}, nil
}

// Title returns the draft title.
func (d Draft) Title() string { return d.title }

// Body returns the draft body.
func (d Draft) Body() string { return d.body }

// EmbeddingText returns the text the embedding of this draft is computed from.
func (d Draft) EmbeddingText() string { return EmbeddingText(d.title, d.body) }

// ValidateTitle checks the title bounds.
func ValidateTitle(title string) error {
	return validateText("title", title, MinTitleLen, MaxTitleLen)
}

// ValidateBody checks the body bounds.
func ValidateBody(body string) error {
	return validateText("body", body, MinBodyLen, MaxBodyLen)
}

func validateText(name, v string, minLen, maxLen int) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required: %w", name, domain.ErrValidation)
	}
	n := utf8.RuneCountInString(v)
	if n < minLen || n > maxLen {
		return fmt.Errorf("%s must be %d-%d characters, got %d: %w", name, minLen, maxLen, n, domain.ErrValidation)
	}
	return nil
}

// EmbeddingText joins title and body into the embedding input.
func EmbeddingText(title, body string) string {
	return title + "\n\n" + body
}

// Digest fingerprints an embedding input so a vector can be matched to the text it came from.
func Digest(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Story is the story aggregate.
type Story struct {
	id        ID
	title     string
	body      string
	createdOn time.Time
	embedding []float32
	indexed   bool
}

// Reconstruct creates a Story without validation (storage hydration).
func Reconstruct(id ID, title, body string, createdOn time.Time, embedding []float32, indexed bool) Story {
	return Story{
		id: id, title: title, body: body, createdOn: createdOn,
		embedding: embedding, indexed: indexed,
	}
}

// ID returns the story identifier.
func (s *Story) ID() ID { return s.id }

// Title returns the story title.
func (s *Story) Title() string { return s.title }

// Body returns the story body.
func (s *Story) Body() string { return s.body }

// CreatedOn returns the creation timestamp.
func (s *Story) CreatedOn() time.Time { return s.createdOn }

// Embedding returns the stored vector, nil in projections that exclude it.
func (s *Story) Embedding() []float32 { return s.embedding }

// Indexed reports whether an embedding of the current text is stored.
func (s *Story) Indexed() bool { return s.indexed }

// EmbeddingText returns the text the embedding of this story is computed from.
func (s *Story) EmbeddingText() string { return EmbeddingText(s.title, s.body) }

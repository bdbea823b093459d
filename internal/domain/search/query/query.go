package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/storyline/internal/domain"
)

// MaxLength is the maximum search query length in runes.
const MaxLength = 4096

// Query is a validated free-text search query.
type Query struct {
	text string
}

// New validates a search query. Blank or oversized text is domain.ErrInvalidQuery.
func New(text string) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, fmt.Errorf("query is required: %w", domain.ErrInvalidQuery)
	}
	if n := utf8.RuneCountInString(text); n > MaxLength {
		return Query{}, fmt.Errorf("query too long (%d > %d): %w", n, MaxLength, domain.ErrInvalidQuery)
	}
	return Query{text: text}, nil
}

// Text returns the query text as supplied.
func (q Query) Text() string { return q.text }

package story

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/storyline/internal/domain"
)

// idLength is the length of a canonical hyphenated UUID.
const idLength = 36

// ID is a story identifier: a canonical UUIDv7 string.
// Version 7 UUIDs sort by creation time, so ids also reflect allocation order.
type ID string

// NewID allocates a fresh identifier. uuid.NewV7 is monotonic within the process.
func NewID() (ID, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate story id: %w", err)
	}
	return ID(u.String()), nil
}

// ParseID validates the shape of a client-supplied identifier.
// Anything other than a canonical lowercase or uppercase version 7 UUID is rejected
// with domain.ErrInvalidIdentifier, so malformed ids never reach the store.
func ParseID(s string) (ID, error) {
	if len(s) != idLength {
		return "", fmt.Errorf("story id must be %d characters: %w", idLength, domain.ErrInvalidIdentifier)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("story id is not a uuid: %w", domain.ErrInvalidIdentifier)
	}
	if u.Version() != 7 {
		return "", fmt.Errorf("story id has version %d, want 7: %w", u.Version(), domain.ErrInvalidIdentifier)
	}
	return ID(u.String()), nil
}

// String returns the identifier text.
func (id ID) String() string { return string(id) }

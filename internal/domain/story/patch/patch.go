package patch

import (
	"fmt"

	"github.com/kailas-cloud/storyline/internal/domain"
	"github.com/kailas-cloud/storyline/internal/domain/story"
)

// Patch is a partial story update. Nil fields are left unchanged.
type Patch struct {
	title *string
	body  *string
}

// New validates and creates a Patch. At least one field must be provided,
// and every provided field must satisfy the same bounds as on create.
func New(title, body *string) (Patch, error) {
	if title == nil && body == nil {
		return Patch{}, fmt.Errorf("at least one of title or body must be provided: %w", domain.ErrValidation)
	}
	if title != nil {
		if err := story.ValidateTitle(*title); err != nil {
			return Patch{}, err
		}
	}
	if body != nil {
		if err := story.ValidateBody(*body); err != nil {
			return Patch{}, err
		}
	}
	return Patch{title: title, body: body}, nil
}

// Apply returns the title and body after applying the patch to current values.
func (p Patch) Apply(title, body string) (string, string) {
	if p.title != nil {
		title = *p.title
	}
	if p.body != nil {
		body = *p.body
	}
	return title, body
}

package indexing

import (
	"context"

	"github.com/kailas-cloud/storyline/internal/domain"
	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
)

// Repository is the slice of the story store the indexer needs.
type Repository interface {
	Get(ctx context.Context, id domstory.ID) (domstory.Story, error)
	SetVector(ctx context.Context, id domstory.ID, digest string, vector []float32) error
	ListUnindexed(ctx context.Context) ([]domstory.ID, error)
}

// Embedder vectorizes story text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

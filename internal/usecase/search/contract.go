package search

import (
	"context"

	"github.com/kailas-cloud/storyline/internal/domain"
	"github.com/kailas-cloud/storyline/internal/domain/search/result"
)

// Index runs k-nearest-neighbor queries over story embeddings.
type Index interface {
	KNN(ctx context.Context, vector []float32, k int) ([]result.Result, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

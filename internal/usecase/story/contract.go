package story

import (
	"context"

	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
)

// Repository defines the storage contract for stories.
type Repository interface {
	Insert(ctx context.Context, d domstory.Draft, vector []float32) (domstory.Story, error)
	List(ctx context.Context) ([]domstory.Story, error)
	Get(ctx context.Context, id domstory.ID) (domstory.Story, error)
	Replace(ctx context.Context, id domstory.ID, expectDigest, title, body string, vector []float32) error
	Delete(ctx context.Context, id domstory.ID) error
}

// Indexer decides whether a text write carries its embedding or is indexed later.
type Indexer interface {
	// Prepare returns the vector to store with the text, or nil to store it unindexed.
	Prepare(ctx context.Context, title, body string) ([]float32, error)
	// Schedule queues an unindexed story for background indexing.
	Schedule(id domstory.ID)
}

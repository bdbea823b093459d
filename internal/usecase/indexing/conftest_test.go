package indexing

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/storyline/internal/domain"
	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
)

type mockRepo struct {
	mu              sync.Mutex
	getFn           func(ctx context.Context, id domstory.ID) (domstory.Story, error)
	setVectorFn     func(ctx context.Context, id domstory.ID, digest string, vector []float32) error
	listUnindexedFn func(ctx context.Context) ([]domstory.ID, error)
	stored          map[domstory.ID]string
}

func (m *mockRepo) Get(ctx context.Context, id domstory.ID) (domstory.Story, error) {
	return m.getFn(ctx, id)
}

func (m *mockRepo) SetVector(ctx context.Context, id domstory.ID, digest string, vector []float32) error {
	if m.setVectorFn != nil {
		if err := m.setVectorFn(ctx, id, digest, vector); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		m.stored = map[domstory.ID]string{}
	}
	m.stored[id] = digest
	return nil
}

func (m *mockRepo) ListUnindexed(ctx context.Context) ([]domstory.ID, error) {
	return m.listUnindexedFn(ctx)
}

func (m *mockRepo) storedDigest(id domstory.ID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.stored[id]
	return d, ok
}

type mockEmbedder struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0, 0}, TotalTokens: 3}, nil
}

func (m *mockEmbedder) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

const (
	testID    domstory.ID = "01890a5d-ac96-774b-bcce-b302099a8057"
	testTitle             = "Cats"
	testBody              = "A story about cats and dogs."
)

func unindexedStory(id domstory.ID) domstory.Story {
	return domstory.Reconstruct(id, testTitle, testBody, time.Unix(0, 0), nil, false)
}

package story

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/storyline/internal/domain"
	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
)

// memRepo is an in-memory Repository with the same guard semantics as the redis one.
type memRepo struct {
	mu      sync.Mutex
	rows    map[domstory.ID]domstory.Story
	order   []domstory.ID
	calls   int
	err     error
	replace func(id domstory.ID) error // optional hook run before each Replace
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[domstory.ID]domstory.Story{}}
}

func (m *memRepo) Insert(_ context.Context, d domstory.Draft, vector []float32) (domstory.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domstory.Story{}, m.err
	}
	id, err := domstory.NewID()
	if err != nil {
		return domstory.Story{}, err
	}
	st := domstory.Reconstruct(id, d.Title(), d.Body(), time.Now().UTC(), vector, vector != nil)
	m.rows[id] = st
	m.order = append(m.order, id)
	return st, nil
}

func (m *memRepo) List(_ context.Context) ([]domstory.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []domstory.Story{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if st, ok := m.rows[m.order[i]]; ok {
			out = append(out, domstory.Reconstruct(st.ID(), st.Title(), st.Body(), st.CreatedOn(), nil, st.Indexed()))
		}
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id domstory.ID) (domstory.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domstory.Story{}, m.err
	}
	st, ok := m.rows[id]
	if !ok {
		return domstory.Story{}, domain.ErrNotFound
	}
	return st, nil
}

func (m *memRepo) Replace(
	_ context.Context, id domstory.ID, expectDigest, title, body string, vector []float32,
) error {
	if m.replace != nil {
		if err := m.replace(id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	st, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if domstory.Digest(st.EmbeddingText()) != expectDigest {
		return domain.ErrConflict
	}
	m.rows[id] = domstory.Reconstruct(id, title, body, st.CreatedOn(), vector, vector != nil)
	return nil
}

func (m *memRepo) Delete(_ context.Context, id domstory.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// setTitle mutates a stored story behind the service's back.
func (m *memRepo) setTitle(id domstory.ID, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.rows[id]
	m.rows[id] = domstory.Reconstruct(id, title, st.Body(), st.CreatedOn(), nil, false)
}

func (m *memRepo) storeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockIndexer struct {
	vector    []float32
	err       error
	prepared  []string
	scheduled []domstory.ID
}

func (m *mockIndexer) Prepare(_ context.Context, title, body string) ([]float32, error) {
	m.prepared = append(m.prepared, domstory.EmbeddingText(title, body))
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockIndexer) Schedule(id domstory.ID) {
	m.scheduled = append(m.scheduled, id)
}

func syncIndexer() *mockIndexer { return &mockIndexer{vector: []float32{1, 0}} }

func ptr(s string) *string { return &s }

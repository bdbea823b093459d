package story

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/storyline/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	hmgetMultiFn  func(ctx context.Context, keys []string, fields []string) ([]map[string]string, error)
	hupdateFn     func(ctx context.Context, key string, upd db.HashUpdate) (db.UpdateResult, error)
	delFn         func(ctx context.Context, key string) (bool, error)
	incrFn        func(ctx context.Context, key string) (int64, error)
	zaddFn        func(ctx context.Context, key string, score float64, member string) error
	zrevRangeFn   func(ctx context.Context, key string, start, stop int64) ([]string, error)
	zremFn        func(ctx context.Context, key string, member string) error
	getFn         func(ctx context.Context, key string) ([]byte, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	backfillingFn func(ctx context.Context, name string) (bool, error)
	searchListFn  func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HMGetMulti(ctx context.Context, keys []string, fields []string) ([]map[string]string, error) {
	if m.hmgetMultiFn != nil {
		return m.hmgetMultiFn(ctx, keys, fields)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) HUpdate(ctx context.Context, key string, upd db.HashUpdate) (db.UpdateResult, error) {
	if m.hupdateFn != nil {
		return m.hupdateFn(ctx, key, upd)
	}
	return db.UpdateApplied, nil
}

func (m *mockStore) Del(ctx context.Context, key string) (bool, error) {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return true, nil
}

func (m *mockStore) Incr(ctx context.Context, key string) (int64, error) {
	if m.incrFn != nil {
		return m.incrFn(ctx, key)
	}
	return 1, nil
}

func (m *mockStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	if m.zaddFn != nil {
		return m.zaddFn(ctx, key, score, member)
	}
	return nil
}

func (m *mockStore) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.zrevRangeFn != nil {
		return m.zrevRangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func (m *mockStore) ZRem(ctx context.Context, key string, member string) error {
	if m.zremFn != nil {
		return m.zremFn(ctx, key, member)
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) IndexBackfilling(ctx context.Context, name string) (bool, error) {
	if m.backfillingFn != nil {
		return m.backfillingFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T, s *mockStore) *Repo {
	t.Helper()
	keys, err := db.NewKeyspace("test")
	if err != nil {
		t.Fatalf("keyspace: %v", err)
	}
	r := New(s, keys, 4, DefaultHNSW())
	r.now = func() time.Time { return fixedNow }
	r.backfillPoll = time.Millisecond
	return r
}

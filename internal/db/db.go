package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces below
type Store interface {
	Pinger
	HashStore
	KVStore
	SortedSetStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UpdateResult is the outcome of a conditional hash update.
type UpdateResult int

const (
	// UpdateApplied means the hash existed, the guard held and the fields were written.
	UpdateApplied UpdateResult = iota
	// UpdateMissing means the key did not exist; nothing was written.
	UpdateMissing
	// UpdateGuardFailed means the guard field did not hold the expected value; nothing was written.
	UpdateGuardFailed
)

// HashUpdate describes an atomic in-place hash mutation.
// The key is never created: an update against a missing key is UpdateMissing.
type HashUpdate struct {
	Set map[string]string
	Del []string

	// GuardField, when non-empty, must currently equal GuardValue for the update to apply.
	GuardField string
	GuardValue string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HMGetMulti reads the given fields of many hashes in one round-trip.
	// A missing key yields a nil map at its position.
	HMGetMulti(ctx context.Context, keys []string, fields []string) ([]map[string]string, error)
	HUpdate(ctx context.Context, key string, upd HashUpdate) (UpdateResult, error)
	// Del removes a key and reports whether it existed.
	Del(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// SortedSetStore provides the sorted set operations used for ordered listings.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	// ZRevRange returns members from highest to lowest score; stop=-1 means to the end.
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRem(ctx context.Context, key string, member string) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	// IndexBackfilling reports whether the index is still scanning keys that existed
	// before it was created.
	IndexBackfilling(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchList(ctx context.Context, q *ListQuery) (*SearchResult, error)
}

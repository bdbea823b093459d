package story

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/storyline/internal/db"
)

// Hash fields of a stored story.
const (
	fieldTitle     = "title"
	fieldBody      = "body"
	fieldCreatedOn = "created_on"
	fieldSeq       = "seq"
	fieldIndexed   = "indexed"
	fieldDigest    = "digest"
	fieldEmbedding = "embedding"
)

// projection is the field set returned to callers: everything except the embedding.
var projection = []string{fieldTitle, fieldBody, fieldCreatedOn, fieldIndexed}

// HNSWConfig holds HNSW index tuning knobs.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// DefaultHNSW returns the default HNSW parameters.
func DefaultHNSW() HNSWConfig {
	return HNSWConfig{M: 16, EFConstruct: 200}
}

func buildIndex(keys db.Keyspace, dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(keys.Index()).
		Prefix(keys.StoryPrefix()).
		Numeric(fieldCreatedOn).
		Numeric(fieldSeq).
		Numeric(fieldIndexed).
		Vector(fieldEmbedding, db.VectorSpec{
			Algorithm:   db.VectorHNSW,
			Dim:         dim,
			Distance:    db.DistanceCosine,
			M:           hnsw.M,
			EFConstruct: hnsw.EFConstruct,
		}).As("vector").
		Build()
	if err != nil {
		return nil, fmt.Errorf("build story index: %w", err)
	}
	return def, nil
}

// EnsureIndex creates the story vector index if it does not exist yet. Returns true if created.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	def, err := buildIndex(r.keys, r.dim, r.hnsw)
	if err != nil {
		return false, err
	}

	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return false, storeErr("index info", err)
	}
	if exists {
		return false, nil
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, storeErr("create index", err)
	}
	return true, nil
}

// RebuildIndex drops the story index and creates it from the current definition.
// Story hashes are kept; it returns once the new index has scanned them all.
func (r *Repo) RebuildIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.keys.Index()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return storeErr("drop index", err)
	}
	if _, err := r.EnsureIndex(ctx); err != nil {
		return err
	}
	return r.waitBackfill(ctx)
}

func (r *Repo) waitBackfill(ctx context.Context) error {
	ticker := time.NewTicker(r.backfillPoll)
	defer ticker.Stop()

	for {
		busy, err := r.store.IndexBackfilling(ctx, r.keys.Index())
		if err != nil {
			return storeErr("index info", err)
		}
		if !busy {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for index backfill: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

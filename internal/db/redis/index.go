package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/storyline/internal/db"
)

// FT.INFO flags set while an index scans pre-existing keys: RediSearch reports
// "indexing", valkey-search "backfill_in_progress".
var backfillFlags = []string{"indexing", "backfill_in_progress"}

// CreateIndex runs FT.CREATE for def. An existing index is reported as db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := def.Args()
	if err != nil {
		return fmt.Errorf("index definition: %w", err)
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Key: def.Name, Err: err}
	}
	return nil
}

// DropIndex removes an FT index by name.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Key: name, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Key: name, Err: err}
	}
	return true, nil
}

// IndexBackfilling reads FT.INFO and reports whether the initial key scan is still running.
func (s *Store) IndexBackfilling(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	info, err := s.do(ctx, cmd).AsMap()
	if err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, db.ErrIndexNotFound
		}
		return false, &db.Error{Op: db.OpIndexInfo, Key: name, Err: err}
	}
	for _, flag := range backfillFlags {
		if busy, ok := infoFlag(info, flag); ok {
			return busy, nil
		}
	}
	return false, nil
}

func infoFlag(info map[string]rueidis.RedisMessage, key string) (bool, bool) {
	v, ok := info[key]
	if !ok {
		return false, false
	}
	n, err := v.AsInt64()
	if err != nil {
		return false, false
	}
	return n != 0, true
}

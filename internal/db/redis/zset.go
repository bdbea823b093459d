package redis

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/storyline/internal/db"
)

// ZAdd adds or rescores a member of a sorted set.
func (s *Store) ZAdd(ctx context.Context, key string, score float64, member string) error {
	cmd := s.b().Zadd().Key(key).ScoreMember().ScoreMember(score, member).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Key: key, Err: err}
	}
	return nil
}

// ZRevRange returns members ordered from the highest score down.
func (s *Store) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Arbitrary("ZREVRANGE").Keys(key).
		Args(strconv.FormatInt(start, 10), strconv.FormatInt(stop, 10)).
		Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRevRange, Key: key, Err: err}
	}
	return members, nil
}

// ZRem removes a member from a sorted set. Removing an absent member is not an error.
func (s *Store) ZRem(ctx context.Context, key string, member string) error {
	cmd := s.b().Zrem().Key(key).Member(member).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Key: key, Err: err}
	}
	return nil
}

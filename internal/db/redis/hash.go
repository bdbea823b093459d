package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/storyline/internal/db"
)

// hupdateScript applies HashUpdate atomically.
// KEYS[1] = key; ARGV = guardField, guardValue, nSet, set pairs..., del fields...
// Returns 1 applied, 0 missing key, -1 guard mismatch.
var hupdateScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
if ARGV[1] ~= '' and redis.call('HGET', KEYS[1], ARGV[1]) ~= ARGV[2] then return -1 end
local n = tonumber(ARGV[3])
local last = 3 + n * 2
if n > 0 then redis.call('HSET', KEYS[1], unpack(ARGV, 4, last)) end
for i = last + 1, #ARGV do redis.call('HDEL', KEYS[1], ARGV[i]) end
return 1
`)

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Key: key, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Key: key, Err: err}
	}
	return m, nil
}

// HMGetMulti fetches selected fields of multiple hashes in a single DoMulti round-trip.
// Absent fields are omitted from the map; a key with no fields at all yields nil.
func (s *Store) HMGetMulti(ctx context.Context, keys []string, fields []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if len(fields) == 0 {
		return nil, &db.Error{Op: db.OpHMGet, Err: fmt.Errorf("at least one field is required")}
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hmget().Key(key).Field(fields...).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))

	for i, res := range results {
		values, err := res.ToArray()
		if err != nil {
			return nil, &db.Error{Op: db.OpHMGet, Key: keys[i], Err: err}
		}
		var m map[string]string
		for j := 0; j < len(values) && j < len(fields); j++ {
			if values[j].IsNil() {
				continue
			}
			v, err := values[j].ToString()
			if err != nil {
				continue
			}
			if m == nil {
				m = make(map[string]string, len(fields))
			}
			m[fields[j]] = v
		}
		out[i] = m
	}

	return out, nil
}

// HUpdate mutates an existing hash in one server-side step.
func (s *Store) HUpdate(ctx context.Context, key string, upd db.HashUpdate) (db.UpdateResult, error) {
	args := make([]string, 0, 3+len(upd.Set)*2+len(upd.Del))
	args = append(args, upd.GuardField, upd.GuardValue, strconv.Itoa(len(upd.Set)))
	for k, v := range upd.Set {
		args = append(args, k, v)
	}
	args = append(args, upd.Del...)

	code, err := hupdateScript.Exec(ctx, s.client, []string{key}, args).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpHUpdate, Key: key, Err: err}
	}
	switch code {
	case 1:
		return db.UpdateApplied, nil
	case 0:
		return db.UpdateMissing, nil
	case -1:
		return db.UpdateGuardFailed, nil
	default:
		return 0, &db.Error{Op: db.OpHUpdate, Key: key, Err: fmt.Errorf("unexpected script result %d", code)}
	}
}

// Del deletes a key and reports whether it existed.
func (s *Store) Del(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Del().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpDel, Key: key, Err: err}
	}
	return n > 0, nil
}

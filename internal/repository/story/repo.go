// Package story stores stories as hashes plus a creation-order sorted set.
package story

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/storyline/internal/db"
	"github.com/kailas-cloud/storyline/internal/domain"
	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
)

// unindexedPageSize is the width of one creation-sequence window in the reindex sweep.
// A window holds at most this many stories, so one FT.SEARCH page covers it.
const unindexedPageSize = 500

// defaultBackfillPoll is how often RebuildIndex checks FT.INFO.
const defaultBackfillPoll = 200 * time.Millisecond

// store is the consumer interface for stories (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMGetMulti(ctx context.Context, keys []string, fields []string) ([]map[string]string, error)
	HUpdate(ctx context.Context, key string, upd db.HashUpdate) (db.UpdateResult, error)
	Del(ctx context.Context, key string) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRem(ctx context.Context, key string, member string) error
	Get(ctx context.Context, key string) ([]byte, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexBackfilling(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Repo implements the story store contract used by usecase/story and usecase/indexing.
type Repo struct {
	store        store
	keys         db.Keyspace
	dim          int
	hnsw         HNSWConfig
	now          func() time.Time
	backfillPoll time.Duration
}

// New creates a story repository.
func New(s store, keys db.Keyspace, dim int, hnsw HNSWConfig) *Repo {
	return &Repo{
		store: s, keys: keys, dim: dim, hnsw: hnsw,
		now: time.Now, backfillPoll: defaultBackfillPoll,
	}
}

// Insert assigns id and createdOn and persists the story.
// A nil vector stores the story as not indexed.
func (r *Repo) Insert(ctx context.Context, d domstory.Draft, vector []float32) (domstory.Story, error) {
	id, err := domstory.NewID()
	if err != nil {
		return domstory.Story{}, err
	}

	seq, err := r.store.Incr(ctx, r.keys.Sequence())
	if err != nil {
		return domstory.Story{}, storeErr("allocate sequence", err)
	}

	createdOn := r.now().UTC().Truncate(time.Millisecond)
	fields := map[string]string{
		fieldTitle:     d.Title(),
		fieldBody:      d.Body(),
		fieldCreatedOn: strconv.FormatInt(createdOn.UnixMilli(), 10),
		fieldSeq:       strconv.FormatInt(seq, 10),
		fieldDigest:    domstory.Digest(d.EmbeddingText()),
		fieldIndexed:   boolField(vector != nil),
	}
	if vector != nil {
		fields[fieldEmbedding] = db.EncodeVector(vector)
	}

	key := r.keys.Story(id.String())
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return domstory.Story{}, storeErr("hset "+key, err)
	}

	if err := r.store.ZAdd(ctx, r.keys.Order(), float64(seq), id.String()); err != nil {
		// unlisted record would be orphaned
		_, _ = r.store.Del(ctx, key)
		return domstory.Story{}, storeErr("zadd "+id.String(), err)
	}

	return domstory.Reconstruct(id, d.Title(), d.Body(), createdOn, vector, vector != nil), nil
}

// List returns every story, newest first, without embeddings.
func (r *Repo) List(ctx context.Context) ([]domstory.Story, error) {
	ids, err := r.store.ZRevRange(ctx, r.keys.Order(), 0, -1)
	if err != nil {
		return nil, storeErr("list order", err)
	}
	if len(ids) == 0 {
		return []domstory.Story{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keys.Story(id)
	}

	rows, err := r.store.HMGetMulti(ctx, keys, projection)
	if err != nil {
		return nil, storeErr("hmget stories", err)
	}

	stories := make([]domstory.Story, 0, len(rows))
	for i, row := range rows {
		if row == nil {
			// deleted between ZREVRANGE and HMGET
			continue
		}
		stories = append(stories, parseStory(domstory.ID(ids[i]), row))
	}
	return stories, nil
}

// Get returns a full story including its embedding.
func (r *Repo) Get(ctx context.Context, id domstory.ID) (domstory.Story, error) {
	key := r.keys.Story(id.String())
	row, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domstory.Story{}, storeErr("hgetall "+key, err)
	}
	if len(row) == 0 {
		return domstory.Story{}, domain.ErrNotFound
	}
	return parseStory(id, row), nil
}

// Replace rewrites title and body of an existing story, provided its stored text still hashes to
// expectDigest. A non-nil vector is stored alongside; a nil vector clears any previous one and
// marks the story not indexed.
func (r *Repo) Replace(
	ctx context.Context, id domstory.ID, expectDigest, title, body string, vector []float32,
) error {
	upd := db.HashUpdate{
		Set: map[string]string{
			fieldTitle:   title,
			fieldBody:    body,
			fieldDigest:  domstory.Digest(domstory.EmbeddingText(title, body)),
			fieldIndexed: boolField(vector != nil),
		},
		GuardField: fieldDigest,
		GuardValue: expectDigest,
	}
	if vector != nil {
		upd.Set[fieldEmbedding] = db.EncodeVector(vector)
	} else {
		upd.Del = []string{fieldEmbedding}
	}
	return r.update(ctx, id, upd)
}

// SetVector stores the embedding of a story if its text still hashes to digest.
func (r *Repo) SetVector(ctx context.Context, id domstory.ID, digest string, vector []float32) error {
	return r.update(ctx, id, db.HashUpdate{
		Set: map[string]string{
			fieldEmbedding: db.EncodeVector(vector),
			fieldIndexed:   boolField(true),
		},
		GuardField: fieldDigest,
		GuardValue: digest,
	})
}

func (r *Repo) update(ctx context.Context, id domstory.ID, upd db.HashUpdate) error {
	key := r.keys.Story(id.String())
	res, err := r.store.HUpdate(ctx, key, upd)
	if err != nil {
		return storeErr("update "+key, err)
	}
	switch res {
	case db.UpdateMissing:
		return domain.ErrNotFound
	case db.UpdateGuardFailed:
		return fmt.Errorf("story %s: %w", id, domain.ErrConflict)
	default:
		return nil
	}
}

// Delete removes a story. A second delete of the same id is ErrNotFound.
func (r *Repo) Delete(ctx context.Context, id domstory.ID) error {
	key := r.keys.Story(id.String())
	existed, err := r.store.Del(ctx, key)
	if err != nil {
		return storeErr("del "+key, err)
	}
	if err := r.store.ZRem(ctx, r.keys.Order(), id.String()); err != nil {
		return storeErr("zrem "+id.String(), err)
	}
	if !existed {
		return domain.ErrNotFound
	}
	return nil
}

// ListUnindexed returns the ids of stories that have no embedding of their current text.
// Stories are scanned in windows of their creation sequence, so indexing that runs during
// the sweep cannot shift later windows. Stories created after the sweep starts are left
// to the jobs their own writes scheduled.
func (r *Repo) ListUnindexed(ctx context.Context) ([]domstory.ID, error) {
	last, err := r.lastSeq(ctx)
	if err != nil {
		return nil, err
	}

	var ids []domstory.ID
	for lo := int64(1); lo <= last; lo += unindexedPageSize {
		hi := lo + unindexedPageSize - 1
		res, err := r.store.SearchList(ctx, &db.ListQuery{
			IndexName: r.keys.Index(),
			Filter:    fmt.Sprintf("@%s:[0 0] @%s:[%d %d]", fieldIndexed, fieldSeq, lo, hi),
			Limit:     unindexedPageSize,
			KeysOnly:  true,
		})
		if err != nil {
			return nil, storeErr("search unindexed", err)
		}
		for _, e := range res.Entries {
			ids = append(ids, domstory.ID(r.keys.StoryID(e.Key)))
		}
	}
	return ids, nil
}

func (r *Repo) lastSeq(ctx context.Context) (int64, error) {
	raw, err := r.store.Get(ctx, r.keys.Sequence())
	if errors.Is(err, db.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("get sequence", err)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse sequence %q: %w", raw, err)
	}
	return n, nil
}

func parseStory(id domstory.ID, row map[string]string) domstory.Story {
	var createdOn time.Time
	if ms, err := strconv.ParseInt(row[fieldCreatedOn], 10, 64); err == nil {
		createdOn = time.UnixMilli(ms).UTC()
	}
	var vector []float32
	if blob, ok := row[fieldEmbedding]; ok && blob != "" {
		vector = db.DecodeVector(blob)
	}
	return domstory.Reconstruct(id, row[fieldTitle], row[fieldBody], createdOn, vector, row[fieldIndexed] == "1")
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/kailas-cloud/storyline/internal/db"
	"github.com/kailas-cloud/storyline/internal/domain"
	"github.com/kailas-cloud/storyline/internal/domain/search/result"
	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
)

// returnFields is the hit projection; the embedding is never returned.
var returnFields = []string{"title", "body", "created_on"}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Index over the story vector index.
type Repo struct {
	store store
	keys  db.Keyspace
}

// New creates a search repository.
func New(s store, keys db.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// KNN returns up to k stories nearest to vector, ordered by non-increasing cosine similarity.
// k is capped at domain.MaxSearchCandidates. No candidates is an empty slice, not an error.
func (r *Repo) KNN(ctx context.Context, vector []float32, k int) ([]result.Result, error) {
	if k <= 0 || k > domain.MaxSearchCandidates {
		k = domain.MaxSearchCandidates
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.keys.Index(),
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w: %w", domain.ErrSearchUnavailable, err)
	}

	return r.parseKNNResults(sr, k), nil
}

// parseKNNResults converts db.SearchResult into ranked results.
func (r *Repo) parseKNNResults(sr *db.SearchResult, k int) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return []result.Result{}
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, r.parseEntry(entry))
	}

	// The index orders by distance already; re-sorting keeps the ranking
	// contract independent of backend tie-breaking.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func (r *Repo) parseEntry(entry db.SearchEntry) result.Result {
	var createdOn time.Time
	if ms, err := strconv.ParseInt(entry.Fields["created_on"], 10, 64); err == nil {
		createdOn = time.UnixMilli(ms).UTC()
	}
	return result.New(
		domstory.ID(r.keys.StoryID(entry.Key)),
		entry.Fields["title"],
		entry.Fields["body"],
		createdOn,
		entry.Score,
		result.ScoreDetail{Metric: result.MetricCosine, Distance: entry.Distance},
	)
}

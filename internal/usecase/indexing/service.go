// Package indexing keeps story embeddings in step with story text.
//
// In sync mode the caller embeds before writing, so text and vector land in one record
// write. In async mode the write stores text only and a background pool fills the vector
// in later; the write is refused if the text changed in between (digest guard).
package indexing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storyline/internal/domain"
	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
	"github.com/kailas-cloud/storyline/internal/metrics"
)

// Mode selects when embeddings are computed.
type Mode string

// Indexing modes.
const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// Outcome of indexing one story.
type Outcome string

// Indexing outcomes, also used as metric labels.
const (
	OutcomeIndexed Outcome = "indexed"
	OutcomeFresh   Outcome = "fresh"
	OutcomeStale   Outcome = "stale"
	OutcomeGone    Outcome = "gone"
	OutcomeError   Outcome = "error"
)

// Config configures the indexing service.
type Config struct {
	Mode Mode
	Pool PoolConfig
}

// Service decides when story embeddings are computed and writes them.
type Service struct {
	repo     Repository
	embedder Embedder
	mode     Mode
	pool     *Pool
	logger   *zap.Logger
}

// New creates an indexing service. In async mode it starts the worker pool.
func New(repo Repository, embedder Embedder, cfg Config, logger *zap.Logger) (*Service, error) {
	s := &Service{repo: repo, embedder: embedder, mode: cfg.Mode, logger: logger}

	switch cfg.Mode {
	case ModeSync:
	case ModeAsync:
		if cfg.Pool.Logger == nil {
			cfg.Pool.Logger = logger
		}
		pool, err := NewPool(cfg.Pool, s.handle)
		if err != nil {
			return nil, fmt.Errorf("start indexing pool: %w", err)
		}
		s.pool = pool
	default:
		return nil, fmt.Errorf("unknown indexing mode %q", cfg.Mode)
	}
	return s, nil
}

// Mode returns the configured mode.
func (s *Service) Mode() Mode { return s.mode }

// Prepare returns the vector to store with a text write.
// Async mode returns nil: the story is written unindexed and scheduled.
func (s *Service) Prepare(ctx context.Context, title, body string) ([]float32, error) {
	if s.mode != ModeSync {
		return nil, nil
	}
	res, err := s.embedder.Embed(ctx, domstory.EmbeddingText(title, body))
	if err != nil {
		return nil, fmt.Errorf("embed story: %w: %w", domain.ErrSearchUnavailable, err)
	}
	return res.Embedding, nil
}

// Schedule queues a story for background indexing. No-op in sync mode.
func (s *Service) Schedule(id domstory.ID) {
	if s.pool == nil {
		return
	}
	s.pool.Enqueue(id)
}

// Close drains the background queue.
func (s *Service) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// IndexOne embeds the current text of a story and stores the vector.
func (s *Service) IndexOne(ctx context.Context, id domstory.ID) (Outcome, error) {
	st, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return OutcomeGone, nil
	}
	if err != nil {
		return OutcomeError, fmt.Errorf("get story: %w", err)
	}
	if st.Indexed() {
		return OutcomeFresh, nil
	}

	text := st.EmbeddingText()
	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return OutcomeError, fmt.Errorf("embed story: %w", err)
	}

	err = s.repo.SetVector(ctx, id, domstory.Digest(text), res.Embedding)
	switch {
	case err == nil:
		return OutcomeIndexed, nil
	case errors.Is(err, domain.ErrConflict):
		// text was edited meanwhile; the edit scheduled its own job
		return OutcomeStale, nil
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeGone, nil
	default:
		return OutcomeError, fmt.Errorf("store vector: %w", err)
	}
}

func (s *Service) handle(ctx context.Context, id domstory.ID) {
	outcome, err := s.IndexOne(ctx, id)
	metrics.IndexingJobsTotal.WithLabelValues(string(outcome)).Inc()
	if err != nil {
		s.logger.Warn("Story indexing failed", zap.String("id", id.String()), zap.Error(err))
		return
	}
	s.logger.Debug("Story indexing done", zap.String("id", id.String()), zap.String("outcome", string(outcome)))
}

// ReindexReport summarizes a reindex sweep.
type ReindexReport struct {
	Pending int
	Indexed int
	Skipped int
	Failed  int
}

// Reindex embeds every story that has no vector of its current text.
// With dryRun it only counts them. Per-story failures are counted, not returned.
func (s *Service) Reindex(ctx context.Context, dryRun bool) (ReindexReport, error) {
	ids, err := s.repo.ListUnindexed(ctx)
	if err != nil {
		return ReindexReport{}, fmt.Errorf("list unindexed stories: %w", err)
	}

	report := ReindexReport{Pending: len(ids)}
	if dryRun {
		return report, nil
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("reindex interrupted: %w", err)
		}
		outcome, err := s.IndexOne(ctx, id)
		metrics.IndexingJobsTotal.WithLabelValues(string(outcome)).Inc()
		switch {
		case err != nil:
			report.Failed++
			s.logger.Warn("Reindex of story failed", zap.String("id", id.String()), zap.Error(err))
		case outcome == OutcomeIndexed:
			report.Indexed++
		default:
			report.Skipped++
		}
	}

	s.logger.Info("Reindex finished",
		zap.Int("pending", report.Pending),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

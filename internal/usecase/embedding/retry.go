package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storyline/internal/domain"
	"github.com/kailas-cloud/storyline/internal/metrics"
)

// RetryConfig bounds retries of transient provider failures.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns three attempts with 200ms..2s jittered backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// RetryEmbedder retries domain.ErrRateLimited with jittered exponential backoff.
// Every other error is terminal and returned after the first attempt.
type RetryEmbedder struct {
	inner    domain.Embedder
	cfg      RetryConfig
	provider string
	model    string
	logger   *zap.Logger
}

// NewRetryEmbedder wraps inner with bounded retries.
func NewRetryEmbedder(inner domain.Embedder, cfg RetryConfig, provider, model string, logger *zap.Logger) *RetryEmbedder {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryEmbedder{inner: inner, cfg: cfg, provider: provider, model: model, logger: logger}
}

// Embed calls the inner embedder until it succeeds, fails terminally, or attempts run out.
func (r *RetryEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	b := backoff.NewExponentialBackOff()
	if r.cfg.InitialInterval > 0 {
		b.InitialInterval = r.cfg.InitialInterval
	}
	if r.cfg.MaxInterval > 0 {
		b.MaxInterval = r.cfg.MaxInterval
	}

	op := func() (domain.EmbeddingResult, error) {
		res, err := r.inner.Embed(ctx, text)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, domain.ErrRateLimited) {
			return domain.EmbeddingResult{}, err
		}
		return domain.EmbeddingResult{}, backoff.Permanent(err)
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.EmbeddingRetriesTotal.WithLabelValues(r.provider, r.model).Inc()
			r.logger.Warn("Embedding rate limited, retrying",
				zap.Duration("backoff", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed with retry: %w", err)
	}
	return res, nil
}

// Package embedding holds the decorators stacked around the embedding provider:
// provider -> RetryEmbedder -> InstrumentedEmbedder, with the query cache optionally outermost.
package embedding

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storyline/internal/domain"
	logpkg "github.com/kailas-cloud/storyline/internal/logger"
)

// InstrumentedEmbedder charges provider tokens to the current request and logs each call.
// Provider-level metrics are recorded by the transport.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. logger is used when the context carries no request logger.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger.With(zap.String("provider", provider), zap.String("model", model)),
	}
}

// Embed calls inner, then records the tokens on the request's usage counter and its log line.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	elapsed := time.Since(start)

	log := logpkg.FromContextOr(ctx, p.logger)
	if err != nil {
		log.Warn("Embedding failed",
			zap.Int("text_runes", utf8.RuneCountInString(text)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed with %s: %w", p.model, err)
	}

	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)
	logpkg.Annotate(ctx, zap.Duration("embedding_latency", elapsed))

	log.Debug("Embedded text",
		zap.Int("text_runes", utf8.RuneCountInString(text)),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

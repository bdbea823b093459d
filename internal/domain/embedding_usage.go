package domain

import (
	"context"
	"sync/atomic"
)

type embeddingUsageKey struct{}

// EmbeddingUsage counts provider tokens spent while serving one request.
// A nil *EmbeddingUsage is valid and records nothing, so embedders never need to check.
type EmbeddingUsage struct {
	tokens atomic.Int64
	calls  atomic.Int64
}

// NewContextWithUsage returns a context carrying a fresh usage counter.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the request's counter, or nil outside a request
// (background indexing, the reindex command).
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records one provider call that consumed n tokens.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.tokens.Add(int64(n))
	u.calls.Add(1)
}

// Tokens returns the total tokens recorded.
func (u *EmbeddingUsage) Tokens() int {
	if u == nil {
		return 0
	}
	return int(u.tokens.Load())
}

// Calls returns how many provider calls were recorded.
func (u *EmbeddingUsage) Calls() int {
	if u == nil {
		return 0
	}
	return int(u.calls.Load())
}

// Used reports whether the request reached the embedding provider at all.
func (u *EmbeddingUsage) Used() bool { return u.Calls() > 0 }

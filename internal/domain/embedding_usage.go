package domain

import (
	"context"
	"sync/atomic"
)

type embeddingUsageKey struct{}

// EmbeddingUsage counts provider tokens spent while serving one request.
// Query and corpus embedding run concurrently, so updates are atomic.
type EmbeddingUsage struct {
	tokens atomic.Int64
	calls  atomic.Int64
}

// NewContextWithUsage returns a context carrying a fresh usage counter.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the request's counter, or nil when none was attached.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records one embedding call. Safe on a nil receiver.
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

// Used reports whether any embedding call completed, even a cached one with zero tokens.
func (u *EmbeddingUsage) Used() bool {
	return u != nil && u.calls.Load() > 0
}

// Package embedding holds the provider-agnostic embedding decorators.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/metrics"
)

// DefaultMaxAPIBatchSize is the largest batch sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// InstrumentedEmbedder wraps Embedder with outbound throttling, chunking and logging.
// Transport metrics (requests, duration, tokens) are recorded by the providers.
type InstrumentedEmbedder struct {
	inner     domain.Embedder
	provider  string
	model     string
	limiter   *rate.Limiter
	batchSize int
	logger    *zap.Logger
}

// Option configures an InstrumentedEmbedder.
type Option func(*InstrumentedEmbedder)

// WithRateLimit caps provider calls per second. rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(p *InstrumentedEmbedder) {
		if rps <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithBatchSize overrides DefaultMaxAPIBatchSize.
func WithBatchSize(n int) Option {
	return func(p *InstrumentedEmbedder) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// NewInstrumentedEmbedder wraps an embedder with throttling and observability.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	logger *zap.Logger, opts ...Option,
) *InstrumentedEmbedder {
	p := &InstrumentedEmbedder{
		inner:     inner,
		provider:  provider,
		model:     model,
		batchSize: DefaultMaxAPIBatchSize,
		logger:    logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Embed waits for a provider slot, delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	if err := p.wait(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	metrics.EmbeddingTextsTotal.WithLabelValues(p.provider, p.model).Inc()
	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// BatchEmbed splits texts into provider-sized chunks and delegates each to inner.
func (p *InstrumentedEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()

	result, err := p.embedChunked(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	metrics.EmbeddingTextsTotal.WithLabelValues(p.provider, p.model).Add(float64(len(texts)))
	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

func (p *InstrumentedEmbedder) embedChunked(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	allEmbeddings := make([][]float32, 0, len(texts))
	var totalPrompt, totalTokens int

	for offset := 0; offset < len(texts); offset += p.batchSize {
		if err := p.wait(ctx); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("chunk %d: %w", offset, err)
		}

		end := min(offset+p.batchSize, len(texts))
		chunk := texts[offset:end]

		chunkResult, err := p.embedInner(ctx, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		if len(chunkResult.Embeddings) != len(chunk) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("chunk %d: got %d vectors for %d texts: %w",
				offset, len(chunkResult.Embeddings), len(chunk), domain.ErrEmbeddingProviderError)
		}

		allEmbeddings = append(allEmbeddings, chunkResult.Embeddings...)
		totalPrompt += chunkResult.PromptTokens
		totalTokens += chunkResult.TotalTokens
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   allEmbeddings,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}

func (p *InstrumentedEmbedder) embedInner(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if be, ok := p.inner.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch embed: %w", err)
		}
		return res, nil
	}
	res, err := domain.BatchFallback(ctx, p.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch fallback: %w", err)
	}
	return res, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (p *InstrumentedEmbedder) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		p.logger.Warn("Embedding throttled",
			zap.String("provider", p.provider),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return nil
}

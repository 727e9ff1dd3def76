// Package tei embeds text through a Hugging Face text-embeddings-inference server,
// the usual way to serve sentence-transformers models such as paraphrase-MiniLM-L3-v2.
package tei

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/metrics"
)

const provider = "tei"

// Config holds the TEI server settings.
type Config struct {
	BaseURL string
	// Model is informational: a TEI server hosts exactly one model.
	Model     string
	APIKey    string
	Normalize bool
	Timeout   time.Duration
	Retries   int
	Logger    *zap.Logger
}

// Embedder is a domain.Embedder backed by the TEI /embed endpoint.
type Embedder struct {
	client    *resty.Client
	model     string
	normalize bool
	logger    *zap.Logger
}

// NewEmbedder creates a TEI embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = "default"
	}

	return &Embedder{
		client:    client,
		model:     model,
		normalize: cfg.Normalize,
		logger:    logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

// BatchEmbed implements domain.BatchEmbedder. TEI returns a bare JSON array of vectors.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"inputs":    texts,
			"normalize": e.normalize,
			"truncate":  true,
		}).
		Post("/embed")
	if err != nil {
		e.fail("transport")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("tei request: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	if resp.IsError() {
		e.fail("api_error")
		msg := gjson.Get(resp.String(), "error").String()
		if msg == "" {
			msg = resp.Status()
		}
		wrap := domain.ErrEmbeddingProviderError
		if resp.StatusCode() == http.StatusTooManyRequests {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("tei error %d: %s: %w: %w",
				resp.StatusCode(), msg, domain.ErrRateLimited, wrap)
		}
		return domain.BatchEmbeddingResult{}, fmt.Errorf("tei error %d: %s: %w", resp.StatusCode(), msg, wrap)
	}

	body := gjson.Parse(resp.String())
	if !body.IsArray() {
		e.fail("invalid_response")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("tei response is not an array: %w",
			domain.ErrEmbeddingProviderError)
	}

	rows := body.Array()
	if len(rows) != len(texts) {
		e.fail("count_mismatch")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(texts), len(rows), domain.ErrEmbeddingProviderError)
	}

	out := make([][]float32, len(rows))
	for i, row := range rows {
		vals := row.Array()
		if len(vals) == 0 {
			e.fail("empty_response")
			return domain.BatchEmbeddingResult{}, fmt.Errorf("empty embedding at %d: %w",
				i, domain.ErrEmbeddingProviderError)
		}
		vec := make([]float32, len(vals))
		for j, v := range vals {
			vec[j] = float32(v.Float())
		}
		out[i] = vec
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(time.Since(start).Seconds())

	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

// HealthCheck calls the server's /health route.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	resp, err := e.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("tei health: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("tei health: status %d", resp.StatusCode())
	}
	return nil
}

func (e *Embedder) fail(errType string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, errType).Inc()
}

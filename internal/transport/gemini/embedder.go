// Package gemini embeds text through the Gemini API embedContent endpoint.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/metrics"
)

const (
	provider = "gemini"

	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gemini-embedding-001"

	// maxBatch is the per-request content limit of batchEmbedContents.
	maxBatch = 100
)

// Config holds the Gemini embedding settings.
type Config struct {
	APIKey string
	Model  string
	// TaskType is passed through verbatim, e.g. SEMANTIC_SIMILARITY.
	TaskType   string
	Dimensions int
	// BaseURL overrides the API endpoint. Tests point it at httptest.
	BaseURL    string
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Logger     *zap.Logger
}

// Embedder is a domain.Embedder backed by genai.
type Embedder struct {
	client     *genai.Client
	model      string
	cfg        *genai.EmbedContentConfig
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *zap.Logger
}

// NewEmbedder creates a Gemini embedding provider.
func NewEmbedder(ctx context.Context, cfg *Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not set: %w", domain.ErrInvalidInput)
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	ec := &genai.EmbedContentConfig{TaskType: cfg.TaskType}
	if cfg.Dimensions > 0 {
		dims := int32(cfg.Dimensions)
		ec.OutputDimensionality = &dims
	}

	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	maxDelay := cfg.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     client,
		model:      model,
		cfg:        ec,
		maxRetries: max(cfg.MaxRetries, 0),
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		logger:     logger,
	}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vecs, err := e.embed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vecs[0]}, nil
}

// BatchEmbed implements domain.BatchEmbedder, splitting input at the API batch limit.
// Gemini does not report token usage for embeddings.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))
		vecs, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch [%d:%d]: %w", start, end, err)
		}
		out = append(out, vecs...)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

// HealthCheck embeds a probe string.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.embed(ctx, []string{"ping"}); err != nil {
		return fmt.Errorf("gemini health: %w", err)
	}
	return nil
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			delay := e.backoff(attempt)
			e.logger.Debug("Retrying embedding request",
				zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("embedding retry: %w: %w", ctx.Err(), domain.ErrEmbeddingProviderError)
			}
		}

		start := time.Now()
		resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, e.cfg)
		if err == nil {
			vecs, verr := validate(resp, len(texts))
			if verr != nil {
				e.fail("invalid_response")
				return nil, verr
			}
			metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
			metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).
				Observe(time.Since(start).Seconds())
			return vecs, nil
		}

		lastErr = err
		e.fail("api_error")
		if !retryable(ctx, err) {
			break
		}
	}

	return nil, wrapError(lastErr)
}

func (e *Embedder) backoff(attempt int) time.Duration {
	d := e.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	return min(d, e.maxDelay)
}

func (e *Embedder) fail(errType string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, errType).Inc()
}

func validate(resp *genai.EmbedContentResponse, want int) ([][]float32, error) {
	if resp == nil || len(resp.Embeddings) != want {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w", want, got, domain.ErrEmbeddingProviderError)
	}

	out := make([][]float32, want)
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("empty embedding at %d: %w", i, domain.ErrEmbeddingProviderError)
		}
		for _, v := range emb.Values {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return nil, fmt.Errorf("non-finite value in embedding %d: %w", i, domain.ErrEmbeddingProviderError)
			}
		}
		out[i] = emb.Values
	}
	return out, nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}
	// transport errors
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 {
			return fmt.Errorf("gemini API error %d: %s: %w", apiErr.Code, apiErr.Message,
				errors.Join(domain.ErrRateLimited, domain.ErrEmbeddingProviderError))
		}
		return fmt.Errorf("gemini API error %d: %s: %w", apiErr.Code, apiErr.Message,
			domain.ErrEmbeddingProviderError)
	}
	return fmt.Errorf("gemini request: %w: %w", err, domain.ErrEmbeddingProviderError)
}

package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/config"
	dbRedis "github.com/josephmathew0/Monty/internal/db/redis"
	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/extract"
	"github.com/josephmathew0/Monty/internal/lazy"
	logpkg "github.com/josephmathew0/Monty/internal/logger"
	"github.com/josephmathew0/Monty/internal/metrics"
	"github.com/josephmathew0/Monty/internal/repository/embcache"
	"github.com/josephmathew0/Monty/internal/repository/occupation"
	geminiEmb "github.com/josephmathew0/Monty/internal/transport/gemini"
	openaiEmb "github.com/josephmathew0/Monty/internal/transport/openai"
	teiEmb "github.com/josephmathew0/Monty/internal/transport/tei"
	analysisuc "github.com/josephmathew0/Monty/internal/usecase/analysis"
	embeddinguc "github.com/josephmathew0/Monty/internal/usecase/embedding"
	healthuc "github.com/josephmathew0/Monty/internal/usecase/health"
	matchuc "github.com/josephmathew0/Monty/internal/usecase/match"
)

const cacheDialTimeout = 3 * time.Second

// app is the assembled object graph shared by the serve and analyze commands.
type app struct {
	env      string
	cfg      config.Config
	logger   *zap.Logger
	analysis *analysisuc.Service
	health   *healthuc.Service
	store    *dbRedis.Store
	geo      *lazy.Slot[domain.GeoTable]
}

// newApp loads configuration and wires every component. Close releases the cache connection.
func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()
	metrics.RegisterHTTPMetrics()

	a := &app{env: env, cfg: cfg, logger: logger}
	a.store = connectCache(ctx, cfg.Cache, logger)

	embedder, err := buildEmbedder(ctx, cfg.Embedding, cfg.Cache, a.store, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build embedder: %w", err)
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Bool("cache", a.store != nil),
	)

	// Process-wide cache for the unfiltered state-level table
	a.geo = &lazy.Slot[domain.GeoTable]{}
	loader := occupation.NewLoader(occupation.Options{
		NationalPath: cfg.Datasets.NationalPath,
		GeoPath:      cfg.Datasets.GeoPath,
		GeoMaxRows:   cfg.Datasets.GeoMaxRows,
	}, a.geo, logger)

	extractor := extract.New(extract.NewPDFReader(), []extract.NameStrategy{
		extract.LargeFontName(cfg.Extraction.NameMinFontSize),
		extract.ProperNameLine,
	}, logger)

	matcher := matchuc.New(embedder, cfg.Matching.TopN, logger)
	a.analysis = analysisuc.New(extractor, loader, matcher, cfg.Matching.TopN)

	// Pass nil interfaces (not typed nil pointers) for absent components.
	var cacheCheck healthuc.Checker
	if a.store != nil {
		cacheCheck = healthuc.PingChecker{DB: a.store}
	}
	a.health = healthuc.New(loader, newEmbeddingHealthChecker(embedder), cacheCheck)

	return a, nil
}

// Close releases external connections and flushes the logger.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

// connectCache opens the embedding cache store. Failures disable caching instead of
// stopping the process.
func connectCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) *dbRedis.Store {
	if !cfg.Enabled {
		return nil
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       cfg.Addrs,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cacheDialTimeout,
	})
	if err != nil {
		logger.Warn("Embedding cache disabled", zap.Error(err))
		return nil
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		logger.Warn("Embedding cache not ready, continuing without it",
			zap.Strings("addrs", cfg.Addrs),
			zap.Error(err),
		)
		store.Close()
		return nil
	}
	logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Addrs))
	return store
}

// embeddingHealthChecker wraps domain.Embedder to implement health.Checker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// embeddingStore is what the cache decorator needs from the KV store.
type embeddingStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// buildEmbedder assembles the decorator chain: Provider -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	ctx context.Context,
	embCfg config.EmbeddingConfig,
	cacheCfg config.CacheConfig,
	store *dbRedis.Store,
	logger *zap.Logger,
) (domain.Embedder, error) {
	// Base provider (with transport metrics built-in)
	base, err := newProvider(ctx, embCfg, logger)
	if err != nil {
		return nil, err
	}

	// Cached. A nil *Store must not reach the interface.
	var embedder domain.Embedder = base
	if store != nil {
		embedder = cached(base, store, embCfg.Model, cacheCfg, logger)
	}

	// Instrumented (throttling + chunking + logging)
	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, embCfg.Provider, embCfg.Model, logger,
		embeddinguc.WithRateLimit(embCfg.RPS, embCfg.Burst),
		embeddinguc.WithBatchSize(embCfg.BatchSize),
	)

	// Instruction prefix (outermost, so the cache key includes the prefix)
	if embCfg.Instruction != "" {
		return domain.NewInstructionEmbedder(embedder, embCfg.Instruction), nil
	}

	return embedder, nil
}

func cached(
	base domain.Embedder, store embeddingStore, model string,
	cfg config.CacheConfig, logger *zap.Logger,
) domain.Embedder {
	return embcache.New(base, store, embcache.Options{
		KeyPrefix: cfg.KeyPrefix,
		Model:     model,
		TTL:       time.Duration(cfg.TTLHours) * time.Hour,
	}, metrics.EmbeddingCacheTotal, logger)
}

func newProvider(ctx context.Context, cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		}), nil
	case config.ProviderGemini:
		e, err := geminiEmb.NewEmbedder(ctx, &geminiEmb.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			TaskType:   "SEMANTIC_SIMILARITY",
			Dimensions: cfg.Dimensions,
			BaseURL:    cfg.BaseURL,
			MaxRetries: cfg.MaxRetries,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		return e, nil
	case config.ProviderTEI:
		return teiEmb.NewEmbedder(&teiEmb.Config{
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			APIKey:    cfg.APIKey,
			Normalize: true,
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
			Retries:   cfg.MaxRetries,
			Logger:    logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q: %w", cfg.Provider, domain.ErrInvalidInput)
	}
}

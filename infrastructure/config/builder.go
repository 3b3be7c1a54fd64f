package config

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/orchestra-go/application"
	"github.com/felixgeelhaar/orchestra-go/domain/cache"
	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/knowledge"
	domainmw "github.com/felixgeelhaar/orchestra-go/domain/middleware"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/logging"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/middleware"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/model"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/observability"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/storage/redis"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/storage/sqlite"
	"github.com/felixgeelhaar/orchestra-go/pack/answer"
	"github.com/felixgeelhaar/orchestra-go/pack/llm"
	"github.com/felixgeelhaar/orchestra-go/pack/sandbox"
	"github.com/felixgeelhaar/orchestra-go/pack/search"
)

// Assembly is the wired runtime built from a Config: the engine plus the
// components a caller may want to reach directly (ingestion needs the
// store and embedder, shutdown needs Close).
type Assembly struct {
	// Engine is the assembled orchestration loop.
	Engine *application.Engine

	// Registry holds the registered capabilities.
	Registry capability.Registry

	// Provider is the orchestrator decision model.
	Provider model.Provider

	// Store is the knowledge base, nil when embeddings are unavailable.
	Store knowledge.Store

	// Embedder produces document and query vectors, nil without a
	// Gemini API key.
	Embedder knowledge.Embedder

	// Observability is the telemetry provider, nil when disabled.
	Observability *observability.Provider

	closers []func(context.Context) error
}

// Close releases resources held by the assembly.
func (a *Assembly) Close(ctx context.Context) error {
	var firstErr error
	for _, close := range a.closers {
		if err := close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Builder assembles an engine from configuration.
type Builder struct {
	config *Config
}

// NewBuilder creates a builder for the given configuration. The config
// should have defaults applied; Load does that automatically.
func NewBuilder(config *Config) *Builder {
	return &Builder{config: config}
}

// Build wires providers, capabilities, middleware, and telemetry into a
// runnable engine.
func (b *Builder) Build() (*Assembly, error) {
	cfg := b.config
	if cfg == nil {
		cfg = Default()
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	assembly := &Assembly{}

	orchestrator := model.NewLMStudioProvider(model.ProviderConfig{
		BaseURL:     cfg.LMStudio.BaseURL,
		APIKey:      cfg.LMStudio.APIKey,
		Model:       cfg.Orchestrator.Model,
		Temperature: cfg.Orchestrator.Temperature,
		MaxTokens:   cfg.Orchestrator.MaxTokens,
	})
	assembly.Provider = orchestrator

	var gemini *model.GeminiProvider
	if cfg.Models.GeminiAPIKey != "" {
		gemini = model.NewGeminiProvider(model.GeminiConfig{
			APIKey:         cfg.Models.GeminiAPIKey,
			Model:          cfg.Models.GeminiModel,
			EmbeddingModel: cfg.VectorStore.EmbeddingModel,
		})
		assembly.Embedder = gemini
	}

	if err := b.buildKnowledgeStore(assembly); err != nil {
		return nil, err
	}

	registry, err := b.buildRegistry(assembly, gemini)
	if err != nil {
		return nil, err
	}
	assembly.Registry = registry

	mw, err := b.buildMiddleware(assembly)
	if err != nil {
		return nil, err
	}

	opts := []application.Option{
		application.WithProvider(orchestrator),
		application.WithRegistry(registry),
		application.WithMiddleware(mw),
		application.WithPreferences(cfg.Preferences),
		application.WithMaxTurns(cfg.Orchestrator.MaxTurns),
		application.WithModel(cfg.Orchestrator.Model),
		application.WithTemperature(cfg.Orchestrator.Temperature),
		application.WithMaxTokens(cfg.Orchestrator.MaxTokens),
	}
	if cfg.Orchestrator.FallbackCapability != "" {
		opts = append(opts, application.WithFallbackCapability(cfg.Orchestrator.FallbackCapability))
	}
	if assembly.Observability != nil {
		opts = append(opts, application.WithTracer(assembly.Observability.Tracer()))
	}

	engine, err := application.New(opts...)
	if err != nil {
		_ = assembly.Close(context.Background())
		return nil, fmt.Errorf("building engine: %w", err)
	}
	assembly.Engine = engine
	return assembly, nil
}

func (b *Builder) buildKnowledgeStore(assembly *Assembly) error {
	cfg := b.config

	if cfg.VectorStore.Path == "" {
		assembly.Store = memory.NewKnowledgeStore(cfg.VectorStore.EmbeddingDim)
		return nil
	}

	store, err := sqlite.NewKnowledgeStore(sqlite.DefaultConfig(),
		sqlite.WithPath(cfg.VectorStore.Path))
	if err != nil {
		return fmt.Errorf("opening knowledge store: %w", err)
	}
	assembly.Store = store
	assembly.closers = append(assembly.closers, func(context.Context) error {
		return store.Close()
	})
	return nil
}

func (b *Builder) buildRegistry(assembly *Assembly, gemini *model.GeminiProvider) (capability.Registry, error) {
	cfg := b.config
	registry := memory.NewRegistry()

	caps := []capability.Capability{
		answer.New(),
		search.NewWebSearch(search.WebSearchConfig{
			APIKey:  cfg.BraveSearch.APIKey,
			BaseURL: cfg.BraveSearch.BaseURL,
		}),
		search.NewWebFetch(search.WebFetchConfig{}),
		sandbox.New(sandbox.Config{}),
	}

	if cfg.Models.Phi4Model != "" {
		caps = append(caps, llm.Phi4(model.NewLMStudioProvider(model.ProviderConfig{
			BaseURL: cfg.LMStudio.BaseURL,
			APIKey:  cfg.LMStudio.APIKey,
			Model:   cfg.Models.Phi4Model,
		}), cfg.Models.Phi4Model))
	}
	if gemini != nil {
		if cfg.Models.GeminiModel != "" {
			caps = append(caps, llm.Gemini(gemini, cfg.Models.GeminiModel))
		}
		if assembly.Store != nil {
			caps = append(caps, search.NewLocalSearch(assembly.Store, gemini))
		}
	}

	for _, c := range caps {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering %s: %w", c.Name(), err)
		}
	}
	return registry, nil
}

func (b *Builder) buildMiddleware(assembly *Assembly) (*domainmw.Registry, error) {
	cfg := b.config
	mw := domainmw.NewRegistry()

	// Outermost first: logging sees every dispatch, including cache hits.
	mw.Use(middleware.Logging(middleware.LoggingConfig{}))

	if cfg.Observability.Enabled {
		provider, err := b.buildObservability()
		if err != nil {
			return nil, err
		}
		assembly.Observability = provider
		assembly.closers = append(assembly.closers, provider.Shutdown)
		mw.Use(middleware.Tracing(provider.Tracer()))
		mw.Use(middleware.Metrics(provider.Meter()))
	}

	if cfg.Cache.Enabled {
		backend, err := b.buildCache(assembly)
		if err != nil {
			return nil, err
		}
		mw.Use(middleware.Caching(backend, middleware.CachingConfig{
			TTL: cfg.CacheTTL(),
		}))
	}

	return mw, nil
}

func (b *Builder) buildObservability() (*observability.Provider, error) {
	cfg := b.config.Observability

	switch cfg.Exporter {
	case "stdout":
		return observability.NewStdoutProvider("orchestra-go")
	case "otlp":
		return observability.New(
			observability.WithOTLP(cfg.Endpoint),
			observability.WithSampleRate(cfg.SampleRate),
		)
	default:
		return observability.NewNoopProvider(), nil
	}
}

func (b *Builder) buildCache(assembly *Assembly) (cache.Cache, error) {
	cfg := b.config.Cache

	if cfg.Backend == "redis" {
		backend, err := redis.NewCache(redis.DefaultConfig(),
			redis.WithAddress(cfg.Redis.Address),
			redis.WithPassword(cfg.Redis.Password),
			redis.WithDB(cfg.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		assembly.closers = append(assembly.closers, func(context.Context) error {
			return backend.Close()
		})
		return backend, nil
	}

	backend := memory.NewCache()
	assembly.closers = append(assembly.closers, func(context.Context) error {
		backend.Cleanup()
		return nil
	})
	return backend, nil
}

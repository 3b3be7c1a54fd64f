package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/policy"
)

// Configuration errors.
var (
	// ErrConfigNotFound indicates the config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrInvalidFormat indicates the config could not be parsed.
	ErrInvalidFormat = errors.New("invalid config format")
	// ErrUnsupportedFormat indicates an unsupported file extension.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrValidationFailed indicates the config failed validation.
	ErrValidationFailed = errors.New("config validation failed")
	// ErrMissingEnvVar indicates a referenced environment variable is not set.
	ErrMissingEnvVar = errors.New("missing environment variable")
)

// Config is the full runtime configuration.
type Config struct {
	// Log configures structured logging.
	Log LogConfig `json:"log" yaml:"log"`

	// Orchestrator configures the control loop.
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`

	// LMStudio configures the local OpenAI-compatible provider.
	LMStudio LMStudioConfig `json:"lm_studio" yaml:"lm_studio"`

	// Models selects which model serves each role.
	Models ModelsConfig `json:"models" yaml:"models"`

	// Preferences are the operator's standing trade-offs.
	Preferences policy.Preferences `json:"preferences" yaml:"preferences"`

	// BraveSearch configures the web_search capability.
	BraveSearch BraveSearchConfig `json:"brave_search" yaml:"brave_search"`

	// VectorStore configures the local knowledge base.
	VectorStore VectorStoreConfig `json:"vector_store" yaml:"vector_store"`

	// Cache configures dispatch result caching.
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Observability configures tracing and metrics.
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "json" or "console".
	Format string `json:"format" yaml:"format"`
}

// OrchestratorConfig configures the control loop.
type OrchestratorConfig struct {
	// Model is the orchestrator model identifier.
	Model string `json:"model" yaml:"model"`

	// MaxTurns bounds the number of loop turns.
	MaxTurns int `json:"max_turns" yaml:"max_turns"`

	// Temperature is the sampling temperature for orchestrator calls.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps completion length. Zero uses the provider default.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// FallbackCapability is dispatched when a parsed action names an
	// unregistered capability. Empty disables fallback.
	FallbackCapability string `json:"fallback_capability" yaml:"fallback_capability"`
}

// LMStudioConfig configures the LM Studio provider.
type LMStudioConfig struct {
	// BaseURL is the OpenAI-compatible endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the bearer token. LM Studio accepts any value.
	APIKey string `json:"api_key" yaml:"api_key"`
}

// ModelsConfig selects models per role.
type ModelsConfig struct {
	// OrchestratorModel drives the control loop.
	OrchestratorModel string `json:"orchestrator_model" yaml:"orchestrator_model"`

	// Phi4Model serves the local reasoning delegate.
	Phi4Model string `json:"phi4_model" yaml:"phi4_model"`

	// GeminiModel serves the remote delegate.
	GeminiModel string `json:"gemini_model" yaml:"gemini_model"`

	// GeminiAPIKey authenticates Gemini calls.
	GeminiAPIKey string `json:"gemini_api_key" yaml:"gemini_api_key"`
}

// BraveSearchConfig configures web search.
type BraveSearchConfig struct {
	// APIKey authenticates Brave Search API calls.
	APIKey string `json:"api_key" yaml:"api_key"`

	// BaseURL overrides the API endpoint (tests).
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// VectorStoreConfig configures the knowledge base.
type VectorStoreConfig struct {
	// Path is the sqlite database path. Empty uses an in-memory store.
	Path string `json:"path" yaml:"path"`

	// EmbeddingModel produces document vectors.
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`

	// EmbeddingDim is the vector dimensionality.
	EmbeddingDim int `json:"embedding_dim" yaml:"embedding_dim"`

	// ChunkSize is the ingestion chunk length in characters.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the overlap between adjacent chunks.
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}

// CacheConfig configures dispatch caching.
type CacheConfig struct {
	// Enabled turns result caching on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Backend is "memory" or "redis".
	Backend string `json:"backend" yaml:"backend"`

	// TTL is the cache entry lifetime in seconds.
	TTL int `json:"ttl" yaml:"ttl"`

	// Redis configures the redis backend.
	Redis RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	// Address is host:port.
	Address string `json:"address" yaml:"address"`

	// Password authenticates the connection. Empty disables auth.
	Password string `json:"password" yaml:"password"`

	// DB selects the redis database.
	DB int `json:"db" yaml:"db"`
}

// ObservabilityConfig configures tracing and metrics export.
type ObservabilityConfig struct {
	// Enabled turns telemetry on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Exporter is "stdout", "otlp" or "noop".
	Exporter string `json:"exporter" yaml:"exporter"`

	// Endpoint is the OTLP endpoint when exporter is "otlp".
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// SampleRate is the trace sampling rate in [0, 1].
	SampleRate float64 `json:"sample_rate" yaml:"sample_rate"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with defaults. Loaded configs
// only need to set what they change.
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Orchestrator.MaxTurns == 0 {
		c.Orchestrator.MaxTurns = 10
	}
	if c.Orchestrator.Temperature == 0 {
		c.Orchestrator.Temperature = 0.2
	}
	if c.LMStudio.BaseURL == "" {
		c.LMStudio.BaseURL = "http://localhost:1234/v1"
	}
	if c.LMStudio.APIKey == "" {
		c.LMStudio.APIKey = "lm-studio"
	}
	if c.Models.OrchestratorModel == "" {
		c.Models.OrchestratorModel = c.Orchestrator.Model
	}
	if c.Orchestrator.Model == "" {
		c.Orchestrator.Model = c.Models.OrchestratorModel
	}
	if c.Preferences == (policy.Preferences{}) {
		c.Preferences = policy.DefaultPreferences()
	}
	if c.VectorStore.EmbeddingModel == "" {
		c.VectorStore.EmbeddingModel = "gemini-embedding-001"
	}
	if c.VectorStore.EmbeddingDim == 0 {
		c.VectorStore.EmbeddingDim = 768
	}
	if c.VectorStore.ChunkSize == 0 {
		c.VectorStore.ChunkSize = 500
	}
	if c.VectorStore.ChunkOverlap == 0 {
		c.VectorStore.ChunkOverlap = 50
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 3600
	}
	if c.Cache.Redis.Address == "" {
		c.Cache.Redis.Address = "localhost:6379"
	}
	if c.Observability.Exporter == "" {
		c.Observability.Exporter = "noop"
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// Validate checks the configuration for out-of-range or inconsistent
// values. Call after ApplyDefaults.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrValidationFailed, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrValidationFailed, c.Log.Format)
	}
	if c.Orchestrator.MaxTurns < 1 {
		return fmt.Errorf("%w: orchestrator.max_turns must be at least 1", ErrValidationFailed)
	}
	if c.Orchestrator.Temperature < 0 || c.Orchestrator.Temperature > 2 {
		return fmt.Errorf("%w: orchestrator.temperature must be in [0, 2]", ErrValidationFailed)
	}
	if c.Orchestrator.MaxTokens < 0 {
		return fmt.Errorf("%w: orchestrator.max_tokens must not be negative", ErrValidationFailed)
	}
	if err := c.Preferences.Validate(); err != nil {
		return fmt.Errorf("%w: preferences: %v", ErrValidationFailed, err)
	}
	if c.VectorStore.EmbeddingDim < 1 {
		return fmt.Errorf("%w: vector_store.embedding_dim must be positive", ErrValidationFailed)
	}
	if c.VectorStore.ChunkSize < 1 {
		return fmt.Errorf("%w: vector_store.chunk_size must be positive", ErrValidationFailed)
	}
	if c.VectorStore.ChunkOverlap < 0 || c.VectorStore.ChunkOverlap >= c.VectorStore.ChunkSize {
		return fmt.Errorf("%w: vector_store.chunk_overlap must be in [0, chunk_size)", ErrValidationFailed)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("%w: cache.backend %q", ErrValidationFailed, c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrValidationFailed)
	}
	switch c.Observability.Exporter {
	case "stdout", "otlp", "noop":
	default:
		return fmt.Errorf("%w: observability.exporter %q", ErrValidationFailed, c.Observability.Exporter)
	}
	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return fmt.Errorf("%w: observability.sample_rate must be in [0, 1]", ErrValidationFailed)
	}
	if c.Observability.Enabled && c.Observability.Exporter == "otlp" && c.Observability.Endpoint == "" {
		return fmt.Errorf("%w: observability.endpoint required for otlp exporter", ErrValidationFailed)
	}
	return nil
}

// Masked returns a copy with secrets replaced for display.
func (c *Config) Masked() *Config {
	out := *c
	out.Models.GeminiAPIKey = maskSecret(c.Models.GeminiAPIKey)
	out.BraveSearch.APIKey = maskSecret(c.BraveSearch.APIKey)
	out.LMStudio.APIKey = maskSecret(c.LMStudio.APIKey)
	out.Cache.Redis.Password = maskSecret(c.Cache.Redis.Password)
	return &out
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}

package application

import (
	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/middleware"
	"github.com/felixgeelhaar/orchestra-go/domain/policy"
	"github.com/felixgeelhaar/orchestra-go/domain/telemetry"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/model"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/resilience"
)

type engineConfig struct {
	provider     model.Provider
	registry     capability.Registry
	executor     *resilience.Executor
	middleware   *middleware.Registry
	preferences  policy.Preferences
	tracer       telemetry.Tracer
	maxTurns     int
	modelName    string
	temperature  float64
	maxTokens    int
	terminalName string
	fallbackName string
	systemPrompt string
}

// Option configures the engine.
type Option func(*engineConfig)

// WithProvider sets the decision-model provider. Required.
func WithProvider(p model.Provider) Option {
	return func(c *engineConfig) {
		c.provider = p
	}
}

// WithRegistry sets the capability registry. Required.
func WithRegistry(r capability.Registry) Option {
	return func(c *engineConfig) {
		c.registry = r
	}
}

// WithExecutor sets the resilient dispatch executor.
func WithExecutor(e *resilience.Executor) Option {
	return func(c *engineConfig) {
		c.executor = e
	}
}

// WithMiddleware sets the dispatch middleware registry. Middleware run
// in registration order around every non-terminal dispatch.
func WithMiddleware(m *middleware.Registry) Option {
	return func(c *engineConfig) {
		c.middleware = m
	}
}

// WithPreferences sets the dispatch preferences.
func WithPreferences(p policy.Preferences) Option {
	return func(c *engineConfig) {
		c.preferences = p
	}
}

// WithMaxTurns sets the turn budget.
func WithMaxTurns(n int) Option {
	return func(c *engineConfig) {
		c.maxTurns = n
	}
}

// WithModel sets the model identifier sent on completion requests.
func WithModel(name string) Option {
	return func(c *engineConfig) {
		c.modelName = name
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *engineConfig) {
		c.temperature = t
	}
}

// WithMaxTokens caps completion length. Zero uses the provider default.
func WithMaxTokens(n int) Option {
	return func(c *engineConfig) {
		c.maxTokens = n
	}
}

// WithTerminalCapability names the capability that ends the loop.
// Defaults to "finish".
func WithTerminalCapability(name string) Option {
	return func(c *engineConfig) {
		c.terminalName = name
	}
}

// WithFallbackCapability enables fallback mode: instead of a corrective
// retry, an unparsable response dispatches the named capability with the
// raw query. Empty disables fallback.
func WithFallbackCapability(name string) Option {
	return func(c *engineConfig) {
		c.fallbackName = name
	}
}

// WithSystemPrompt replaces the generated system prompt entirely.
func WithSystemPrompt(prompt string) Option {
	return func(c *engineConfig) {
		c.systemPrompt = prompt
	}
}

// WithTracer enables run-level tracing.
func WithTracer(t telemetry.Tracer) Option {
	return func(c *engineConfig) {
		c.tracer = t
	}
}

// Package api is the public surface of orchestra-go. It re-exports the
// engine, capability builder, configuration loader, and test providers so
// most programs need a single import.
//
// # Quick Start
//
// Run a scripted loop with the built-in finish capability:
//
//	registry := api.NewRegistry()
//	_ = registry.Register(api.Finish())
//
//	engine, _ := api.New(
//	    api.WithProvider(api.Scripted(`{"reasoning": "done", "tool": "finish", "parameters": {"answer": "4"}, "confidence": 1.0}`)),
//	    api.WithRegistry(registry),
//	)
//	result := engine.Run(ctx, "What is 2+2?")
//	fmt.Println(result.Answer) // "4"
//
// For a production setup, load a config file and let the builder wire
// providers, capabilities, caching, and telemetry:
//
//	cfg, _ := api.LoadConfig("config.yaml")
//	assembly, _ := api.Build(cfg)
//	defer assembly.Close(ctx)
//	result := assembly.Engine.Run(ctx, question)
package api

import (
	"github.com/felixgeelhaar/orchestra-go/application"
	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/policy"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/config"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/model"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/orchestra-go/pack/answer"
)

// Core engine types.
type (
	// Engine runs the orchestration loop.
	Engine = application.Engine

	// Result is the outcome of a loop run.
	Result = application.Result

	// Option configures the engine.
	Option = application.Option

	// Status classifies how a run ended.
	Status = application.Status
)

// Run statuses.
const (
	StatusCompleted       = application.StatusCompleted
	StatusBudgetExhausted = application.StatusBudgetExhausted
	StatusAborted         = application.StatusAborted
)

// Capability types.
type (
	// Capability is a callable tool.
	Capability = capability.Capability

	// CapabilityResult is the outcome of one dispatch.
	CapabilityResult = capability.Result

	// Registry holds registered capabilities.
	Registry = capability.Registry

	// Preferences are the operator's standing trade-offs.
	Preferences = policy.Preferences
)

// New creates an engine from options.
var New = application.New

// Engine options.
var (
	WithProvider           = application.WithProvider
	WithRegistry           = application.WithRegistry
	WithMiddleware         = application.WithMiddleware
	WithPreferences        = application.WithPreferences
	WithMaxTurns           = application.WithMaxTurns
	WithModel              = application.WithModel
	WithTemperature        = application.WithTemperature
	WithMaxTokens          = application.WithMaxTokens
	WithTerminalCapability = application.WithTerminalCapability
	WithFallbackCapability = application.WithFallbackCapability
	WithSystemPrompt       = application.WithSystemPrompt
	WithTracer             = application.WithTracer
)

// Capability construction.
var (
	// NewCapability starts a fluent capability builder.
	NewCapability = capability.NewBuilder

	// NewResult creates a successful dispatch result.
	NewResult = capability.NewResult

	// NewErrorResult creates a failed dispatch result.
	NewErrorResult = capability.NewErrorResult

	// NewTerminalResult creates a result that ends the loop.
	NewTerminalResult = capability.NewTerminalResult

	// Finish creates the built-in terminal capability.
	Finish = answer.New
)

// NewRegistry creates an empty in-memory capability registry.
func NewRegistry() Registry {
	return memory.NewRegistry()
}

// Providers.
var (
	// Scripted creates a deterministic provider for tests and examples.
	Scripted = model.Scripted

	// NewScriptedProvider creates a scripted provider with per-step
	// cost and error control.
	NewScriptedProvider = model.NewScriptedProvider

	// NewLMStudioProvider creates the local OpenAI-compatible provider.
	NewLMStudioProvider = model.NewLMStudioProvider

	// NewGeminiProvider creates the Gemini provider.
	NewGeminiProvider = model.NewGeminiProvider
)

// Configuration.
type (
	// Config is the full runtime configuration.
	Config = config.Config

	// Assembly is the wired runtime built from a Config.
	Assembly = config.Assembly
)

// DefaultConfig returns a configuration with all defaults applied.
var DefaultConfig = config.Default

// LoadConfig loads and validates a YAML or JSON config file.
func LoadConfig(path string) (*Config, error) {
	return config.NewLoader().LoadFile(path)
}

// Build wires a configuration into a runnable assembly.
func Build(cfg *Config) (*Assembly, error) {
	return config.NewBuilder(cfg).Build()
}

// DefaultPreferences returns the balanced preference defaults.
var DefaultPreferences = policy.DefaultPreferences

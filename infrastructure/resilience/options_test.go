package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

func TestOptions(t *testing.T) {
	t.Parallel()

	config := DefaultExecutorConfig()
	for _, opt := range []Option{
		WithMaxConcurrent(20),
		WithCircuitBreaker(10, 60*time.Second),
		WithRetry(5, 200*time.Millisecond),
		WithDispatchTimeout(90 * time.Second),
	} {
		opt(&config)
	}

	if config.MaxConcurrent != 20 {
		t.Errorf("MaxConcurrent = %d, want 20", config.MaxConcurrent)
	}
	if config.CircuitBreakerThreshold != 10 {
		t.Errorf("CircuitBreakerThreshold = %d, want 10", config.CircuitBreakerThreshold)
	}
	if config.CircuitBreakerTimeout != 60*time.Second {
		t.Errorf("CircuitBreakerTimeout = %v, want 60s", config.CircuitBreakerTimeout)
	}
	if config.RetryMaxAttempts != 5 {
		t.Errorf("RetryMaxAttempts = %d, want 5", config.RetryMaxAttempts)
	}
	if config.RetryInitialDelay != 200*time.Millisecond {
		t.Errorf("RetryInitialDelay = %v, want 200ms", config.RetryInitialDelay)
	}
	if config.DefaultTimeout != 90*time.Second {
		t.Errorf("DefaultTimeout = %v, want 90s", config.DefaultTimeout)
	}
}

func TestNewExecutorAppliesOptions(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(DefaultExecutorConfig(),
		WithMaxConcurrent(5),
		WithRetry(2, 50*time.Millisecond),
	)
	if executor == nil {
		t.Fatal("NewExecutor() returned nil")
	}

	c := capability.NewBuilder("ping").
		WithDescription("returns pong").
		WithHandler(func(context.Context, map[string]any) (capability.Result, error) {
			return capability.NewResult("pong"), nil
		}).
		MustBuild()

	result := executor.Execute(context.Background(), c, nil)
	if result.Failed() {
		t.Errorf("unexpected failure: %s", result.Error)
	}
	if result.Output != "pong" {
		t.Errorf("output = %v", result.Output)
	}
}

package resilience

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

func buildCapability(t *testing.T, name string, idempotent bool, handler capability.Handler) capability.Capability {
	t.Helper()

	b := capability.NewBuilder(name).
		WithDescription("test capability").
		WithHandler(handler)
	if idempotent {
		b = b.Idempotent()
	}
	return b.MustBuild()
}

func TestDefaultExecutorConfig(t *testing.T) {
	config := DefaultExecutorConfig()

	if config.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", config.MaxConcurrent)
	}
	if config.CircuitBreakerThreshold != 5 {
		t.Errorf("CircuitBreakerThreshold = %d, want 5", config.CircuitBreakerThreshold)
	}
	if config.RetryMaxAttempts != 3 {
		t.Errorf("RetryMaxAttempts = %d, want 3", config.RetryMaxAttempts)
	}
	if config.DefaultTimeout != 60*time.Second {
		t.Errorf("DefaultTimeout = %v, want 60s", config.DefaultTimeout)
	}
}

func TestExecutorExecuteSuccess(t *testing.T) {
	executor := NewDefaultExecutor()
	c := buildCapability(t, "echo", true, func(_ context.Context, params map[string]any) (capability.Result, error) {
		return capability.NewResult(params["text"]), nil
	})

	result := executor.Execute(context.Background(), c, map[string]any{"text": "hello"})

	if result.Failed() {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.Output != "hello" {
		t.Errorf("output = %v", result.Output)
	}
	if result.Latency == 0 {
		t.Error("latency should be set")
	}
}

func TestExecutorExecuteFailureBecomesResult(t *testing.T) {
	executor := NewDefaultExecutor()
	c := buildCapability(t, "broken", false, func(context.Context, map[string]any) (capability.Result, error) {
		return capability.Result{}, context.DeadlineExceeded
	})

	result := executor.Execute(context.Background(), c, nil)

	if !result.Failed() {
		t.Fatal("expected failure result")
	}
	if result.Cost != 0 {
		t.Errorf("failed dispatch should not bill cost, got %f", result.Cost)
	}
}

// rawPanicker bypasses the Builder so Execute panics without any
// handler-level recovery in front of the executor.
type rawPanicker struct{}

func (rawPanicker) Name() string { return "explode" }

func (rawPanicker) Descriptor() capability.Descriptor {
	return capability.Descriptor{Name: "explode", Description: "test capability"}
}

func (rawPanicker) Execute(context.Context, map[string]any) capability.Result {
	panic("boom")
}

func TestExecutorRecoversPanic(t *testing.T) {
	executor := NewDefaultExecutor()

	result := executor.Execute(context.Background(), rawPanicker{}, nil)

	if !result.Failed() {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(result.Error, `capability "explode" panicked: boom`) {
		t.Errorf("error = %q", result.Error)
	}
	if result.Cost != 0 {
		t.Errorf("panicking dispatch should not bill cost, got %f", result.Cost)
	}

	// The executor stays usable afterwards.
	echo := buildCapability(t, "echo", false, func(_ context.Context, params map[string]any) (capability.Result, error) {
		return capability.NewResult(params["text"]), nil
	})
	if res := executor.Execute(context.Background(), echo, map[string]any{"text": "ok"}); res.Failed() {
		t.Errorf("executor unusable after panic: %s", res.Error)
	}
}

func TestExecutorRetriesIdempotent(t *testing.T) {
	executor := NewExecutor(ExecutorConfig{
		MaxConcurrent:           10,
		CircuitBreakerThreshold: 50,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        3,
		RetryInitialDelay:       time.Millisecond,
		RetryBackoffMultiplier:  2.0,
		DefaultTimeout:          5 * time.Second,
	})

	var calls atomic.Int32
	c := buildCapability(t, "flaky", true, func(context.Context, map[string]any) (capability.Result, error) {
		if calls.Add(1) < 3 {
			return capability.NewErrorResult("transient"), nil
		}
		return capability.NewResult("ok"), nil
	})

	result := executor.Execute(context.Background(), c, nil)

	if result.Failed() {
		t.Fatalf("expected success after retries, got %s", result.Error)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestExecutorDoesNotRetryNonIdempotent(t *testing.T) {
	executor := NewExecutor(ExecutorConfig{
		MaxConcurrent:           10,
		CircuitBreakerThreshold: 50,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        3,
		RetryInitialDelay:       time.Millisecond,
		DefaultTimeout:          5 * time.Second,
	})

	var calls atomic.Int32
	c := buildCapability(t, "once", false, func(context.Context, map[string]any) (capability.Result, error) {
		calls.Add(1)
		return capability.NewErrorResult("boom"), nil
	})

	result := executor.Execute(context.Background(), c, nil)

	if !result.Failed() {
		t.Fatal("expected failure result")
	}
	if calls.Load() != 1 {
		t.Errorf("non-idempotent capability called %d times, want 1", calls.Load())
	}
}

func TestExecutorTimeout(t *testing.T) {
	executor := NewExecutor(ExecutorConfig{
		MaxConcurrent:           10,
		CircuitBreakerThreshold: 50,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        1,
		RetryInitialDelay:       time.Millisecond,
		DefaultTimeout:          50 * time.Millisecond,
	})

	c := buildCapability(t, "slow", false, func(ctx context.Context, _ map[string]any) (capability.Result, error) {
		select {
		case <-ctx.Done():
			return capability.Result{}, ctx.Err()
		case <-time.After(10 * time.Second):
			return capability.NewResult("too late"), nil
		}
	})

	result := executor.Execute(context.Background(), c, nil)
	if !result.Failed() {
		t.Fatal("expected timeout failure")
	}
}

func TestExecutorPreservesTerminalFlag(t *testing.T) {
	executor := NewDefaultExecutor()
	c := capability.NewBuilder("finish").
		WithDescription("ends the loop").
		Terminal().
		WithHandler(func(context.Context, map[string]any) (capability.Result, error) {
			return capability.NewResult("done"), nil
		}).
		MustBuild()

	result := executor.Execute(context.Background(), c, nil)
	if !result.Terminal {
		t.Error("terminal capability result should be terminal")
	}
}

func TestExecutorCircuitBreakerState(t *testing.T) {
	executor := NewDefaultExecutor()
	if executor.CircuitBreakerState().String() != "closed" {
		t.Errorf("initial breaker state = %v, want closed", executor.CircuitBreakerState())
	}
}

// Package resilience provides resilient capability dispatch using fortify.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

// Executor dispatches capabilities with bulkhead, circuit breaker, and
// retry patterns applied. Like the registry, it never returns a Go
// error: every failure mode becomes an error Result so the loop can
// record it as an observation.
type Executor struct {
	bulkhead bulkhead.Bulkhead[capability.Result]
	breaker  circuitbreaker.CircuitBreaker[capability.Result]
	retry    retry.Retry[capability.Result]
	timeout  time.Duration
}

// ExecutorConfig configures the resilient executor.
type ExecutorConfig struct {
	// MaxConcurrent limits concurrent capability executions.
	MaxConcurrent int

	// CircuitBreakerThreshold is the number of consecutive failures before
	// the circuit opens.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout time.Duration

	// RetryMaxAttempts is the maximum number of attempts for idempotent
	// capabilities.
	RetryMaxAttempts int

	// RetryInitialDelay is the initial delay between retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64

	// DefaultTimeout bounds a single dispatch.
	DefaultTimeout time.Duration
}

// DefaultExecutorConfig returns a configuration with sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrent:           10,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        3,
		RetryInitialDelay:       100 * time.Millisecond,
		RetryBackoffMultiplier:  2.0,
		DefaultTimeout:          60 * time.Second,
	}
}

// NewExecutor creates a resilient executor. Options are applied on top
// of the given configuration.
func NewExecutor(config ExecutorConfig, opts ...Option) *Executor {
	for _, opt := range opts {
		opt(&config)
	}

	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	threshold := config.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	return &Executor{
		bulkhead: bulkhead.New[capability.Result](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		breaker: circuitbreaker.New[capability.Result](circuitbreaker.Config{
			MaxRequests: uint32(maxConcurrent), // #nosec G115 -- bounds checked above
			Interval:    config.CircuitBreakerTimeout,
			Timeout:     config.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			},
		}),
		retry: retry.New[capability.Result](retry.Config{
			MaxAttempts:   config.RetryMaxAttempts,
			InitialDelay:  config.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    config.RetryBackoffMultiplier,
		}),
		timeout: config.DefaultTimeout,
	}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor() *Executor {
	return NewExecutor(DefaultExecutorConfig())
}

// retryableFailure signals fortify's retry that an attempt failed.
// Capabilities report failure through Result.Error rather than Go errors,
// so the executor wraps failed results to drive the retry loop and
// unwraps them afterwards.
type retryableFailure struct {
	result capability.Result
}

func (e *retryableFailure) Error() string {
	return e.result.Error
}

// invoke runs the capability and converts a panic into an error Result.
// The loop's no-crash contract covers capabilities implemented directly
// against the interface, not just those built through the Builder, so
// the recovery has to sit on the dispatch path itself.
func invoke(ctx context.Context, c capability.Capability, params map[string]any) (result capability.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = capability.NewErrorResult(fmt.Sprintf("capability %q panicked: %v", c.Name(), rec))
		}
	}()
	return c.Execute(ctx, params)
}

// Execute dispatches a capability with resilience patterns applied.
// Composition order: bulkhead, timeout, circuit breaker, retry (only for
// idempotent capabilities).
func (e *Executor) Execute(ctx context.Context, c capability.Capability, params map[string]any) capability.Result {
	start := time.Now()
	desc := c.Descriptor()

	result, err := e.bulkhead.Execute(ctx, func(ctx context.Context) (capability.Result, error) {
		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		return e.breaker.Execute(ctx, func(ctx context.Context) (capability.Result, error) {
			if desc.CanRetry() {
				return e.retry.Do(ctx, func(ctx context.Context) (capability.Result, error) {
					res := invoke(ctx, c, params)
					if res.Failed() {
						return res, &retryableFailure{result: res}
					}
					return res, nil
				})
			}
			res := invoke(ctx, c, params)
			if res.Failed() {
				// Surface the failure to the breaker without retrying.
				return res, &retryableFailure{result: res}
			}
			return res, nil
		})
	})

	if err != nil {
		var failure *retryableFailure
		if errors.As(err, &failure) {
			result = failure.result
		} else {
			// Bulkhead rejection, open circuit, or timeout.
			result = capability.NewErrorResult(err.Error())
		}
	}

	if result.Latency == 0 {
		result.Latency = time.Since(start)
	}
	if desc.Terminal {
		result.Terminal = true
	}
	return result
}

// ExecuteWithTimeout dispatches with a custom timeout.
func (e *Executor) ExecuteWithTimeout(ctx context.Context, c capability.Capability, params map[string]any, timeout time.Duration) capability.Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return e.Execute(ctx, c, params)
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (e *Executor) CircuitBreakerState() circuitbreaker.State {
	return e.breaker.State()
}

package observability

import (
	"context"

	"github.com/felixgeelhaar/orchestra-go/domain/telemetry"
)

// NoopTracer discards every span. It backs the default provider so
// the loop and middleware can trace unconditionally.
type NoopTracer struct{}

// NewNoopTracer creates a tracer that records nothing.
func NewNoopTracer() *NoopTracer {
	return &NoopTracer{}
}

func (*NoopTracer) StartSpan(ctx context.Context, _ string, _ ...telemetry.SpanOption) (context.Context, telemetry.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                                       {}
func (noopSpan) SetAttributes(_ ...telemetry.Attribute)     {}
func (noopSpan) RecordError(_ error)                        {}
func (noopSpan) SetStatus(_ telemetry.StatusCode, _ string) {}

// NoopMeter hands out instruments that discard every measurement.
type NoopMeter struct{}

// NewNoopMeter creates a meter that records nothing.
func NewNoopMeter() *NoopMeter {
	return &NoopMeter{}
}

func (*NoopMeter) Counter(_ string, _ ...telemetry.MetricOption) telemetry.Counter {
	return noopCounter{}
}

func (*NoopMeter) Histogram(_ string, _ ...telemetry.MetricOption) telemetry.Histogram {
	return noopHistogram{}
}

type noopCounter struct{}

func (noopCounter) Add(_ context.Context, _ int64, _ ...telemetry.Attribute) {}

type noopHistogram struct{}

func (noopHistogram) Record(_ context.Context, _ float64, _ ...telemetry.Attribute) {}

var (
	_ telemetry.Tracer    = (*NoopTracer)(nil)
	_ telemetry.Span      = noopSpan{}
	_ telemetry.Meter     = (*NoopMeter)(nil)
	_ telemetry.Counter   = noopCounter{}
	_ telemetry.Histogram = noopHistogram{}
)

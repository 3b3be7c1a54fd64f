// Package telemetry defines the tracing and metrics contracts the loop
// and the dispatch middleware emit through. Implementations live in
// infrastructure/observability; the noop ones make telemetry strictly
// optional.
package telemetry

import "context"

// Tracer opens spans around loop runs and capability dispatches.
type Tracer interface {
	StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
}

// Span is one traced unit of work.
type Span interface {
	// End completes the span.
	End()

	// SetAttributes attaches attributes to the span.
	SetAttributes(attrs ...Attribute)

	// RecordError records an error on the span.
	RecordError(err error)

	// SetStatus sets the span outcome.
	SetStatus(code StatusCode, description string)
}

// SpanOption configures a span at creation.
type SpanOption func(*SpanConfig)

// SpanConfig collects span creation settings.
type SpanConfig struct {
	Attributes []Attribute
	Kind       SpanKind
}

// WithAttributes attaches attributes at span creation.
func WithAttributes(attrs ...Attribute) SpanOption {
	return func(c *SpanConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// WithSpanKind sets the span kind.
func WithSpanKind(kind SpanKind) SpanOption {
	return func(c *SpanConfig) {
		c.Kind = kind
	}
}

// SpanKind classifies the span's role.
type SpanKind int

const (
	SpanKindUnspecified SpanKind = iota
	// SpanKindInternal marks in-process work: the loop and local
	// capability dispatches.
	SpanKindInternal
	// SpanKindClient marks calls that leave the process, like model
	// completions.
	SpanKindClient
)

// StatusCode is the span outcome.
type StatusCode int

const (
	StatusCodeUnset StatusCode = iota
	StatusCodeOK
	StatusCodeError
)

// Attribute is one key-value pair on a span or metric.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Meter creates the instruments the dispatch middleware records into.
type Meter interface {
	Counter(name string, opts ...MetricOption) Counter
	Histogram(name string, opts ...MetricOption) Histogram
}

// Counter is a monotonically increasing value, such as total
// dispatches.
type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

// Histogram records a distribution, such as dispatch latency or cost.
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// MetricOption configures an instrument at creation.
type MetricOption func(*MetricConfig)

// MetricConfig collects instrument settings.
type MetricConfig struct {
	Description string
	Unit        string
}

// WithDescription sets the instrument description.
func WithDescription(desc string) MetricOption {
	return func(c *MetricConfig) {
		c.Description = desc
	}
}

// WithUnit sets the instrument unit.
func WithUnit(unit string) MetricOption {
	return func(c *MetricConfig) {
		c.Unit = unit
	}
}

package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/orchestra-go/domain/telemetry"
)

// Tracer adapts an OpenTelemetry tracer to the telemetry contract.
type Tracer struct {
	otel trace.Tracer
}

// NewTracer creates a tracer from the globally installed provider.
func NewTracer(name string) *Tracer {
	return &Tracer{otel: otel.Tracer(name)}
}

// StartSpan implements telemetry.Tracer.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...telemetry.SpanOption) (context.Context, telemetry.Span) {
	var cfg telemetry.SpanConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	start := make([]trace.SpanStartOption, 0, 2)
	if len(cfg.Attributes) > 0 {
		start = append(start, trace.WithAttributes(otelAttrs(cfg.Attributes)...))
	}
	switch cfg.Kind {
	case telemetry.SpanKindInternal:
		start = append(start, trace.WithSpanKind(trace.SpanKindInternal))
	case telemetry.SpanKindClient:
		start = append(start, trace.WithSpanKind(trace.SpanKindClient))
	}

	ctx, s := t.otel.Start(ctx, name, start...)
	return ctx, &span{otel: s}
}

var _ telemetry.Tracer = (*Tracer)(nil)

type span struct {
	otel trace.Span
}

func (s *span) End() {
	s.otel.End()
}

func (s *span) SetAttributes(attrs ...telemetry.Attribute) {
	s.otel.SetAttributes(otelAttrs(attrs)...)
}

func (s *span) RecordError(err error) {
	s.otel.RecordError(err)
}

func (s *span) SetStatus(code telemetry.StatusCode, description string) {
	switch code {
	case telemetry.StatusCodeOK:
		s.otel.SetStatus(codes.Ok, description)
	case telemetry.StatusCodeError:
		s.otel.SetStatus(codes.Error, description)
	default:
		s.otel.SetStatus(codes.Unset, description)
	}
}

var _ telemetry.Span = (*span)(nil)

// otelAttrs converts domain attributes for both spans and instruments.
// Unrecognized value types are stringified rather than dropped.
func otelAttrs(attrs []telemetry.Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case int:
			out = append(out, attribute.Int(a.Key, v))
		case float64:
			out = append(out, attribute.Float64(a.Key, v))
		case bool:
			out = append(out, attribute.Bool(a.Key, v))
		default:
			out = append(out, attribute.String(a.Key, fmt.Sprint(v)))
		}
	}
	return out
}

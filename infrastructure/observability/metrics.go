package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/felixgeelhaar/orchestra-go/domain/telemetry"
)

// Meter adapts an OpenTelemetry meter to the telemetry contract.
type Meter struct {
	otel metric.Meter
}

// NewMeter creates a meter from the globally installed provider.
func NewMeter(name string) *Meter {
	return &Meter{otel: otel.Meter(name)}
}

func metricOpts(opts []telemetry.MetricOption) (description, unit string) {
	var cfg telemetry.MetricConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.Description, cfg.Unit
}

// Counter implements telemetry.Meter. Instrument creation failures
// degrade to a noop instrument; dispatch must not depend on telemetry.
func (m *Meter) Counter(name string, opts ...telemetry.MetricOption) telemetry.Counter {
	description, unit := metricOpts(opts)
	c, err := m.otel.Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return noopCounter{}
	}
	return &counter{otel: c}
}

// Histogram implements telemetry.Meter.
func (m *Meter) Histogram(name string, opts ...telemetry.MetricOption) telemetry.Histogram {
	description, unit := metricOpts(opts)
	h, err := m.otel.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return noopHistogram{}
	}
	return &histogram{otel: h}
}

var _ telemetry.Meter = (*Meter)(nil)

type counter struct {
	otel metric.Int64Counter
}

func (c *counter) Add(ctx context.Context, value int64, attrs ...telemetry.Attribute) {
	c.otel.Add(ctx, value, metric.WithAttributes(otelAttrs(attrs)...))
}

type histogram struct {
	otel metric.Float64Histogram
}

func (h *histogram) Record(ctx context.Context, value float64, attrs ...telemetry.Attribute) {
	h.otel.Record(ctx, value, metric.WithAttributes(otelAttrs(attrs)...))
}

// Package observability wires the telemetry contracts to OpenTelemetry.
// A Provider owns the exporter lifecycle; the loop and middleware only
// ever see telemetry.Tracer and telemetry.Meter.
package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	orchestra "github.com/felixgeelhaar/orchestra-go"
	"github.com/felixgeelhaar/orchestra-go/domain/telemetry"
)

// Exporter selects where spans go.
type Exporter string

const (
	// ExporterNoop discards all telemetry.
	ExporterNoop Exporter = "noop"
	// ExporterStdout pretty-prints spans to stdout, for development.
	ExporterStdout Exporter = "stdout"
	// ExporterOTLP ships spans over OTLP/gRPC to a collector.
	ExporterOTLP Exporter = "otlp"
)

// Config holds the exporter settings.
type Config struct {
	// ServiceName identifies this process in traces.
	ServiceName string

	// ServiceVersion is stamped on the trace resource.
	ServiceVersion string

	// Exporter selects the span destination.
	Exporter Exporter

	// Endpoint is the OTLP collector address (host:port).
	Endpoint string

	// Insecure disables TLS on the OTLP connection.
	Insecure bool

	// SampleRate keeps this fraction of traces, in [0, 1].
	SampleRate float64

	// BatchTimeout bounds how long spans buffer before export.
	BatchTimeout time.Duration
}

// DefaultConfig returns a configuration that exports nothing.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "orchestra-go",
		ServiceVersion: orchestra.Version,
		Exporter:       ExporterNoop,
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
	}
}

// Option overrides one configuration setting.
type Option func(*Config)

// WithServiceName sets the service name.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithStdout exports spans to stdout.
func WithStdout() Option {
	return func(c *Config) {
		c.Exporter = ExporterStdout
	}
}

// WithOTLP exports spans to an OTLP/gRPC collector.
func WithOTLP(endpoint string) Option {
	return func(c *Config) {
		c.Exporter = ExporterOTLP
		c.Endpoint = endpoint
	}
}

// WithInsecure disables TLS towards the collector.
func WithInsecure() Option {
	return func(c *Config) {
		c.Insecure = true
	}
}

// WithSampleRate sets the trace sampling fraction.
func WithSampleRate(rate float64) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

// Provider owns the configured tracer, meter, and exporter lifecycle.
type Provider struct {
	tracer   telemetry.Tracer
	meter    telemetry.Meter
	shutdown func(context.Context) error
}

// New builds a provider from the options. With the noop exporter (the
// default) nothing is installed globally and Shutdown is free.
func New(opts ...Option) (*Provider, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	exporter, err := newSpanExporter(cfg)
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		return NewNoopProvider(), nil
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.BatchTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{
		tracer:   NewTracer(cfg.ServiceName),
		meter:    NewMeter(cfg.ServiceName),
		shutdown: tp.Shutdown,
	}, nil
}

func newSpanExporter(cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterNoop, "":
		return nil, nil
	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, errors.Join(telemetry.ErrExporterFailed, err)
		}
		return exp, nil
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts,
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
				otlptracegrpc.WithInsecure(),
			)
		}
		exp, err := otlptracegrpc.New(context.Background(), opts...)
		if err != nil {
			return nil, errors.Join(telemetry.ErrExporterFailed, err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("%w: unknown exporter %q", telemetry.ErrExporterFailed, cfg.Exporter)
	}
}

func samplerFor(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the configured tracer.
func (p *Provider) Tracer() telemetry.Tracer {
	return p.tracer
}

// Meter returns the configured meter.
func (p *Provider) Meter() telemetry.Meter {
	return p.meter
}

// Shutdown flushes buffered spans and releases the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	if err := p.shutdown(ctx); err != nil {
		return errors.Join(telemetry.ErrShutdownFailed, err)
	}
	return nil
}

// NewStdoutProvider builds a development provider that prints spans.
func NewStdoutProvider(serviceName string) (*Provider, error) {
	return New(WithServiceName(serviceName), WithStdout())
}

// NewNoopProvider builds a provider that records nothing.
func NewNoopProvider() *Provider {
	return &Provider{
		tracer: NewNoopTracer(),
		meter:  NewNoopMeter(),
	}
}

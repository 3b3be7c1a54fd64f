// Package capability provides the domain model for orchestrated capabilities.
package capability

import (
	"context"
	"fmt"
	"time"
)

// Capability represents a registered operation the orchestrator can invoke.
type Capability interface {
	// Name returns the stable string identifier for the capability.
	Name() string

	// Descriptor returns the capability's immutable metadata.
	Descriptor() Descriptor

	// Execute runs the capability with the given parameters. Failures are
	// reported through Result.Error; Execute never panics and never
	// returns a Go error.
	Execute(ctx context.Context, params map[string]any) Result
}

// Handler is the function signature for capability execution.
type Handler func(ctx context.Context, params map[string]any) (Result, error)

// Definition is a concrete implementation of Capability.
type Definition struct {
	descriptor Descriptor
	handler    Handler
}

// Name returns the capability name.
func (d *Definition) Name() string {
	return d.descriptor.Name
}

// Descriptor returns the capability metadata.
func (d *Definition) Descriptor() Descriptor {
	return d.descriptor
}

// Execute runs the handler, measuring latency and converting every
// failure mode into an error Result.
func (d *Definition) Execute(ctx context.Context, params map[string]any) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = NewErrorResult(fmt.Sprintf("capability %q panicked: %v", d.descriptor.Name, r))
			result.Latency = time.Since(start)
		}
	}()

	if d.handler == nil {
		return NewErrorResult(ErrNoHandler.Error())
	}

	res, err := d.handler(ctx, params)
	if err != nil {
		res = NewErrorResult(err.Error())
	}
	if res.Latency == 0 {
		res.Latency = time.Since(start)
	}
	if d.descriptor.Terminal {
		res.Terminal = true
	}
	return res
}

// Builder provides a fluent API for constructing capabilities.
type Builder struct {
	desc    Descriptor
	handler Handler
	err     error
}

// NewBuilder creates a new capability builder with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{desc: Descriptor{Name: name}}
}

// WithDescription sets the capability description.
func (b *Builder) WithDescription(desc string) *Builder {
	if b.err != nil {
		return b
	}
	b.desc.Description = desc
	return b
}

// WithParameter appends a parameter to the capability's schema. Parameters
// are listed to the decision model in the order they are added.
func (b *Builder) WithParameter(name, typ, description string, required bool) *Builder {
	if b.err != nil {
		return b
	}
	b.desc.Parameters = b.desc.Parameters.With(Parameter{
		Name:        name,
		Type:        typ,
		Description: description,
		Required:    required,
	})
	return b
}

// WithSchema replaces the capability's parameter schema.
func (b *Builder) WithSchema(schema Schema) *Builder {
	if b.err != nil {
		return b
	}
	b.desc.Parameters = schema
	return b
}

// WithEstimatedCost sets the expected cost per invocation in dollars.
func (b *Builder) WithEstimatedCost(cost float64) *Builder {
	if b.err != nil {
		return b
	}
	b.desc.EstimatedCost = cost
	return b
}

// WithEstimatedLatency sets the expected execution latency.
func (b *Builder) WithEstimatedLatency(latency time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	b.desc.EstimatedLatency = latency
	return b
}

// Local marks the capability as executing without leaving the host.
func (b *Builder) Local() *Builder {
	if b.err != nil {
		return b
	}
	b.desc.Local = true
	return b
}

// Terminal marks the capability as ending the orchestration loop.
func (b *Builder) Terminal() *Builder {
	if b.err != nil {
		return b
	}
	b.desc.Terminal = true
	return b
}

// Idempotent marks the capability as safe to retry.
func (b *Builder) Idempotent() *Builder {
	if b.err != nil {
		return b
	}
	b.desc.Idempotent = true
	return b
}

// Cacheable marks the capability's results as cacheable.
func (b *Builder) Cacheable() *Builder {
	if b.err != nil {
		return b
	}
	b.desc.Cacheable = true
	return b
}

// WithTags adds tags to the capability.
func (b *Builder) WithTags(tags ...string) *Builder {
	if b.err != nil {
		return b
	}
	b.desc.Tags = append(b.desc.Tags, tags...)
	return b
}

// WithHandler sets the capability handler function.
func (b *Builder) WithHandler(handler Handler) *Builder {
	if b.err != nil {
		return b
	}
	b.handler = handler
	return b
}

// Build constructs the capability definition.
func (b *Builder) Build() (Capability, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.desc.Name == "" {
		return nil, ErrInvalidName
	}
	if b.handler == nil {
		return nil, ErrNoHandler
	}
	return &Definition{descriptor: b.desc, handler: b.handler}, nil
}

// MustBuild constructs the capability definition or panics on error.
func (b *Builder) MustBuild() Capability {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

var (
	_ Capability = (*Definition)(nil)
)

// Package memory provides in-memory storage implementations.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

// Registry is an in-memory implementation of capability.Registry.
// Registration order is preserved so capability listings are stable
// across calls.
type Registry struct {
	capabilities map[string]capability.Capability
	order        []string
	mu           sync.RWMutex
}

// NewRegistry creates a new in-memory capability registry.
func NewRegistry() *Registry {
	return &Registry{
		capabilities: make(map[string]capability.Capability),
		order:        make([]string, 0),
	}
}

// Register adds a capability to the registry.
func (r *Registry) Register(c capability.Capability) error {
	if c == nil {
		return capability.ErrNilCapability
	}
	if c.Name() == "" {
		return capability.ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.capabilities[c.Name()]; exists {
		return capability.ErrAlreadyRegistered
	}

	r.capabilities[c.Name()] = c
	r.order = append(r.order, c.Name())
	return nil
}

// Get retrieves a capability by name.
func (r *Registry) Get(name string) (capability.Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.capabilities[name]
	if !ok {
		return nil, capability.ErrNotFound
	}
	return c, nil
}

// Descriptors returns all capability descriptors in registration order.
func (r *Registry) Descriptors() []capability.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]capability.Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, r.capabilities[name].Descriptor())
	}
	return descriptors
}

// Names returns all registered capability names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Has checks if a capability is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.capabilities[name]
	return ok
}

// Dispatch executes the named capability. Unknown names, handler errors,
// and handler panics all surface as error Results with zero cost; the
// loop records them as observations and continues.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) (result capability.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = capability.NewErrorResult(fmt.Sprintf("capability %q panicked: %v", name, rec))
		}
	}()

	c, err := r.Get(name)
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Tool '%s' not found in registry", name))
	}
	return c.Execute(ctx, params)
}

// Unregister removes a capability from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.capabilities[name]; !exists {
		return capability.ErrNotFound
	}

	delete(r.capabilities, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.capabilities)
}

var (
	_ capability.Registry = (*Registry)(nil)
)

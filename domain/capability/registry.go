package capability

import "context"

// Registry defines the interface for capability registration, lookup, and
// dispatch. This is a repository interface; implementations live in
// infrastructure. A registry is always an explicit object passed to its
// consumers, never package-level state.
type Registry interface {
	// Register adds a capability to the registry.
	Register(c Capability) error

	// Get retrieves a capability by name.
	Get(name string) (Capability, error)

	// Descriptors returns all capability descriptors in registration order.
	Descriptors() []Descriptor

	// Names returns all registered capability names in registration order.
	Names() []string

	// Has checks if a capability is registered.
	Has(name string) bool

	// Dispatch executes the named capability. Every failure mode,
	// including an unknown name, is reported through Result.Error; Dispatch
	// never panics and never returns a Go error.
	Dispatch(ctx context.Context, name string, params map[string]any) Result

	// Unregister removes a capability from the registry.
	Unregister(name string) error
}

package middleware

// Registry collects middleware in dispatch order: the first registered
// runs outermost around the capability handler.
type Registry struct {
	chain []Middleware
}

// NewRegistry creates an empty middleware registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Use appends middleware and returns the registry for chaining.
func (r *Registry) Use(ms ...Middleware) *Registry {
	r.chain = append(r.chain, ms...)
	return r
}

// Chain composes everything registered into a single middleware, or
// Noop when nothing was registered.
func (r *Registry) Chain() Middleware {
	if len(r.chain) == 0 {
		return Noop()
	}
	return Chain(r.chain...)
}

// Len reports how many middleware are registered.
func (r *Registry) Len() int {
	return len(r.chain)
}

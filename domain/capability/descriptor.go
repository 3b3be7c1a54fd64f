package capability

import (
	"strings"
	"time"
)

// Parameter describes a single named parameter of a capability.
type Parameter struct {
	// Name is the parameter key the decision model must supply.
	Name string `json:"name"`

	// Type is the advertised value type (string, integer, number, boolean,
	// array, object).
	Type string `json:"type"`

	// Description explains the parameter to the decision model.
	Description string `json:"description,omitempty"`

	// Required indicates the parameter must be present for dispatch.
	Required bool `json:"required"`
}

// Schema is an ordered parameter list. Order is preserved so prompts
// render parameters deterministically.
type Schema struct {
	params []Parameter
}

// NewSchema creates a schema from the given parameters.
func NewSchema(params ...Parameter) Schema {
	return Schema{params: params}
}

// With returns a copy of the schema with the parameter appended.
func (s Schema) With(p Parameter) Schema {
	params := make([]Parameter, len(s.params), len(s.params)+1)
	copy(params, s.params)
	return Schema{params: append(params, p)}
}

// Parameters returns the parameters in declaration order.
func (s Schema) Parameters() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Required returns the names of all required parameters in declaration order.
func (s Schema) Required() []string {
	var names []string
	for _, p := range s.params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Get returns the parameter with the given name.
func (s Schema) Get(name string) (Parameter, bool) {
	for _, p := range s.params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Len returns the number of parameters.
func (s Schema) Len() int {
	return len(s.params)
}

// Signature renders the schema as "name: type, name: type" for prompt
// construction.
func (s Schema) Signature() string {
	if len(s.params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s.params))
	for _, p := range s.params {
		parts = append(parts, p.Name+": "+p.Type)
	}
	return strings.Join(parts, ", ")
}

// Descriptor is the immutable metadata advertised for a capability.
// The orchestrator uses it to build prompts, estimate costs, and apply
// dispatch policy; it never changes after registration.
type Descriptor struct {
	// Name is the unique capability identifier.
	Name string `json:"name"`

	// Description tells the decision model when to use the capability.
	Description string `json:"description"`

	// Parameters is the ordered parameter schema.
	Parameters Schema `json:"parameters"`

	// EstimatedCost is the expected dollar cost per invocation.
	EstimatedCost float64 `json:"estimated_cost"`

	// EstimatedLatency is the expected execution time.
	EstimatedLatency time.Duration `json:"estimated_latency"`

	// Local indicates execution never leaves the host.
	Local bool `json:"local"`

	// Terminal indicates invoking the capability ends the loop.
	Terminal bool `json:"terminal"`

	// Idempotent indicates repeated calls with the same parameters are safe.
	Idempotent bool `json:"idempotent"`

	// Cacheable indicates results may be served from cache.
	Cacheable bool `json:"cacheable"`

	// Tags are arbitrary labels for categorization.
	Tags []string `json:"tags,omitempty"`
}

// PromptLine renders the descriptor as a single capability-list line for
// the decision model's system context.
func (d Descriptor) PromptLine() string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(d.Name)
	b.WriteString(": ")
	b.WriteString(d.Description)
	if sig := d.Parameters.Signature(); sig != "" {
		b.WriteString(" (")
		b.WriteString(sig)
		b.WriteString(")")
	}
	return b.String()
}

// CanRetry returns true if the capability can be safely retried on failure.
func (d Descriptor) CanRetry() bool {
	return d.Idempotent
}

// CanCache returns true if results can be served from cache.
func (d Descriptor) CanCache() bool {
	return d.Cacheable && d.Idempotent
}

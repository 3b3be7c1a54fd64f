// Package policy provides dispatch policy for orchestrated capabilities.
package policy

import (
	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

// Preferences express the operator's standing trade-offs for a session.
//
// Thread Safety: Preferences are a value type. Configure them before
// constructing the engine and treat them as immutable thereafter.
type Preferences struct {
	// Budget expresses cost sensitivity in [0, 1]. 0 prefers free local
	// capabilities, 1 permits the most expensive ones.
	Budget float64 `json:"budget" yaml:"budget"`

	// Privacy restricts dispatch to local capabilities when true.
	Privacy bool `json:"privacy" yaml:"privacy"`

	// Quality expresses the preference for higher-quality results in
	// [0, 1], trading off against cost and latency.
	Quality float64 `json:"quality" yaml:"quality"`
}

// DefaultPreferences returns balanced preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		Budget:  0.5,
		Privacy: false,
		Quality: 0.5,
	}
}

// Validate checks that the preference values are in range.
func (p Preferences) Validate() error {
	if p.Budget < 0 || p.Budget > 1 {
		return ErrBudgetOutOfRange
	}
	if p.Quality < 0 || p.Quality > 1 {
		return ErrQualityOutOfRange
	}
	return nil
}

// Allows reports whether the capability may be dispatched under these
// preferences. Privacy mode permits only local capabilities.
func (p Preferences) Allows(d capability.Descriptor) bool {
	if p.Privacy && !d.Local {
		return false
	}
	return true
}

// Eligible filters descriptors to those dispatchable under these
// preferences, preserving order.
func (p Preferences) Eligible(descriptors []capability.Descriptor) []capability.Descriptor {
	eligible := make([]capability.Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if p.Allows(d) {
			eligible = append(eligible, d)
		}
	}
	return eligible
}

// Package action provides the decision value object produced by the
// decision model each turn.
package action

import "encoding/json"

// Action is a single validated decision: which capability to invoke,
// with which parameters, and why.
type Action struct {
	// Reasoning is the model's stated thinking for this turn.
	Reasoning string `json:"reasoning"`

	// Tool is the name of the capability to invoke.
	Tool string `json:"tool"`

	// Parameters are the arguments for the capability.
	Parameters map[string]any `json:"parameters"`

	// Confidence is the model's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// New creates an action with full confidence and an empty parameter map.
func New(tool string) Action {
	return Action{
		Tool:       tool,
		Parameters: make(map[string]any),
		Confidence: 1.0,
	}
}

// FromMap builds an action from a decoded JSON object, applying the
// defaults the wire contract allows the model to omit: empty reasoning,
// empty parameters, confidence 1.0.
func FromMap(m map[string]any) Action {
	a := Action{
		Parameters: make(map[string]any),
		Confidence: 1.0,
	}
	if v, ok := m["reasoning"].(string); ok {
		a.Reasoning = v
	}
	if v, ok := m["tool"].(string); ok {
		a.Tool = v
	}
	if v, ok := m["parameters"].(map[string]any); ok {
		a.Parameters = v
	}
	if v, ok := m["confidence"]; ok {
		switch n := v.(type) {
		case float64:
			a.Confidence = n
		case int:
			a.Confidence = float64(n)
		}
	}
	return a
}

// ClampConfidence coerces the confidence into [0, 1]. Out-of-range
// values are clamped, never rejected.
func (a *Action) ClampConfidence() {
	if a.Confidence < 0 {
		a.Confidence = 0
	}
	if a.Confidence > 1 {
		a.Confidence = 1
	}
}

// IsTerminal reports whether the action names the given terminal
// capability.
func (a Action) IsTerminal(terminalName string) bool {
	return a.Tool == terminalName
}

// StringParam returns the named parameter as a string.
func (a Action) StringParam(name string) (string, bool) {
	v, ok := a.Parameters[name].(string)
	return v, ok
}

// JSON returns the canonical serialized form of the action, suitable for
// re-injection into the conversation as the model's own prior turn.
func (a Action) JSON() string {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Package answer provides the terminal capability that ends a loop run.
// Termination is part of the action space: the decision model finishes
// by calling a capability, not by a side channel.
package answer

import (
	"context"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

// Name is the capability name the loop treats as terminal by default.
const Name = "finish"

// New creates the finish capability.
func New() capability.Capability {
	return capability.NewBuilder(Name).
		WithDescription(
			"Call this tool when you have the final answer to return to the user. "+
				"Use this to complete the task and end the workflow. "+
				"Provide the complete, well-formatted answer.").
		WithParameter("answer", "string", "The final answer to return to the user", true).
		WithParameter("confidence", "number", "Confidence score from 0.0 to 1.0", false).
		WithParameter("sources", "array", "List of sources/tools used to derive the answer", false).
		Terminal().
		Local().
		WithHandler(run).
		MustBuild()
}

func run(_ context.Context, params map[string]any) (capability.Result, error) {
	answer, _ := params["answer"].(string)

	confidence := 1.0
	switch v := params["confidence"].(type) {
	case float64:
		confidence = v
	case int:
		confidence = float64(v)
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	sources := []string{}
	switch v := params["sources"].(type) {
	case []string:
		sources = append(sources, v...)
	case []any:
		for _, s := range v {
			if str, ok := s.(string); ok {
				sources = append(sources, str)
			}
		}
	}

	result := capability.NewTerminalResult(answer)
	result.Metadata = map[string]any{
		"confidence": confidence,
		"sources":    sources,
	}
	return result, nil
}

package model

import (
	"context"
	"sync"
)

// ScriptedResponse is a single canned completion step.
type ScriptedResponse struct {
	// Content is the assistant message content to return.
	Content string
	// Cost is the dollar cost to report for this response.
	Cost float64
	// Err, when set, is returned instead of a response.
	Err error
}

// ScriptedProvider returns a fixed sequence of responses. It backs
// examples and tests where the loop's behavior must be deterministic.
type ScriptedProvider struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	index     int
	// Requests records every request received, for assertions.
	Requests []CompletionRequest
}

// NewScriptedProvider creates a provider that replays the given responses
// in order.
func NewScriptedProvider(responses ...ScriptedResponse) *ScriptedProvider {
	return &ScriptedProvider{responses: responses}
}

// Scripted creates a provider from plain content strings, all reporting
// zero cost.
func Scripted(contents ...string) *ScriptedProvider {
	responses := make([]ScriptedResponse, len(contents))
	for i, c := range contents {
		responses[i] = ScriptedResponse{Content: c}
	}
	return NewScriptedProvider(responses...)
}

// Name returns the provider name.
func (p *ScriptedProvider) Name() string {
	return "scripted"
}

// Complete returns the next scripted response. When the script is
// exhausted, the last response repeats so budget-exhaustion paths can be
// exercised without counting turns in the script.
func (p *ScriptedProvider) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)

	if len(p.responses) == 0 {
		return CompletionResponse{}, &APIError{Type: "script_error", Message: "no scripted responses"}
	}

	resp := p.responses[p.index]
	if p.index < len(p.responses)-1 {
		p.index++
	}
	if resp.Err != nil {
		return CompletionResponse{}, resp.Err
	}

	return CompletionResponse{
		Model:   "scripted",
		Message: AssistantMessage(resp.Content),
		Cost:    resp.Cost,
	}, nil
}

// Calls returns how many completion requests the provider has served.
func (p *ScriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}

package model

import "context"

// MockProvider is a test double whose behavior is supplied per test.
type MockProvider struct {
	// CompleteFunc handles completion requests.
	CompleteFunc func(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	// NameValue is the name to report; defaults to "mock".
	NameValue string
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	if p.NameValue != "" {
		return p.NameValue
	}
	return "mock"
}

// Complete delegates to CompleteFunc, or returns an empty assistant
// message when unset.
func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if p.CompleteFunc != nil {
		return p.CompleteFunc(ctx, req)
	}
	return CompletionResponse{Model: p.Name(), Message: AssistantMessage("")}, nil
}

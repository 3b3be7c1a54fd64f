// Package llm provides delegate capabilities: language models exposed as
// callable tools so the orchestrator can route subtasks to the cheapest
// model that can handle them.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/model"
)

// defaultMaxTokens bounds a delegate completion unless the action says
// otherwise.
const defaultMaxTokens = 2048

// DelegateConfig configures a delegate capability.
type DelegateConfig struct {
	// Model is the model identifier sent on completion requests.
	Model string

	// EstimatedCost is the advertised dollar cost per invocation.
	EstimatedCost float64

	// EstimatedLatency is the advertised execution time.
	EstimatedLatency time.Duration

	// Local marks execution as never leaving the host.
	Local bool
}

// NewDelegate creates a capability that forwards a prompt to the given
// provider. Params: prompt (required), system_prompt, max_tokens.
func NewDelegate(name, description string, provider model.Provider, cfg DelegateConfig) capability.Capability {
	b := capability.NewBuilder(name).
		WithDescription(description).
		WithParameter("prompt", "string", "The prompt/instruction for the model", true).
		WithParameter("system_prompt", "string", "Optional system prompt to set context", false).
		WithParameter("max_tokens", "integer", "Maximum tokens to generate (default: 2048)", false).
		WithEstimatedCost(cfg.EstimatedCost).
		WithEstimatedLatency(cfg.EstimatedLatency).
		WithHandler(func(ctx context.Context, params map[string]any) (capability.Result, error) {
			return delegate(ctx, provider, &cfg, params), nil
		})
	if cfg.Local {
		b = b.Local()
	}
	return b.MustBuild()
}

func delegate(ctx context.Context, provider model.Provider, cfg *DelegateConfig, params map[string]any) capability.Result {
	prompt, _ := params["prompt"].(string)
	maxTokens := defaultMaxTokens
	switch v := params["max_tokens"].(type) {
	case int:
		maxTokens = v
	case float64:
		maxTokens = int(v)
	}

	var messages []model.Message
	if system, ok := params["system_prompt"].(string); ok && system != "" {
		messages = append(messages, model.SystemMessage(system))
	}
	messages = append(messages, model.UserMessage(prompt))

	resp, err := provider.Complete(ctx, model.CompletionRequest{
		Model:     cfg.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("%s call failed: %v", provider.Name(), err))
	}

	result := capability.NewResult(resp.Message.Content)
	result.Cost = resp.Cost
	result.Latency = resp.Latency
	result.Metadata = map[string]any{
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}
	return result
}

// Phi4 creates the local reasoning delegate, typically backed by an LM
// Studio provider. Free and fast; the cost-efficient option.
func Phi4(provider model.Provider, modelName string) capability.Capability {
	return NewDelegate("phi4",
		"Local Phi-4 language model for code generation, summarization, "+
			"query formulation, and general reasoning. Fast and free. "+
			"Use for: writing code, drafting queries, summarizing results, "+
			"simple reasoning tasks.",
		provider,
		DelegateConfig{
			Model:            modelName,
			EstimatedCost:    0,
			EstimatedLatency: 2 * time.Second,
			Local:            true,
		})
}

// Gemini creates the cloud reasoning delegate for tasks the local model
// cannot handle.
func Gemini(provider model.Provider, modelName string) capability.Capability {
	return NewDelegate("gemini",
		"Google Gemini model for complex reasoning, long-context analysis, "+
			"and tasks requiring a powerful model. Costs money per call; "+
			"prefer phi4 for simple tasks.",
		provider,
		DelegateConfig{
			Model:            modelName,
			EstimatedCost:    0.001,
			EstimatedLatency: 3 * time.Second,
			Local:            false,
		})
}

package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultLMStudioBaseURL = "http://localhost:1234/v1"
	defaultLMStudioAPIKey  = "lm-studio"
	defaultLMStudioTimeout = 120 * time.Second
)

// LMStudioProvider implements Provider for LM Studio's OpenAI-compatible
// local server. Local inference is free, so every response reports zero
// cost regardless of token usage.
type LMStudioProvider struct {
	config    ProviderConfig
	client    *http.Client
	estimator *Estimator
}

// NewLMStudioProvider creates an LM Studio provider. The zero-value
// config targets a default local install.
func NewLMStudioProvider(config ProviderConfig) *LMStudioProvider {
	if config.BaseURL == "" {
		config.BaseURL = defaultLMStudioBaseURL
	}
	if config.APIKey == "" {
		config.APIKey = defaultLMStudioAPIKey
	}
	timeout := defaultLMStudioTimeout
	if config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}
	return &LMStudioProvider{
		config:    config,
		client:    &http.Client{Timeout: timeout},
		estimator: NewEstimator(),
	}
}

// Name returns the provider name.
func (p *LMStudioProvider) Name() string {
	return "lmstudio"
}

type lmStudioRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type lmStudioResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends a chat completion request to the local server.
func (p *LMStudioProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	body := lmStudioRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	start := time.Now()
	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()
	latency := time.Since(start)

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("reading response: %w", err)
	}

	var resp lmStudioResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return CompletionResponse{}, fmt.Errorf("unmarshaling response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		if resp.Error != nil {
			return CompletionResponse{}, &APIError{
				Type:    resp.Error.Type,
				Message: resp.Error.Message,
				Code:    resp.Error.Code,
			}
		}
		return CompletionResponse{}, &APIError{
			Type:    "http_error",
			Message: fmt.Sprintf("unexpected status %d", httpResp.StatusCode),
		}
	}

	if len(resp.Choices) == 0 {
		return CompletionResponse{}, &APIError{
			Type:    "empty_response",
			Message: "no choices in response",
		}
	}

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	// LM Studio omits usage for some models; estimate locally so
	// trajectories still carry token counts.
	if usage.TotalTokens == 0 {
		usage.PromptTokens = p.estimator.CountMessages(req.Messages)
		usage.CompletionTokens = p.estimator.Count(resp.Choices[0].Message.Content)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}

	respModel := resp.Model
	if respModel == "" {
		respModel = model
	}

	return CompletionResponse{
		Model:   respModel,
		Message: resp.Choices[0].Message,
		Usage:   usage,
		Cost:    0,
		Latency: latency,
	}, nil
}

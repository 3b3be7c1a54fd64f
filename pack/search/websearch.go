// Package search provides the retrieval capabilities: public web search,
// page fetching, and RAG over the local knowledge base.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

// DefaultBraveBaseURL is the Brave Search web endpoint.
const DefaultBraveBaseURL = "https://api.search.brave.com/res/v1/web/search"

// braveMaxResults is the per-request cap imposed by the Brave API.
const braveMaxResults = 20

// WebSearchConfig configures the web_search capability.
type WebSearchConfig struct {
	// APIKey is the Brave Search subscription token. When empty the
	// capability stays registered but every call returns an error Result.
	APIKey string

	// BaseURL overrides the API endpoint (tests).
	BaseURL string

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// WebResult is one row of a web search response.
type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// NewWebSearch creates the web_search capability backed by the Brave
// Search API.
func NewWebSearch(cfg WebSearchConfig) capability.Capability {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBraveBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	return capability.NewBuilder("web_search").
		WithDescription(
			"Searches the public internet for real-time information. "+
				"Use for current events, documentation, or information not in local knowledge.").
		WithParameter("query", "string", "The search query", true).
		WithParameter("num_results", "integer", "Number of results to return (default: 5)", false).
		WithEstimatedCost(0.001).
		WithEstimatedLatency(1500 * time.Millisecond).
		Idempotent().
		Cacheable().
		WithHandler(func(ctx context.Context, params map[string]any) (capability.Result, error) {
			return webSearch(ctx, &cfg, params), nil
		}).
		MustBuild()
}

func webSearch(ctx context.Context, cfg *WebSearchConfig, params map[string]any) capability.Result {
	query, _ := params["query"].(string)
	numResults := intParam(params, "num_results", 5)
	if numResults > braveMaxResults {
		numResults = braveMaxResults
	}
	if numResults < 1 {
		numResults = 1
	}

	if cfg.APIKey == "" {
		return capability.NewErrorResult("Brave Search API key not configured. Set brave_search.api_key in your config.")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Brave Search request failed: %v", err))
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(numResults))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Brave Search request failed: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", cfg.APIKey)

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Brave Search request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return capability.NewErrorResult(fmt.Sprintf("Brave Search API error: %d", resp.StatusCode))
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				URL         string `json:"url"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Brave Search response invalid: %v", err))
	}

	results := make([]WebResult, 0, numResults)
	for _, item := range payload.Web.Results {
		if len(results) == numResults {
			break
		}
		results = append(results, WebResult{
			Title:   item.Title,
			Snippet: item.Description,
			URL:     item.URL,
		})
	}

	result := capability.NewResult(map[string]any{
		"query":         query,
		"results":       results,
		"total_results": len(results),
	})
	result.Metadata = map[string]any{"source": "brave_search"}
	return result
}

func intParam(params map[string]any, name string, fallback int) int {
	switch v := params[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

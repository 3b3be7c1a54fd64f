package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

// defaultFetchMaxChars bounds the extracted article text fed back to the
// decision model.
const defaultFetchMaxChars = 4000

// WebFetchConfig configures the web_fetch capability.
type WebFetchConfig struct {
	// HTTPClient overrides the default client.
	HTTPClient *http.Client

	// MaxChars truncates the extracted text. Zero uses the default.
	MaxChars int
}

// NewWebFetch creates the web_fetch capability: fetch a URL and extract
// the readable article text.
func NewWebFetch(cfg WebFetchConfig) capability.Capability {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = defaultFetchMaxChars
	}

	return capability.NewBuilder("web_fetch").
		WithDescription(
			"Fetches a web page and extracts its readable article text. "+
				"Use after web_search to read a promising result in full.").
		WithParameter("url", "string", "The URL to fetch", true).
		WithEstimatedLatency(2 * time.Second).
		Idempotent().
		Cacheable().
		WithHandler(func(ctx context.Context, params map[string]any) (capability.Result, error) {
			return webFetch(ctx, &cfg, params), nil
		}).
		MustBuild()
}

func webFetch(ctx context.Context, cfg *WebFetchConfig, params map[string]any) capability.Result {
	rawURL, _ := params["url"].(string)

	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		return capability.NewErrorResult(fmt.Sprintf("Invalid URL: %q", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Fetch failed: %v", err))
	}

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Fetch failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return capability.NewErrorResult(fmt.Sprintf("Fetch failed: HTTP %d", resp.StatusCode))
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return capability.NewErrorResult(fmt.Sprintf("Could not extract article text: %v", err))
	}

	content := strings.TrimSpace(article.TextContent)
	truncated := false
	if len(content) > cfg.MaxChars {
		content = content[:cfg.MaxChars]
		truncated = true
	}

	return capability.NewResult(map[string]any{
		"url":       pageURL.String(),
		"title":     article.Title,
		"content":   content,
		"truncated": truncated,
	})
}

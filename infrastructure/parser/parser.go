// Package parser turns raw decision-model responses into validated
// actions. Models emit prose, reasoning spans, and markdown around their
// JSON; the parser extracts the first balanced object and validates it
// against the capability registry.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/orchestra-go/domain/action"
	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Parser validates decision-model output against a capability registry.
type Parser struct {
	registry capability.Registry
}

// New creates a parser bound to the given registry.
func New(registry capability.Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse extracts and validates an action from a raw model response.
// Failures are reported as *ParseError; the parser never retries, the
// loop owns retry policy.
func (p *Parser) Parse(raw string) (action.Action, error) {
	candidate, err := extractJSON(raw)
	if err != nil {
		return action.Action{}, err
	}

	var data map[string]any
	if jsonErr := json.Unmarshal([]byte(candidate), &data); jsonErr != nil {
		return action.Action{}, newParseError(KindInvalidJSON,
			fmt.Sprintf("Invalid JSON: %v", jsonErr))
	}

	if _, ok := data["tool"]; !ok {
		return action.Action{}, newParseError(KindMissingToolField,
			"Missing 'tool' field in response")
	}

	a := action.FromMap(data)
	if err := p.validate(&a); err != nil {
		return action.Action{}, err
	}
	return a, nil
}

// validate checks the action against the registry and clamps confidence.
func (p *Parser) validate(a *action.Action) error {
	if !p.registry.Has(a.Tool) {
		return newParseError(KindUnknownTool,
			fmt.Sprintf("Tool '%s' not found. Available: %s",
				a.Tool, strings.Join(p.registry.Names(), ", ")))
	}

	c, err := p.registry.Get(a.Tool)
	if err != nil {
		return newParseError(KindUnknownTool,
			fmt.Sprintf("Tool '%s' not found. Available: %s",
				a.Tool, strings.Join(p.registry.Names(), ", ")))
	}
	for _, param := range c.Descriptor().Parameters.Required() {
		if _, ok := a.Parameters[param]; !ok {
			return newParseError(KindMissingParameter,
				fmt.Sprintf("Missing required parameter '%s' for tool '%s'", param, a.Tool))
		}
	}

	a.ClampConfidence()
	return nil
}

// Fallback synthesizes a known-safe action after an unrecoverable parse
// failure: the raw query is forwarded to the named capability at half
// confidence.
func Fallback(query string, parseErr error, capabilityName string) action.Action {
	return action.Action{
		Reasoning: fmt.Sprintf("Fallback due to parse error: %v", parseErr),
		Tool:      capabilityName,
		Parameters: map[string]any{
			"prompt": "Please help with this query: " + query,
		},
		Confidence: 0.5,
	}
}

// extractJSON locates the first balanced JSON object in the response.
// Reasoning spans are stripped first; they are discarded, never
// interpreted. Brace depth is tracked only outside string literals, with
// a single-character lookback deciding whether a quote is escaped.
func extractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = thinkRe.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "</think>", "")

	start := strings.Index(cleaned, "{")
	if start == -1 {
		return "", newParseError(KindNoJSONFound,
			fmt.Sprintf("No valid JSON found in response: %s", truncate(cleaned, 100)))
	}

	inString := false
	depth := 0
	for i := start; i < len(cleaned); i++ {
		ch := cleaned[i]
		if ch == '"' && (i == 0 || cleaned[i-1] != '\\') {
			inString = !inString
		}
		if !inString {
			switch ch {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				return cleaned[start : i+1], nil
			}
		}
	}

	return "", newParseError(KindUnterminatedJSON,
		fmt.Sprintf("Unterminated JSON object in response: %s", truncate(cleaned[start:], 100)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package model

import "strings"

// ModelPricing holds per-1K-token prices in USD.
type ModelPricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// pricingTable maps model name prefixes to prices. Longest prefix wins so
// dated variants (gemini-1.5-pro-002) resolve to their family.
var pricingTable = map[string]ModelPricing{
	"gemini-2.5-flash": {InputPer1K: 0.0003, OutputPer1K: 0.0025},
	"gemini-2.0-flash": {InputPer1K: 0.0001, OutputPer1K: 0.0004},
	"gemini-1.5-flash": {InputPer1K: 0.000075, OutputPer1K: 0.0003},
	"gemini-1.5-pro":   {InputPer1K: 0.00125, OutputPer1K: 0.005},
}

// PricingFor returns the price entry for a model name. Unknown models
// resolve to a zero entry; local models cost nothing and cloud models
// without a table entry report zero rather than a guess.
func PricingFor(model string) ModelPricing {
	var best string
	for prefix := range pricingTable {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return ModelPricing{}
	}
	return pricingTable[best]
}

// CostFor computes the dollar cost of a completion from its token usage.
func CostFor(model string, usage Usage) float64 {
	p := PricingFor(model)
	return float64(usage.PromptTokens)/1000*p.InputPer1K +
		float64(usage.CompletionTokens)/1000*p.OutputPer1K
}

package utils

import "strings"

// Pricing per 1K tokens. Both routing tiers are billed at the same fixed
// rates; the routing decision saves latency and upstream spend, not a
// different internal rate.
const (
	InputRatePer1K  = 0.00015 // $0.15 per 1M input tokens
	OutputRatePer1K = 0.0006  // $0.60 per 1M output tokens
)

// RequestCost returns the cost of one generation call in USD.
func RequestCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1000*InputRatePer1K +
		float64(outputTokens)/1000*OutputRatePer1K
}

// EstimateTokens estimates the token count of text when the tokenizer
// cannot be used. Roughly 1 token per 4 characters of English.
func EstimateTokens(text string) int {
	text = strings.TrimSpace(text)

	tokenCount := len(text) / 4

	// Buffer for special tokens
	if tokenCount < 10 {
		tokenCount = 10
	}

	return tokenCount
}

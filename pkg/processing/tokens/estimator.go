package tokens

import (
	"provider-balancer/balancer/pkg/translate"
)

// Estimator estimates token counts for Anthropic Messages API requests.
// Implementations may use different algorithms (character-based, BPE, etc.).
type Estimator interface {
	// EstimateText estimates tokens for a single text string.
	EstimateText(text string, model string) int

	// EstimateRequest estimates the input token count for a complete
	// /v1/messages request: system prompt, message content, and tool
	// definitions.
	EstimateRequest(req *translate.AnthropicRequest) (int, error)
}

package tokens

import (
	"strings"
	"sync"

	"provider-balancer/balancer/pkg/translate"
)

// defaultCharsPerToken is used for any model without a specific ratio below.
// Roughly matches Claude's observed tokenization density.
const defaultCharsPerToken = 3.5

// modelRatios holds per-model-family characters-per-token ratios, matched
// by prefix (e.g. "claude-3" matches "claude-3-5-sonnet-20241022").
var modelRatios = map[string]float64{
	"claude": 3.5,
	"gpt":    4.0,
	"o1":     4.0,
	"gemini": 4.0,
}

// imageTokenEstimate is the flat token cost charged per image block, since
// a local character-based estimator has no way to inspect image content.
const imageTokenEstimate = 1000

// toolOverheadTokens is the flat token cost charged per tool definition or
// tool_use block for its JSON envelope, on top of the character-estimated
// text within it.
const toolOverheadTokens = 10

// messageOverheadTokens accounts for the role tag and block boundaries
// Anthropic's own tokenizer charges per message.
const messageOverheadTokens = 4

// SimpleEstimator implements character-based token estimation, the local
// tokenizer approximation behind POST /v1/messages/count_tokens. It never
// calls an upstream provider.
type SimpleEstimator struct {
	mu sync.Mutex
}

// NewSimpleEstimator creates a character-based token estimator.
func NewSimpleEstimator() *SimpleEstimator {
	return &SimpleEstimator{}
}

// EstimateText estimates the token count of a single string for the given
// model, rounding to the nearest integer and guaranteeing at least 1 token
// for non-empty text.
func (e *SimpleEstimator) EstimateText(text string, model string) int {
	if text == "" {
		return 0
	}
	ratio := charsPerToken(model)
	tokens := float64(len(text)) / ratio
	if tokens < 1 {
		return 1
	}
	return int(tokens + 0.5)
}

// EstimateRequest estimates the total input token count for a /v1/messages
// request body: system prompt, every message's content blocks, and any
// tool definitions.
func (e *SimpleEstimator) EstimateRequest(req *translate.AnthropicRequest) (int, error) {
	total := 0

	if len(req.System) > 0 {
		blocks, err := translate.DecodeContent(req.System)
		if err != nil {
			return 0, err
		}
		total += e.estimateBlocks(blocks, req.Model)
	}

	for _, msg := range req.Messages {
		blocks, err := translate.DecodeContent(msg.Content)
		if err != nil {
			return 0, err
		}
		total += messageOverheadTokens
		total += e.estimateBlocks(blocks, req.Model)
	}

	for _, tool := range req.Tools {
		total += toolOverheadTokens
		total += e.EstimateText(tool.Name, req.Model)
		total += e.EstimateText(tool.Description, req.Model)
		total += e.EstimateText(string(tool.InputSchema), req.Model)
	}

	return total, nil
}

func (e *SimpleEstimator) estimateBlocks(blocks []translate.ContentBlock, model string) int {
	total := 0
	for _, b := range blocks {
		switch b.Kind {
		case translate.BlockText:
			total += e.EstimateText(b.Text, model)
		case translate.BlockImage:
			total += imageTokenEstimate
		case translate.BlockToolUse:
			total += e.EstimateText(b.ToolUseName, model)
			total += e.EstimateText(string(b.ToolUseInput), model)
			total += toolOverheadTokens
		case translate.BlockToolResult:
			total += e.EstimateText(string(b.ToolResultContent), model)
		}
	}
	return total
}

func charsPerToken(model string) float64 {
	for prefix, ratio := range modelRatios {
		if strings.HasPrefix(model, prefix) {
			return ratio
		}
	}
	return defaultCharsPerToken
}

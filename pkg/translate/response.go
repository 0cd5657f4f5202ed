package translate

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// ResponseFromOpenAI translates a non-streaming OpenAI chat-completions
// response into an Anthropic MessagesResponse (§4.4 "OpenAI response →
// Anthropic response").
func ResponseFromOpenAI(resp *OpenAIResponse) (*AnthropicResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai response has no choices")
	}
	choice := resp.Choices[0]

	out := &AnthropicResponse{
		ID:    "msg_" + resp.ID,
		Type:  "message",
		Role:  "assistant",
		Model: resp.Model,
		Usage: AnthropicUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		StopReason: normalizeFinishReason(choice.FinishReason),
	}

	if choice.Message.Content != nil && *choice.Message.Content != "" {
		out.Content = append(out.Content, AnthropicResponseBlock{
			Type: "text",
			Text: *choice.Message.Content,
		})
	}

	for _, tc := range choice.Message.ToolCalls {
		input := json.RawMessage(tc.Function.Arguments)
		if !json.Valid(input) {
			slog.Warn("tool call arguments failed to parse as JSON",
				"tool_call_id", tc.ID, "function", tc.Function.Name)
			errBody, _ := json.Marshal(map[string]string{
				"error": "failed to parse tool arguments",
				"raw":   tc.Function.Arguments,
			})
			input = errBody
		}
		out.Content = append(out.Content, AnthropicResponseBlock{
			Type:  "tool_use",
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		})
	}

	return out, nil
}

// normalizeFinishReason maps an OpenAI finish_reason to an Anthropic
// stop_reason (§4.4).
func normalizeFinishReason(reason string) string {
	switch reason {
	case "stop":
		return "end_turn"
	case "length":
		return "max_tokens"
	case "tool_calls":
		return "tool_use"
	case "content_filter":
		return "stop_sequence"
	default:
		return reason
	}
}

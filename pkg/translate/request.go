package translate

import (
	"encoding/json"
	"fmt"
)

// RequestToOpenAI translates an inbound Anthropic request into the body an
// OpenAICompatible upstream expects (§4.4 "Anthropic → OpenAI request").
//
// Unlike the teacher's anthropic/transform.go, this does not validate strict
// user/assistant alternation: tool_use/tool_result round-trips legitimately
// produce consecutive same-role turns once flattened, and the spec does not
// require alternation.
func RequestToOpenAI(req *AnthropicRequest, upstreamModel string) (*OpenAIRequest, error) {
	out := &OpenAIRequest{
		Model:       upstreamModel,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stream:      req.Stream,
		Stop:        req.StopSequences,
	}

	if len(req.System) > 0 {
		systemText, err := systemToText(req.System)
		if err != nil {
			return nil, err
		}
		if systemText != "" {
			out.Messages = append(out.Messages, openAIMessage{Role: "system", Content: &systemText})
		}
	}

	for _, m := range req.Messages {
		blocks, err := DecodeContent(m.Content)
		if err != nil {
			return nil, fmt.Errorf("message role %q: %w", m.Role, err)
		}
		msgs, err := flattenMessage(m.Role, blocks)
		if err != nil {
			return nil, err
		}
		out.Messages = append(out.Messages, msgs...)
	}

	if len(req.Tools) > 0 {
		out.Tools = make([]openAITool, len(req.Tools))
		for i, t := range req.Tools {
			out.Tools[i] = openAITool{
				Type: "function",
				Function: openAIFunctionSpec{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.InputSchema,
				},
			}
		}
	}

	if len(req.ToolChoice) > 0 {
		choice, err := translateToolChoice(req.ToolChoice)
		if err != nil {
			return nil, err
		}
		out.ToolChoice = choice
	}

	return out, nil
}

func systemToText(raw json.RawMessage) (string, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}
	blocks, err := DecodeContent(raw)
	if err != nil {
		return "", fmt.Errorf("system: %w", err)
	}
	text := ""
	for i, b := range blocks {
		if b.Kind != BlockText {
			continue
		}
		if i > 0 && text != "" {
			text += "\n"
		}
		text += b.Text
	}
	return text, nil
}

// flattenMessage expands one Anthropic message into zero or more OpenAI
// messages: text/image content collapses into a single message, but each
// tool_use block becomes its own assistant message with tool_calls, and
// each tool_result block becomes its own role:tool message, per §4.4.
func flattenMessage(role string, blocks []ContentBlock) ([]openAIMessage, error) {
	var out []openAIMessage
	var textParts []string
	var toolCalls []openAIToolCall

	flushText := func() {
		if len(textParts) == 0 {
			return
		}
		joined := ""
		for i, t := range textParts {
			if i > 0 {
				joined += "\n"
			}
			joined += t
		}
		out = append(out, openAIMessage{Role: role, Content: &joined})
		textParts = nil
	}
	flushToolCalls := func() {
		if len(toolCalls) == 0 {
			return
		}
		out = append(out, openAIMessage{Role: "assistant", ToolCalls: toolCalls})
		toolCalls = nil
	}

	for _, b := range blocks {
		switch b.Kind {
		case BlockText:
			textParts = append(textParts, b.Text)
		case BlockImage:
			// Collapse into the text message as an "[image: data:...]" text
			// placeholder alongside any surrounding text; no image_url content
			// part is produced.
			url := fmt.Sprintf("data:%s;base64,%s", b.ImageMediaType, b.ImageData)
			textParts = append(textParts, fmt.Sprintf("[image: %s]", url))
		case BlockToolUse:
			flushText()
			args := "{}"
			if len(b.ToolUseInput) > 0 {
				args = string(b.ToolUseInput)
			}
			toolCalls = append(toolCalls, openAIToolCall{
				ID:   b.ToolUseID,
				Type: "function",
				Function: openAIFunctionCall{
					Name:      b.ToolUseName,
					Arguments: args,
				},
			})
			flushToolCalls()
		case BlockToolResult:
			flushText()
			flushToolCalls()
			content := toolResultText(b.ToolResultContent)
			out = append(out, openAIMessage{
				Role:       "tool",
				Content:    &content,
				ToolCallID: b.ToolResultID,
			})
		default:
			return nil, fmt.Errorf("unhandled content block kind %q", b.Kind)
		}
	}
	flushText()
	flushToolCalls()

	if len(out) == 0 {
		empty := ""
		out = append(out, openAIMessage{Role: role, Content: &empty})
	}
	return out, nil
}

func translateToolChoice(raw json.RawMessage) (interface{}, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "auto" || asString == "any" {
			return "auto", nil
		}
		return asString, nil
	}

	var obj struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("tool_choice: %w", err)
	}
	if obj.Type == "tool" {
		return map[string]interface{}{
			"type":     "function",
			"function": map[string]string{"name": obj.Name},
		}, nil
	}
	return "auto", nil
}

package translate

import (
	"encoding/json"
	"testing"
)

func TestRequestToOpenAI_SimpleText(t *testing.T) {
	req := &AnthropicRequest{
		Model:     "claude-3-5-haiku-20241022",
		MaxTokens: 100,
		Messages: []AnthropicMessage{
			{Role: "user", Content: json.RawMessage(`"hello there"`)},
		},
	}

	out, err := RequestToOpenAI(req, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q, want gpt-4o-mini", out.Model)
	}
	if len(out.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(out.Messages))
	}
	if out.Messages[0].Role != "user" || *out.Messages[0].Content != "hello there" {
		t.Fatalf("unexpected message: %+v", out.Messages[0])
	}
}

func TestRequestToOpenAI_SystemAndToolRoundTrip(t *testing.T) {
	req := &AnthropicRequest{
		Model:     "claude-3-5-haiku-20241022",
		MaxTokens: 100,
		System:    json.RawMessage(`"be terse"`),
		Messages: []AnthropicMessage{
			{Role: "user", Content: json.RawMessage(`"what's the weather"`)},
			{Role: "assistant", Content: json.RawMessage(`[{"type":"tool_use","id":"call_1","name":"get_weather","input":{"city":"nyc"}}]`)},
			{Role: "user", Content: json.RawMessage(`[{"type":"tool_result","tool_use_id":"call_1","content":"72F"}]`)},
		},
	}

	out, err := RequestToOpenAI(req, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Messages[0].Role != "system" || *out.Messages[0].Content != "be terse" {
		t.Fatalf("expected system message first, got %+v", out.Messages[0])
	}

	var foundToolCall, foundToolResult bool
	for _, m := range out.Messages {
		if m.Role == "assistant" && len(m.ToolCalls) == 1 {
			foundToolCall = true
			if m.ToolCalls[0].Function.Name != "get_weather" {
				t.Fatalf("unexpected tool call: %+v", m.ToolCalls[0])
			}
		}
		if m.Role == "tool" {
			foundToolResult = true
			if m.ToolCallID != "call_1" || m.Content == nil || *m.Content != "72F" {
				t.Fatalf("unexpected tool result message: %+v", m)
			}
		}
	}
	if !foundToolCall || !foundToolResult {
		t.Fatalf("missing expected flattened messages: %+v", out.Messages)
	}
}

func TestResponseFromOpenAI_TextAndFinishReason(t *testing.T) {
	content := "hi there"
	resp := &OpenAIResponse{
		ID:    "abc123",
		Model: "gpt-4o-mini",
		Choices: []openAIChoice{
			{Message: openAIMessage{Role: "assistant", Content: &content}, FinishReason: "stop"},
		},
		Usage: openAIUsage{PromptTokens: 5, CompletionTokens: 3},
	}

	out, err := ResponseFromOpenAI(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != "msg_abc123" {
		t.Fatalf("id = %q", out.ID)
	}
	if out.StopReason != "end_turn" {
		t.Fatalf("stop_reason = %q, want end_turn", out.StopReason)
	}
	if len(out.Content) != 1 || out.Content[0].Type != "text" || out.Content[0].Text != content {
		t.Fatalf("unexpected content: %+v", out.Content)
	}
	if out.Usage.InputTokens != 5 || out.Usage.OutputTokens != 3 {
		t.Fatalf("unexpected usage: %+v", out.Usage)
	}
}

func TestResponseFromOpenAI_ToolCalls(t *testing.T) {
	resp := &OpenAIResponse{
		ID:    "xyz",
		Model: "gpt-4o-mini",
		Choices: []openAIChoice{
			{
				Message: openAIMessage{
					Role: "assistant",
					ToolCalls: []openAIToolCall{
						{ID: "call_9", Type: "function", Function: openAIFunctionCall{Name: "lookup", Arguments: `{"q":"x"}`}},
					},
				},
				FinishReason: "tool_calls",
			},
		},
	}

	out, err := ResponseFromOpenAI(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.StopReason != "tool_use" {
		t.Fatalf("stop_reason = %q, want tool_use", out.StopReason)
	}
	if len(out.Content) != 1 || out.Content[0].Type != "tool_use" || out.Content[0].Name != "lookup" {
		t.Fatalf("unexpected content: %+v", out.Content)
	}
}

func TestStreamTranslator_TextThenStop(t *testing.T) {
	tr := NewStreamTranslator()

	chunk1 := &OpenAIStreamChunk{
		ID: "1", Model: "gpt-4o-mini",
		Choices: []openAIStreamChoice{{Delta: openAIStreamDelta{Role: "assistant"}}},
	}
	out := tr.Feed(chunk1)
	if len(out) == 0 {
		t.Fatal("expected message_start event")
	}

	chunk2 := &OpenAIStreamChunk{
		ID: "1", Model: "gpt-4o-mini",
		Choices: []openAIStreamChoice{{Delta: openAIStreamDelta{Content: "hel"}}},
	}
	out = tr.Feed(chunk2)
	if len(out) == 0 {
		t.Fatal("expected content_block_start+delta events")
	}

	finish := "stop"
	chunk3 := &OpenAIStreamChunk{
		ID: "1", Model: "gpt-4o-mini",
		Choices: []openAIStreamChoice{{FinishReason: &finish}},
	}
	tr.Feed(chunk3)

	final := tr.Finish(nil)
	if len(final) == 0 {
		t.Fatal("expected terminal events")
	}
	if !tr.SawFinishReason() {
		t.Fatal("expected SawFinishReason true after explicit stop")
	}
}

func TestStreamTranslator_SyntheticStopOnCleanEOF(t *testing.T) {
	tr := NewStreamTranslator()
	tr.Feed(&OpenAIStreamChunk{ID: "1", Model: "m", Choices: []openAIStreamChoice{{Delta: openAIStreamDelta{Content: "x"}}}})

	if tr.SawFinishReason() {
		t.Fatal("did not expect a finish reason yet")
	}
	final := tr.Finish(nil)
	if len(final) == 0 {
		t.Fatal("expected synthetic message_stop on clean EOF")
	}
}

func TestToolChoiceTranslation(t *testing.T) {
	out, err := translateToolChoice(json.RawMessage(`"auto"`))
	if err != nil || out != "auto" {
		t.Fatalf("got %v, %v", out, err)
	}

	out, err = translateToolChoice(json.RawMessage(`{"type":"tool","name":"get_weather"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := out.(map[string]interface{})
	if !ok || m["type"] != "function" {
		t.Fatalf("unexpected tool_choice translation: %+v", out)
	}
}

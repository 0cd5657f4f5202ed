package tokens

import (
	"encoding/json"
	"testing"

	"provider-balancer/balancer/pkg/translate"
)

func TestSimpleEstimator_EstimateText(t *testing.T) {
	estimator := NewSimpleEstimator()

	tests := []struct {
		name        string
		text        string
		model       string
		expectedMin int
		expectedMax int
	}{
		{name: "empty text", text: "", model: "claude-3-5-sonnet-20241022", expectedMin: 0, expectedMax: 0},
		{name: "short text claude", text: "Hello, world!", model: "claude-3-5-sonnet-20241022", expectedMin: 3, expectedMax: 5},
		{name: "short text gpt", text: "Hello, world!", model: "gpt-4o", expectedMin: 2, expectedMax: 4},
		{
			name:        "medium text",
			text:        "This is a longer message that should result in more tokens being estimated for the request.",
			model:       "claude-3-5-sonnet-20241022",
			expectedMin: 20,
			expectedMax: 30,
		},
		{name: "unknown model uses default ratio", text: "Hello, world!", model: "unknown-model", expectedMin: 3, expectedMax: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := estimator.EstimateText(tt.text, tt.model)
			if tokens < tt.expectedMin || tokens > tt.expectedMax {
				t.Errorf("expected tokens between %d and %d, got %d", tt.expectedMin, tt.expectedMax, tokens)
			}
		})
	}
}

func TestSimpleEstimator_EstimateRequest(t *testing.T) {
	estimator := NewSimpleEstimator()

	tests := []struct {
		name        string
		request     *translate.AnthropicRequest
		expectedMin int
		expectedMax int
	}{
		{
			name: "simple request",
			request: &translate.AnthropicRequest{
				Model:     "claude-3-5-sonnet-20241022",
				MaxTokens: 1024,
				Messages: []translate.AnthropicMessage{
					{Role: "user", Content: mustJSON(t, "Hello, how are you?")},
				},
			},
			expectedMin: 5,
			expectedMax: 20,
		},
		{
			name: "request with system prompt",
			request: &translate.AnthropicRequest{
				Model:     "claude-3-5-sonnet-20241022",
				MaxTokens: 1024,
				System:    mustJSON(t, "You are a helpful assistant."),
				Messages: []translate.AnthropicMessage{
					{Role: "user", Content: mustJSON(t, "Hello!")},
				},
			},
			expectedMin: 10,
			expectedMax: 30,
		},
		{
			name: "request with tools",
			request: &translate.AnthropicRequest{
				Model:     "claude-3-5-sonnet-20241022",
				MaxTokens: 1024,
				Messages: []translate.AnthropicMessage{
					{Role: "user", Content: mustJSON(t, "What's the weather?")},
				},
				Tools: []translate.AnthropicTool{
					{Name: "get_weather", Description: "Get the current weather for a location"},
				},
			},
			expectedMin: 20,
			expectedMax: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := estimator.EstimateRequest(tt.request)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total < tt.expectedMin || total > tt.expectedMax {
				t.Errorf("expected total tokens between %d and %d, got %d", tt.expectedMin, tt.expectedMax, total)
			}
		})
	}
}

func TestSimpleEstimator_EstimateRequest_ToolUseAndImageBlocks(t *testing.T) {
	estimator := NewSimpleEstimator()

	content, err := json.Marshal([]map[string]interface{}{
		{"type": "text", "text": "Here is a picture:"},
		{"type": "image", "source": map[string]string{"media_type": "image/png", "data": "AAAA"}},
	})
	if err != nil {
		t.Fatalf("failed to build content: %v", err)
	}

	req := &translate.AnthropicRequest{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 1024,
		Messages: []translate.AnthropicMessage{
			{Role: "user", Content: content},
		},
	}

	total, err := estimator.EstimateRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total < imageTokenEstimate {
		t.Errorf("expected image block to contribute at least %d tokens, got %d", imageTokenEstimate, total)
	}
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return b
}

package proxy

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"provider-balancer/balancer/pkg/translate"
)

func BenchmarkParseMessagesRequest(b *testing.B) {
	reqBody := translate.AnthropicRequest{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 1024,
		Messages: []translate.AnthropicMessage{
			{Role: "user", Content: json.RawMessage(`"Hello, world!"`)},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		_, err := ParseMessagesRequest(req)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteJSONResponse(b *testing.B) {
	response := map[string]interface{}{
		"id":    "msg_123",
		"type":  "message",
		"role":  "assistant",
		"model": "claude-3-5-sonnet-20241022",
		"content": []map[string]string{
			{"type": "text", "text": "Hello! How can I help you today?"},
		},
		"usage": map[string]int{
			"input_tokens":  10,
			"output_tokens": 15,
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		if err := WriteJSONResponse(w, http.StatusOK, response); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtractRequestMetadata(b *testing.B) {
	reqBody := translate.AnthropicRequest{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 1024,
		Messages: []translate.AnthropicMessage{
			{Role: "user", Content: json.RawMessage(`"Hello"`)},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		b.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader(body))
	req.Header.Set("X-Api-Key", "sk-ant-REDACTED")
	req.Header.Set("X-Request-ID", "req-456")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ExtractRequestMetadata(req, &reqBody, "req-456")
	}
}

func BenchmarkRedactAPIKey(b *testing.B) {
	apiKey := "sk-ant-REDACTED"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = RedactAPIKey(apiKey)
	}
}

func BenchmarkHandleError(b *testing.B) {
	err := &RequestError{Message: "Invalid request: missing field model"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = HandleError(err)
	}
}

package proxy

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"provider-balancer/balancer/pkg/translate"
)

func TestParseMessagesRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    interface{}
		wantErr bool
	}{
		{
			name: "valid request",
			body: translate.AnthropicRequest{
				Model:     "claude-3-5-sonnet-20241022",
				MaxTokens: 1024,
				Messages: []translate.AnthropicMessage{
					{Role: "user", Content: mustJSON(t, "Hello")},
				},
			},
			wantErr: false,
		},
		{
			name: "missing model",
			body: translate.AnthropicRequest{
				MaxTokens: 1024,
				Messages: []translate.AnthropicMessage{
					{Role: "user", Content: mustJSON(t, "Hello")},
				},
			},
			wantErr: true,
		},
		{
			name: "missing messages",
			body: translate.AnthropicRequest{
				Model:     "claude-3-5-sonnet-20241022",
				MaxTokens: 1024,
			},
			wantErr: true,
		},
		{
			name: "missing max_tokens",
			body: translate.AnthropicRequest{
				Model: "claude-3-5-sonnet-20241022",
				Messages: []translate.AnthropicMessage{
					{Role: "user", Content: mustJSON(t, "Hello")},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodyBytes, err := json.Marshal(tt.body)
			if err != nil {
				t.Fatalf("failed to marshal request body: %v", err)
			}

			r := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader(bodyBytes))
			req, err := ParseMessagesRequest(r)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Model == "" {
				t.Error("expected model to be populated")
			}
		})
	}
}

func TestParseMessagesRequest_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader("not json"))
	_, err := ParseMessagesRequest(r)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseMessagesRequest_BodyTooLarge(t *testing.T) {
	oversized := make([]byte, MaxRequestBodySize+1)
	for i := range oversized {
		oversized[i] = 'a'
	}
	r := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader(oversized))
	_, err := ParseMessagesRequest(r)
	if err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestExtractRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/messages", nil)
	r.Header.Set(RequestIDHeader, "req-123")

	if got := ExtractRequestID(r); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}

	r2 := httptest.NewRequest(http.MethodPost, "/v1/messages", nil)
	if got := ExtractRequestID(r2); got != "" {
		t.Errorf("expected empty string, got %q", got)
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

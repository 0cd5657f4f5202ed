package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"provider-balancer/balancer/pkg/translate"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (10MB).
	MaxRequestBodySize = 10 * 1024 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// ParseMessagesRequest parses an HTTP request body into an AnthropicRequest.
// It enforces a size limit and validates the required fields the Request
// Orchestrator assumes are already populated (model, messages, max_tokens).
func ParseMessagesRequest(r *http.Request) (*translate.AnthropicRequest, error) {
	limitedReader := io.LimitReader(r.Body, MaxRequestBodySize+1)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("failed to read request body: %v", err)}
	}

	if len(body) > MaxRequestBodySize {
		return nil, &RequestError{Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize)}
	}

	var req translate.AnthropicRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if err := validateMessagesRequest(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

func validateMessagesRequest(req *translate.AnthropicRequest) error {
	if req.Model == "" {
		return &RequestError{Message: "model: field is required"}
	}
	if len(req.Messages) == 0 {
		return &RequestError{Message: "messages: field is required and must be non-empty"}
	}
	if req.MaxTokens <= 0 {
		return &RequestError{Message: "max_tokens: field is required and must be positive"}
	}
	return nil
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
// If the header is not present, it returns an empty string; the caller
// should fall back to the ID the RequestIDMiddleware already generated.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestError represents a request parsing or validation error. It is
// always surfaced as a 400 invalid_request_error, never failover-eligible
// and never counted toward provider health.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

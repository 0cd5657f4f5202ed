package proxy

import (
	"net/http"
	"time"

	"provider-balancer/balancer/pkg/translate"
)

// RequestMetadata contains extracted metadata from an inbound /v1/messages
// request, used for structured logging.
type RequestMetadata struct {
	RequestID    string
	Model        string
	MessageCount int
	Stream       bool
	MaxTokens    int

	Method     string
	Path       string
	UserAgent  string
	RemoteAddr string
	Timestamp  time.Time
}

// ResponseMetadata contains extracted metadata from a completed request,
// used for structured logging and metrics.
type ResponseMetadata struct {
	RequestID       string
	StatusCode      int
	Latency         time.Duration
	ProviderUsed    string
	Duplicate       bool
	Error           error
	Timestamp       time.Time
}

// ExtractRequestMetadata builds a RequestMetadata from the inbound HTTP
// request and its already-parsed Anthropic body.
func ExtractRequestMetadata(r *http.Request, req *translate.AnthropicRequest, requestID string) *RequestMetadata {
	return &RequestMetadata{
		RequestID:    requestID,
		Model:        req.Model,
		MessageCount: len(req.Messages),
		Stream:       req.Stream,
		MaxTokens:    req.MaxTokens,
		Method:       r.Method,
		Path:         r.URL.Path,
		UserAgent:    r.UserAgent(),
		RemoteAddr:   r.RemoteAddr,
		Timestamp:    time.Now(),
	}
}

// ExtractResponseMetadata builds a ResponseMetadata describing a completed
// (successful or failed) request.
func ExtractResponseMetadata(requestID string, statusCode int, providerUsed string, duplicate bool, err error, latency time.Duration) *ResponseMetadata {
	return &ResponseMetadata{
		RequestID:    requestID,
		StatusCode:   statusCode,
		Latency:      latency,
		ProviderUsed: providerUsed,
		Duplicate:    duplicate,
		Error:        err,
		Timestamp:    time.Now(),
	}
}

// RedactAPIKey redacts an inbound API key for safe logging, showing only
// the first 7 and last 4 characters.
//
// Example: sk-ant-1234567890abcdef -> sk-ant-...cdef
func RedactAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) < 12 {
		return "***"
	}
	return apiKey[:7] + "..." + apiKey[len(apiKey)-4:]
}

// IsSuccess returns true if the response was successful (2xx status code).
func (m *ResponseMetadata) IsSuccess() bool {
	return m.StatusCode >= 200 && m.StatusCode < 300
}

// IsError returns true if an error occurred.
func (m *ResponseMetadata) IsError() bool {
	return m.Error != nil || m.StatusCode >= 400
}

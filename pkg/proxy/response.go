package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"provider-balancer/balancer/pkg/proxy/types"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes an Anthropic-shaped error envelope with the
// given HTTP status code. The status is passed explicitly rather than
// derived from errResp.Error.Type, since api_error spans several upstream
// statuses (500, 502, 504) that a type tag alone can't distinguish.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, statusCode, errResp)
}

// SetSSEHeaders sets the appropriate headers for Server-Sent Events streaming.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteSSERaw relays one already-framed SSE chunk verbatim. The Broadcaster
// and the translating chunk sources (pkg/orchestrator) already emit complete
// "event: ...\ndata: ...\n\n" frames, so the HTTP layer never reparses or
// reformats stream bytes — it only relays them and flushes promptly.
func WriteSSERaw(w http.ResponseWriter, flusher http.Flusher, chunk []byte) error {
	if _, err := w.Write(chunk); err != nil {
		return fmt.Errorf("failed to write SSE chunk: %w", err)
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

// WriteSSEErrorEvent writes an Anthropic-shaped `event: error` SSE frame,
// used when a stream fails before any upstream bytes were forwarded.
func WriteSSEErrorEvent(w http.ResponseWriter, flusher http.Flusher, errResp *types.ErrorResponse) error {
	body, err := json.Marshal(errResp)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE error: %w", err)
	}
	frame := append([]byte("event: error\ndata: "), body...)
	frame = append(frame, '\n', '\n')
	return WriteSSERaw(w, flusher, frame)
}

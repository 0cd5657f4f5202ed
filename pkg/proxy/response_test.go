package proxy

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"provider-balancer/balancer/pkg/proxy/types"
)

func TestWriteJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	payload := map[string]string{"hello": "world"}

	if err := WriteJSONResponse(w, http.StatusOK, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected application/json, got %q", got)
	}

	var decoded map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if decoded["hello"] != "world" {
		t.Errorf("unexpected body: %v", decoded)
	}
}

func TestWriteErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	errResp := types.NewInvalidRequestError("model: field is required")

	if err := WriteErrorResponse(w, http.StatusBadRequest, errResp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var decoded types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if decoded.Type != "error" {
		t.Errorf("expected type 'error', got %q", decoded.Type)
	}
	if decoded.Error.Type != types.ErrorTypeInvalidRequest {
		t.Errorf("expected %q, got %q", types.ErrorTypeInvalidRequest, decoded.Error.Type)
	}
}

func TestSetSSEHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SetSSEHeaders(w)

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("expected no-cache, got %q", got)
	}
	if got := w.Header().Get("X-Accel-Buffering"); got != "no" {
		t.Errorf("expected 'no', got %q", got)
	}
}

func TestWriteSSERaw(t *testing.T) {
	w := httptest.NewRecorder()
	chunk := []byte("event: message_start\ndata: {\"type\":\"message_start\"}\n\n")

	if err := WriteSSERaw(w, w, chunk); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Body.String() != string(chunk) {
		t.Errorf("expected chunk to be relayed verbatim, got %q", w.Body.String())
	}
}

func TestWriteSSEErrorEvent(t *testing.T) {
	w := httptest.NewRecorder()
	errResp := types.NewOverloadedError("no healthy provider available")

	if err := WriteSSEErrorEvent(w, w, errResp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scanner := bufio.NewScanner(strings.NewReader(w.Body.String()))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 || lines[0] != "event: error" {
		t.Errorf("expected first line 'event: error', got %v", lines)
	}
	if len(lines) < 2 || !strings.HasPrefix(lines[1], "data: ") {
		t.Fatalf("expected a data line, got %v", lines)
	}

	var decoded types.ErrorResponse
	if err := json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &decoded); err != nil {
		t.Fatalf("failed to decode SSE error payload: %v", err)
	}
	if decoded.Error.Type != types.ErrorTypeOverloaded {
		t.Errorf("expected overloaded_error, got %q", decoded.Error.Type)
	}
}

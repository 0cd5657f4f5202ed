package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"provider-balancer/balancer/pkg/orchestrator"
	"provider-balancer/balancer/pkg/processing/tokens"
	"provider-balancer/balancer/pkg/proxy"
	"provider-balancer/balancer/pkg/proxy/middleware"
	"provider-balancer/balancer/pkg/translate"
)

// ProviderUsedHeader reports which provider served (or was subscribed to
// for) a request, so operators can see failover and dedup decisions without
// enabling debug logging.
const ProviderUsedHeader = "X-Provider-Used"

// MessagesHandler implements POST /v1/messages: the Anthropic Messages API
// surface, for both streaming and non-streaming requests.
type MessagesHandler struct {
	orchestrator *orchestrator.Orchestrator
}

// NewMessagesHandler creates a new /v1/messages handler.
func NewMessagesHandler(o *orchestrator.Orchestrator) *MessagesHandler {
	return &MessagesHandler{orchestrator: o}
}

func (h *MessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	if requestID == "" {
		requestID = proxy.ExtractRequestID(r)
	}

	req, err := proxy.ParseMessagesRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	meta := proxy.ExtractRequestMetadata(r, req, requestID)
	start := time.Now()

	if req.Stream {
		h.handleStreaming(w, r, req, requestID, meta, start)
		return
	}
	h.handleNonStreaming(w, r, req, requestID, meta, start)
}

func (h *MessagesHandler) handleNonStreaming(w http.ResponseWriter, r *http.Request, req *translate.AnthropicRequest, requestID string, meta *proxy.RequestMetadata, start time.Time) {
	result, err := h.orchestrator.HandleNonStreaming(r.Context(), req, r.Header, requestID)
	if err != nil {
		respMeta := proxy.ExtractResponseMetadata(requestID, 0, "", false, err, time.Since(start))
		slog.Warn("messages request failed", "request_id", requestID, "model", meta.Model, "error", respMeta.Error)
		h.writeError(w, err)
		return
	}

	w.Header().Set(ProviderUsedHeader, result.ProviderUsed)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.StatusCode)
	if _, err := w.Write(result.Body); err != nil {
		slog.Error("failed to write messages response", "request_id", requestID, "error", err)
	}

	slog.Info("messages request completed", "request_id", requestID, "model", meta.Model,
		"provider", result.ProviderUsed, "duplicate", result.Duplicate, "latency", time.Since(start))
}

func (h *MessagesHandler) handleStreaming(w http.ResponseWriter, r *http.Request, req *translate.AnthropicRequest, requestID string, meta *proxy.RequestMetadata, start time.Time) {
	result, err := h.orchestrator.HandleStreaming(r.Context(), req, r.Header, requestID)
	if err != nil {
		slog.Warn("streaming messages request failed", "request_id", requestID, "model", meta.Model, "error", err)
		h.writeError(w, err)
		return
	}
	defer result.Sub.Unsubscribe()

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, errNotFlushable)
		return
	}

	proxy.SetSSEHeaders(w)
	w.Header().Set(ProviderUsedHeader, result.ProviderUsed)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case chunk, more := <-result.Sub.Chunks:
			if !more {
				slog.Info("streaming messages request completed", "request_id", requestID, "model", meta.Model,
					"provider", result.ProviderUsed, "duplicate", result.Duplicate, "latency", time.Since(start))
				return
			}
			if err := proxy.WriteSSERaw(w, flusher, chunk); err != nil {
				slog.Warn("client disconnected mid-stream", "request_id", requestID, "error", err)
				return
			}
		case <-ctx.Done():
			slog.Info("client canceled streaming request", "request_id", requestID)
			return
		}
	}
}

func (h *MessagesHandler) writeError(w http.ResponseWriter, err error) {
	errResp, status := proxy.HandleError(err)
	if writeErr := proxy.WriteErrorResponse(w, status, errResp); writeErr != nil {
		slog.Error("failed to write error response", "error", writeErr)
	}
}

// CountTokensHandler implements POST /v1/messages/count_tokens: a local,
// never-calls-upstream approximation of the input token count for a
// /v1/messages request body.
type CountTokensHandler struct {
	estimator tokens.Estimator
}

// NewCountTokensHandler creates a new count_tokens handler.
func NewCountTokensHandler(estimator tokens.Estimator) *CountTokensHandler {
	return &CountTokensHandler{estimator: estimator}
}

func (h *CountTokensHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := proxy.ParseMessagesRequest(r)
	if err != nil {
		errResp, status := proxy.HandleError(err)
		proxy.WriteErrorResponse(w, status, errResp)
		return
	}

	count, err := h.estimator.EstimateRequest(req)
	if err != nil {
		errResp, status := proxy.HandleError(&proxy.RequestError{Message: err.Error()})
		proxy.WriteErrorResponse(w, status, errResp)
		return
	}

	proxy.WriteJSONResponse(w, http.StatusOK, map[string]int{"input_tokens": count})
}

var errNotFlushable = errors.New("streaming not supported by this response writer")

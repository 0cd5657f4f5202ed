// Package middleware provides HTTP middleware for cross-cutting concerns:
// request ID propagation, structured logging, CORS, and panic recovery.
//
// # Middleware Chain
//
//	handler = RequestID(Recovery(Logging(CORS(handler))))
//
// Order (innermost to outermost):
//  1. CORS: add Cross-Origin Resource Sharing headers
//  2. Logging: log request/response details
//  3. Recovery: recover from panics
//  4. RequestID: generate and propagate a request ID
//
// There is no blanket per-request timeout middleware: the Request
// Orchestrator already bounds each upstream attempt with its own
// connect/read/pool timeouts, and a fixed deadline here would cut off
// long-lived SSE streams the orchestrator is still legitimately serving.
//
// # Request ID
//
// RequestIDMiddleware generates a unique ID for each request (or reuses the
// client-supplied X-Request-ID):
//
//	X-Request-ID: a1b2c3d4e5f6...
//
// The ID is added to the request context, echoed in the response header,
// and included in every log line for the request.
//
// # Logging
//
// LoggingMiddleware uses structured logging (log/slog):
//
//	{
//	  "time": "2026-07-31T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/v1/messages",
//	  "status": 200,
//	  "latency_ms": 1250,
//	  "request_id": "a1b2c3d4e5f6..."
//	}
//
// # CORS
//
// CORSMiddleware adds Cross-Origin Resource Sharing headers, configured via:
//
//	proxy:
//	  cors:
//	    enabled: true
//	    allowed_origins: ["https://example.com"]
//	    allowed_methods: ["GET", "POST", "OPTIONS"]
//	    allowed_headers: ["Content-Type", "X-Api-Key"]
//	    max_age: 3600
//
// # Recovery
//
// RecoveryMiddleware catches panics and converts them to a 500 response in
// the Anthropic error envelope, logging the stack trace but never exposing
// it to the client.
//
// # Context Values
//
//	requestID := middleware.GetRequestID(r.Context())
package middleware

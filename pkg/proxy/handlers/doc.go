// Package handlers provides the HTTP handlers mounted on the balancer's
// public and admin surfaces.
//
// # Handlers
//
// MessagesHandler implements POST /v1/messages, both streaming (SSE) and
// non-streaming. It is a thin adapter: request parsing and error-envelope
// translation happen here, but dedupe, provider selection, failover, and
// format translation all happen inside pkg/orchestrator. The handler never
// reformats a response body it receives back from the orchestrator.
//
// CountTokensHandler implements POST /v1/messages/count_tokens using a
// local character-based estimator (pkg/processing/tokens) that never calls
// an upstream provider.
//
// Liveness and readiness probes are backed by pkg/telemetry/health's
// Checker, registered with a "providers" component check in pkg/server.
// ProvidersHandler and ReloadHandler back the admin registry snapshot
// (GET /providers) and config reload (POST /providers/reload) endpoints,
// reading from and swapping into pkg/providers' Registry and Tracker.
//
// # Error envelope
//
// All handlers report failures in the Anthropic Messages API shape:
//
//	{"type":"error","error":{"type":"invalid_request_error","message":"..."}}
//
// # Streaming
//
// The streaming handler subscribes to the orchestrator's broadcaster and
// relays each already-framed SSE chunk verbatim, flushing after every
// write. It never buffers a full response before the client sees bytes.
package handlers

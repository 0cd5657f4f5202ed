// Package proxy provides the HTTP-layer helpers for the balancer's public
// surface: request parsing, response writing, error-envelope translation,
// and metadata extraction for logging.
//
// This package is deliberately thin. The Request Orchestrator
// (pkg/orchestrator) already owns dedupe, provider selection, failover,
// and format translation; pkg/proxy never reformats a response body it
// gets back from the orchestrator, and never retries a request itself.
//
// # Request parsing
//
// ParseMessagesRequest reads and validates an inbound /v1/messages body
// into a translate.AnthropicRequest, enforcing MaxRequestBodySize and the
// three fields the orchestrator assumes are present: model, messages, and
// max_tokens.
//
// # Error envelope
//
// HandleError converts any error the orchestrator can return into the
// Anthropic Messages API error shape plus the HTTP status to send it with:
//
//	{"type":"error","error":{"type":"invalid_request_error","message":"..."}}
//
// Per the propagation rules for provider-originated failures, messages are
// kept generic: no upstream response body, header, or credential is ever
// echoed back to the client.
//
// # Streaming
//
// SetSSEHeaders and WriteSSERaw support relaying the orchestrator's
// already-framed SSE chunks verbatim. WriteSSEErrorEvent covers the one
// case where a streaming request fails before any upstream bytes arrive.
//
// # Metadata
//
// ExtractRequestMetadata and ExtractResponseMetadata build structured
// logging records from a request/response pair; RedactAPIKey keeps
// provider credentials out of logs.
package proxy

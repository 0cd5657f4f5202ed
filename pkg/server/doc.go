// Package server wires the balancer's collaborators (Provider Registry,
// Health Tracker, Route Selector, Auth Resolver, Deduplication Index,
// Request Orchestrator) into a runnable HTTP server and manages its
// lifecycle: start, graceful shutdown, and OS signal handling.
//
// # Basic Usage
//
//	cfg, err := config.LoadConfig("balancer.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := server.New(cfg, "balancer.yaml", server.VersionInfo{Version: "1.0.0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server shuts down automatically on SIGTERM/SIGINT, or programmatically
// via Shutdown. Shutdown stops accepting new connections, waits up to
// proxy.shutdown_timeout for in-flight requests to finish, then forces
// closure.
//
// # Routes
//
//   - POST /v1/messages - the Anthropic Messages API surface (streaming and non-streaming)
//   - POST /v1/messages/count_tokens - local token-count approximation
//   - GET / and GET /health - liveness probe (always 200)
//   - GET /ready - readiness probe (503 if no provider is healthy)
//   - GET /version - build version info
//   - GET /providers (and the /health/providers alias) - registry snapshot
//   - POST /providers/reload - reload provider/route config from disk
//   - GET /metrics - Prometheus exposition
//
// # Middleware Chain
//
// Requests pass through, innermost to outermost: CORS, Logging, Recovery,
// RequestID. There is deliberately no blanket per-request timeout middleware
// in the default chain — the Request Orchestrator already bounds each
// upstream attempt with the configured connect/read/pool timeouts, and a
// fixed write deadline would cut off long-lived SSE streams.
//
// # TLS
//
//	security:
//	  tls:
//	    enabled: true
//	    cert_file: "/path/to/cert.pem"
//	    key_file: "/path/to/key.pem"
//	    min_version: "1.3"
//
// min_version is honored as configured ("1.2" or "1.3"); it is not
// hardcoded.
package server

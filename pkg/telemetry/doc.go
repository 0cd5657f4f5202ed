// Package telemetry groups the balancer's observability subpackages.
//
// # Components
//
//   - logging: Structured logging (log/slog) with PII redaction
//   - metrics: Prometheus metrics collection
//   - health: Liveness, readiness and version endpoints
//
// This package itself holds no code: there is no top-level constructor and
// no distributed-tracing component. Each subpackage is constructed on its
// own.
//
// # PII Protection
//
// When PII redaction is enabled, the logging package redacts the
// arguments of logging.Logger calls, for example:
//
//   - API keys: sk-abc123 → sk-***
//   - Emails: user@example.com → u***@example.com
//   - SSN: 123-45-6789 → ***-**-****
//   - IP addresses: 192.168.1.1 → 192.*.*.*
//
// Custom redaction patterns can be configured.
package telemetry

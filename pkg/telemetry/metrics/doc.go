// Package metrics provides Prometheus metrics collection for the balancer.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring request
// throughput, provider health, and deduplication/broadcaster effectiveness,
// with minimal per-request overhead.
//
// # Metrics Categories
//
//   - Request Metrics: request count, duration, and token counts by
//     provider/model/outcome
//   - Provider Metrics: provider health gauge, latency, and error rates
//   - Dedup/Broadcaster Metrics: admission counts by role, in-flight entry
//     count, live subscriber count
//
// # Usage
//
//	collector := metrics.NewCollector(config, registry)
//
//	collector.RecordRequest("anthropic", "claude-3-opus", "success", time.Second, 1500)
//	collector.RecordProviderLatency("anthropic", "claude-3-opus", 0.95)
//	collector.UpdateProviderHealth("anthropic", true)
//	collector.RecordDedupAdmission("primary")
//
// # Performance
//
//   - Lock-free counters where possible
//   - Pre-allocated metric instances
//   - A cardinality limit fixed at 10K unique request label sets per
//     collector; beyond it, RecordRequest reports the model as "other"
//
// # Custom Histogram Buckets
//
// The request-duration and provider-latency histograms use buckets tuned
// for LLM request latencies:
//
//	Request Duration: 0.1s, 0.25s, 0.5s, 1s, 2s, 5s, 10s, 30s
//
// TokenCountBuckets is given a default (100, 500, 1K, 5K, 10K, 50K, 100K)
// but no histogram uses it: tokens are recorded in a counter.
//
// # Prometheus Endpoint
//
// All metrics are exposed on GET /metrics in standard Prometheus format.
// With the default namespace "balancer" and subsystem "proxy":
//
//	# HELP balancer_proxy_requests_total Total number of LLM requests processed
//	# TYPE balancer_proxy_requests_total counter
//	balancer_proxy_requests_total{model="claude-3-opus",provider="anthropic",status="success"} 1234
package metrics

package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled          = true
	DefaultCORSMaxAge           = 3600 // 1 hour
	DefaultCORSAllowCredentials = false

	// Settings defaults (§6)
	DefaultSelectionStrategy      = "priority"
	DefaultFailureCooldown        = 30 * time.Second
	DefaultUnhealthyThreshold     = 3
	DefaultUnhealthyResetOnSucc   = true
	DefaultUnhealthyResetTimeout  = 5 * time.Minute
	DefaultStickyProviderDuration = 0
	DefaultBroadcasterQueueBound  = 256

	DefaultStreamingConnectTimeout    = 10 * time.Second
	DefaultStreamingReadTimeout       = 30 * time.Second
	DefaultStreamingPoolTimeout       = 5 * time.Second
	DefaultNonStreamingConnectTimeout = 10 * time.Second
	DefaultNonStreamingReadTimeout    = 120 * time.Second
	DefaultNonStreamingPoolTimeout    = 5 * time.Second
	DefaultCachingReadTimeout         = 60 * time.Second

	DefaultSSEErrorCleanupDelay    = 5 * time.Second
	DefaultOAuthRefreshCheckPeriod = 30 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsNamespace     = "balancer"
	DefaultMetricsPath          = "/metrics"
	DefaultMinHealthyProviders  = 1

	// Security defaults
	DefaultTLSEnabled    = false
	DefaultTLSMinVersion = "1.3"
)

// DefaultFailoverErrorTypes names the error kinds eligible for failover out
// of the box (§7: ConnectionError/ConnectTimeout/SSLError/PoolTimeout/
// ReadTimeout/5xx-family/RateLimit).
func DefaultFailoverErrorTypes() []string {
	return []string{
		"connection_error", "ssl_error", "connect_timeout", "read_timeout",
		"pool_timeout", "internal_server_error", "bad_gateway",
		"service_unavailable", "gateway_timeout", "rate_limit",
	}
}

// DefaultFailoverHTTPCodes names the HTTP codes eligible for failover.
func DefaultFailoverHTTPCodes() []int {
	return []int{408, 429, 500, 502, 503, 504}
}

// DefaultRequestDurationBuckets are the Prometheus histogram buckets (seconds)
// for request duration.
func DefaultRequestDurationBuckets() []float64 {
	return []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}
}

// ApplyDefaults applies default values to a Config struct. It is idempotent
// and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	applyProxyDefaults(cfg)
	applyCORSDefaults(cfg)
	applyProviderDefaults(cfg)
	applySettingsDefaults(cfg)
	applyTelemetryDefaults(cfg)
	applySecurityDefaults(cfg)
}

func applyProxyDefaults(cfg *Config) {
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	// WriteTimeout intentionally defaults to 0 (unbounded) — a fixed write
	// deadline would cut off long SSE streams.
}

func applyCORSDefaults(cfg *Config) {
	cors := &cfg.Proxy.CORS

	if !cors.Enabled {
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			len(cors.ExposedHeaders) > 0 ||
			cors.MaxAge > 0
		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Api-Key", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID", "X-Provider-Used"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

func applyProviderDefaults(cfg *Config) {
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.StreamingMode == "" {
			p.StreamingMode = "auto"
		}
	}
}

func applySettingsDefaults(cfg *Config) {
	s := &cfg.Settings

	if s.SelectionStrategy == "" {
		s.SelectionStrategy = DefaultSelectionStrategy
	}
	if s.FailureCooldown == 0 {
		s.FailureCooldown = DefaultFailureCooldown
	}
	if s.UnhealthyThreshold == 0 {
		s.UnhealthyThreshold = DefaultUnhealthyThreshold
	}
	if s.UnhealthyResetTimeout == 0 {
		s.UnhealthyResetTimeout = DefaultUnhealthyResetTimeout
	}
	if len(s.FailoverErrorTypes) == 0 {
		s.FailoverErrorTypes = DefaultFailoverErrorTypes()
	}
	if len(s.FailoverHTTPCodes) == 0 {
		s.FailoverHTTPCodes = DefaultFailoverHTTPCodes()
	}
	if s.BroadcasterQueueBound == 0 {
		s.BroadcasterQueueBound = DefaultBroadcasterQueueBound
	}

	t := &s.Timeouts
	if t.Streaming.Connect == 0 {
		t.Streaming.Connect = DefaultStreamingConnectTimeout
	}
	if t.Streaming.Read == 0 {
		t.Streaming.Read = DefaultStreamingReadTimeout
	}
	if t.Streaming.Pool == 0 {
		t.Streaming.Pool = DefaultStreamingPoolTimeout
	}
	if t.NonStreaming.Connect == 0 {
		t.NonStreaming.Connect = DefaultNonStreamingConnectTimeout
	}
	if t.NonStreaming.Read == 0 {
		t.NonStreaming.Read = DefaultNonStreamingReadTimeout
	}
	if t.NonStreaming.Pool == 0 {
		t.NonStreaming.Pool = DefaultNonStreamingPoolTimeout
	}
	if t.Caching.Read == 0 {
		t.Caching.Read = DefaultCachingReadTimeout
	}

	if s.Deduplication.SSEErrorCleanupDelay == 0 {
		s.Deduplication.SSEErrorCleanupDelay = DefaultSSEErrorCleanupDelay
	}
	if s.OAuth.RefreshCheckInterval == 0 {
		s.OAuth.RefreshCheckInterval = DefaultOAuthRefreshCheckPeriod
	}
}

func applyTelemetryDefaults(cfg *Config) {
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = DefaultRequestDurationBuckets()
	}
	if cfg.Telemetry.Health.MinHealthyProviders == 0 {
		cfg.Telemetry.Health.MinHealthyProviders = DefaultMinHealthyProviders
	}
}

func applySecurityDefaults(cfg *Config) {
	if cfg.Security.TLS.MinVersion == "" {
		cfg.Security.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Security.TLS.ReloadInterval == 0 {
		cfg.Security.TLS.ReloadInterval = 5 * time.Minute
	}
	if cfg.Security.TLS.MTLS.Enabled && cfg.Security.TLS.MTLS.ClientAuthType == "" {
		cfg.Security.TLS.MTLS.ClientAuthType = "require"
	}
	if cfg.Security.TLS.MTLS.Enabled && cfg.Security.TLS.MTLS.IdentitySource == "" {
		cfg.Security.TLS.MTLS.IdentitySource = "subject.CN"
	}
}

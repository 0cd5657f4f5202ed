package config

import "time"

// Config is the root configuration structure for the balancer.
// It contains the proxy server, provider registry, routing/health settings,
// and telemetry/security sections.
type Config struct {
	// Proxy contains HTTP proxy server configuration including listen address,
	// timeouts, and connection limits.
	Proxy ProxyConfig `yaml:"proxy"`

	// Providers lists every configured upstream. Order is preserved for
	// diagnostics, but selection order is governed by ModelRoutes.
	Providers []ProviderConfig `yaml:"providers"`

	// ModelRoutes maps a model pattern (exact name or glob, §3) to the
	// ordered list of candidate routes for it.
	ModelRoutes map[string][]RouteConfig `yaml:"model_routes"`

	// Settings holds the tunables named in spec §6's settings table.
	Settings SettingsConfig `yaml:"settings"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and health check endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains security-related configuration including TLS settings.
	Security SecurityConfig `yaml:"security"`
}

// ProxyConfig contains configuration for the HTTP proxy server.
type ProxyConfig struct {
	// ListenAddress is the address and port for the proxy to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Zero is replaced by the default; a negative value
	// means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Kept generous for SSE streaming responses.
	// Default: 0 (no timeout — streaming responses are not bounded by this)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. Zero is replaced by the default.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values, including the
	// request line. It does not limit the size of the request body.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins (not recommended for production).
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Api-Key", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID", "X-Provider-Used"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials (cookies, auth headers)
	// are allowed in CORS requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// ProviderConfig is the on-disk shape of one providers[] entry (§6). It is
// translated into a providers.Provider by BuildProviders in pkg/config/build.go.
type ProviderConfig struct {
	// Name uniquely identifies this provider across model_routes and the
	// sticky/health state.
	Name string `yaml:"name"`

	// Kind is "anthropic" or "openai_compatible" (§3).
	Kind string `yaml:"kind"`

	// BaseURL is the provider's API base, without the trailing endpoint
	// path (that suffix is added per Kind: "/v1/messages" for anthropic,
	// "/chat/completions" for openai_compatible).
	BaseURL string `yaml:"base_url"`

	// Auth describes how outbound credentials are attached (§4.5).
	Auth AuthConfig `yaml:"auth"`

	// ProxyURL, if set, routes this provider's outbound traffic through an
	// HTTP/HTTPS forward proxy.
	ProxyURL string `yaml:"proxy_url,omitempty"`

	// StreamingMode is "auto", "pass_through", or "collected" (§3). Empty
	// means "auto".
	StreamingMode string `yaml:"streaming_mode,omitempty"`

	// Enabled controls whether this provider participates in selection.
	// ApplyDefaults does not set it: an omitted field is false and the
	// provider is left out of the registry.
	Enabled bool `yaml:"enabled"`
}

// AuthConfig is the on-disk shape of a provider's auth block.
type AuthConfig struct {
	// Scheme is one of "api_key", "bearer_token", "oauth", "passthrough".
	Scheme string `yaml:"scheme"`

	// Secret is the static key/token value for api_key/bearer_token
	// schemes. Supports environment variable expansion (e.g. "${OPENAI_API_KEY}").
	// Unused for oauth (see the oauth settings block) and passthrough.
	Secret string `yaml:"secret,omitempty"`
}

// RouteConfig is one candidate entry under a model_routes pattern.
type RouteConfig struct {
	// Provider is the provider name this route selects.
	Provider string `yaml:"provider"`

	// UpstreamModel is the model name to send upstream, or the
	// "passthrough" sentinel to forward the client-requested name verbatim.
	// Default: "passthrough"
	UpstreamModel string `yaml:"upstream_model,omitempty"`

	// Priority orders routes within a pattern for the priority strategy
	// (ascending — 0 is tried first).
	Priority int `yaml:"priority"`

	// Enabled controls whether this route participates in selection.
	// ApplyDefaults does not set it: an omitted field is false and the
	// route is ignored.
	Enabled bool `yaml:"enabled"`
}

// SettingsConfig holds the tunables named in spec.md §6's settings table.
type SettingsConfig struct {
	// SelectionStrategy is "priority", "round_robin", or "random".
	// Default: "priority"
	SelectionStrategy string `yaml:"selection_strategy"`

	// FailureCooldown is how long an unhealthy provider stays excluded
	// from selection before being reconsidered.
	// Default: 30s
	FailureCooldown time.Duration `yaml:"failure_cooldown"`

	// UnhealthyThreshold is the number of consecutive errors that marks a
	// provider unhealthy.
	// Default: 3
	UnhealthyThreshold int `yaml:"unhealthy_threshold"`

	// UnhealthyResetOnSuccess controls whether a success zeros the
	// consecutive-error counter. ApplyDefaults does not set it: an omitted
	// field is false, and a success then leaves the counter unchanged.
	UnhealthyResetOnSuccess bool `yaml:"unhealthy_reset_on_success"`

	// UnhealthyResetTimeout is the idle duration after which the
	// consecutive-error counter auto-resets via the background sweep.
	// Default: 5m
	UnhealthyResetTimeout time.Duration `yaml:"unhealthy_reset_timeout"`

	// StickyProviderDuration is how long the last-successful provider is
	// preferred before the base strategy resumes (0 disables stickiness).
	// Default: 0
	StickyProviderDuration time.Duration `yaml:"sticky_provider_duration"`

	// FailoverErrorTypes lists error kinds eligible for failover, using the
	// Kind string values from pkg/providers (e.g. "connection_error",
	// "read_timeout", "bad_gateway").
	FailoverErrorTypes []string `yaml:"failover_error_types"`

	// FailoverHTTPCodes lists HTTP status codes eligible for failover.
	// Default: [408, 429, 500, 502, 503, 504]
	FailoverHTTPCodes []int `yaml:"failover_http_codes"`

	// Timeouts holds the per-phase connect/read/pool timeouts for each of
	// the three request classes named in §6.
	Timeouts TimeoutsConfig `yaml:"timeouts"`

	// Deduplication configures the Deduplication Index's grace window.
	Deduplication DeduplicationConfig `yaml:"deduplication"`

	// OAuth configures the OAuth TokenSource collaborator (§4.5). The
	// device-flow UX itself is out of scope; this only names where the
	// pre-fetched token lives.
	OAuth OAuthConfig `yaml:"oauth"`

	// BroadcasterQueueBound is the default per-subscriber channel capacity
	// beyond the already-buffered replay (§5 backpressure).
	// Default: 256
	BroadcasterQueueBound int `yaml:"broadcaster_queue_bound"`
}

// TimeoutsConfig groups the three per-phase Timeouts named in §6.
type TimeoutsConfig struct {
	Streaming    PhaseTimeouts `yaml:"streaming"`
	NonStreaming PhaseTimeouts `yaml:"non_streaming"`
	Caching      PhaseTimeouts `yaml:"caching"`
}

// PhaseTimeouts is one {connect,read,pool}_timeout triple.
type PhaseTimeouts struct {
	Connect time.Duration `yaml:"connect_timeout"`
	Read    time.Duration `yaml:"read_timeout"`
	Pool    time.Duration `yaml:"pool_timeout"`
}

// DeduplicationConfig configures the Deduplication Index (§4.6).
type DeduplicationConfig struct {
	// SSEErrorCleanupDelay is the grace window for shared-error retention
	// after a streaming Primary's upstream stream ends in an SSE error.
	// Default: 5s
	SSEErrorCleanupDelay time.Duration `yaml:"sse_error_cleanup_delay"`
}

// OAuthConfig names where a provider's pre-fetched OAuth bearer token can
// be found. The core never performs the device-flow UX itself (§1).
type OAuthConfig struct {
	// TokenFiles maps provider name to a file path containing the current
	// bearer token, refreshed by an out-of-process collaborator.
	TokenFiles map[string]string `yaml:"token_files,omitempty"`

	// RefreshCheckInterval is defaulted but not read: token files are
	// re-read when a file-system watch reports a change, not on a timer.
	// Default: 30s
	RefreshCheckInterval time.Duration `yaml:"refresh_check_interval"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health contains health check endpoint configuration.
	Health HealthEndpointConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets enables automatic redaction of API keys / bearer
	// tokens appearing in logged headers. ApplyDefaults does not set it:
	// an omitted field is false.
	RedactSecrets bool `yaml:"redact_secrets"`

	// BufferSize is the size of the async log write buffer.
	// Default: 10000
	BufferSize int `yaml:"buffer_size"`

	// RedactPatterns contains additional custom PII redaction patterns,
	// applied on top of the built-in API-key/bearer-token/email rules.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom PII redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// ApplyDefaults does not set it: an omitted field is false.
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint. It is
	// defaulted but not read: pkg/server always mounts the handler at
	// "/metrics".
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "balancer"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// HealthEndpointConfig contains health check endpoint configuration.
type HealthEndpointConfig struct {
	// Enabled is not read: pkg/server always mounts the liveness endpoint.
	// ApplyDefaults does not set it: an omitted field is false.
	Enabled bool `yaml:"enabled"`

	// MinHealthyProviders is only checked to be non-negative. The readiness
	// check registered by pkg/server passes as soon as one enabled provider
	// is healthy, whatever this value.
	// Default: 1
	MinHealthyProviders int `yaml:"min_healthy_providers"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// TLS contains TLS configuration for the proxy server.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS configuration.
type TLSConfig struct {
	// Enabled controls whether TLS is enabled for the proxy server.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the TLS certificate file.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the TLS private key file.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often to check for certificate changes on disk.
	// Default: "5m"
	ReloadInterval time.Duration `yaml:"cert_reload_interval"`

	// CipherSuites restricts the negotiated TLS 1.2 cipher suite. Empty uses
	// Go's secure defaults.
	CipherSuites []string `yaml:"cipher_suites"`

	// MTLS enables mutual TLS (client certificate authentication).
	MTLS MTLSConfig `yaml:"mtls"`
}

// MTLSConfig contains mutual TLS (client certificate) configuration.
type MTLSConfig struct {
	// Enabled requires clients to present a certificate verified against
	// ClientCAFile.
	Enabled bool `yaml:"enabled"`

	// ClientCAFile is the PEM-encoded CA bundle used to verify client
	// certificates.
	ClientCAFile string `yaml:"client_ca_file"`

	// ClientAuthType is one of "require", "request", "verify_if_given".
	// Default: "require"
	ClientAuthType string `yaml:"client_auth_type"`

	// IdentitySource selects which certificate field identifies the caller:
	// "subject.CN" (default), "subject.OU", "subject.O", or "SAN".
	IdentitySource string `yaml:"identity_source"`
}

package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{
		Providers: []ProviderConfig{
			{
				Name:    "openai",
				Kind:    "openai_compatible",
				BaseURL: "https://api.openai.com/v1",
				Auth:    AuthConfig{Scheme: "api_key", Secret: "test-key"},
				Enabled: true,
			},
		},
		ModelRoutes: map[string][]RouteConfig{
			"gpt-*": {{Provider: "openai", Priority: 0, Enabled: true}},
		},
	}
	ApplyDefaults(&cfg)

	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the proxy listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Proxy.ListenAddress = addr
	return b
}

// WithReadTimeout sets the proxy read timeout.
func (b *ConfigBuilder) WithReadTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Proxy.ReadTimeout = d
	return b
}

// WithProvider appends or replaces a provider configuration by name.
func (b *ConfigBuilder) WithProvider(provider ProviderConfig) *ConfigBuilder {
	for i, p := range b.cfg.Providers {
		if p.Name == provider.Name {
			b.cfg.Providers[i] = provider
			return b
		}
	}
	b.cfg.Providers = append(b.cfg.Providers, provider)
	return b
}

// WithModelRoute sets the candidate routes for a model pattern.
func (b *ConfigBuilder) WithModelRoute(pattern string, routes ...RouteConfig) *ConfigBuilder {
	if b.cfg.ModelRoutes == nil {
		b.cfg.ModelRoutes = make(map[string][]RouteConfig)
	}
	b.cfg.ModelRoutes[pattern] = routes
	return b
}

// WithSelectionStrategy sets the route selection strategy.
func (b *ConfigBuilder) WithSelectionStrategy(strategy string) *ConfigBuilder {
	b.cfg.Settings.SelectionStrategy = strategy
	return b
}

// WithUnhealthyThreshold sets the consecutive-error threshold before a
// provider is marked unhealthy.
func (b *ConfigBuilder) WithUnhealthyThreshold(n int) *ConfigBuilder {
	b.cfg.Settings.UnhealthyThreshold = n
	return b
}

// WithFailureCooldown sets the provider failure cooldown.
func (b *ConfigBuilder) WithFailureCooldown(d time.Duration) *ConfigBuilder {
	b.cfg.Settings.FailureCooldown = d
	return b
}

// WithStickyProviderDuration sets the sticky-session overlay duration.
func (b *ConfigBuilder) WithStickyProviderDuration(d time.Duration) *ConfigBuilder {
	b.cfg.Settings.StickyProviderDuration = d
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// WithTLS sets TLS configuration.
func (b *ConfigBuilder) WithTLS(certFile, keyFile string) *ConfigBuilder {
	b.cfg.Security.TLS.Enabled = true
	b.cfg.Security.TLS.CertFile = certFile
	b.cfg.Security.TLS.KeyFile = keyFile
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}

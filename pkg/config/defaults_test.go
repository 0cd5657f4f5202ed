package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Proxy.ListenAddress != DefaultListenAddress {
					t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Proxy.ListenAddress)
				}
				if cfg.Proxy.ReadTimeout != DefaultReadTimeout {
					t.Errorf("expected read timeout %v, got %v", DefaultReadTimeout, cfg.Proxy.ReadTimeout)
				}
				if cfg.Proxy.IdleTimeout != DefaultIdleTimeout {
					t.Errorf("expected idle timeout %v, got %v", DefaultIdleTimeout, cfg.Proxy.IdleTimeout)
				}
				if cfg.Proxy.MaxHeaderBytes != DefaultMaxHeaderBytes {
					t.Errorf("expected max header bytes %d, got %d", DefaultMaxHeaderBytes, cfg.Proxy.MaxHeaderBytes)
				}
				if cfg.Settings.SelectionStrategy != DefaultSelectionStrategy {
					t.Errorf("expected selection strategy %q, got %q", DefaultSelectionStrategy, cfg.Settings.SelectionStrategy)
				}
				if cfg.Settings.FailureCooldown != DefaultFailureCooldown {
					t.Errorf("expected failure cooldown %v, got %v", DefaultFailureCooldown, cfg.Settings.FailureCooldown)
				}
				if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
					t.Errorf("expected logging level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
				}
				if cfg.Telemetry.Logging.Format != DefaultLoggingFormat {
					t.Errorf("expected logging format %q, got %q", DefaultLoggingFormat, cfg.Telemetry.Logging.Format)
				}
				if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
					t.Errorf("expected metrics path %q, got %q", DefaultMetricsPath, cfg.Telemetry.Metrics.Path)
				}
				if cfg.Security.TLS.MinVersion != DefaultTLSMinVersion {
					t.Errorf("expected TLS min version %q, got %q", DefaultTLSMinVersion, cfg.Security.TLS.MinVersion)
				}
			},
		},
		{
			name: "existing values are preserved",
			input: Config{
				Proxy: ProxyConfig{
					ListenAddress:  "192.168.1.1:9090",
					ReadTimeout:    60 * time.Second,
					MaxHeaderBytes: 2097152,
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Proxy.ListenAddress != "192.168.1.1:9090" {
					t.Error("existing listen address was overwritten")
				}
				if cfg.Proxy.ReadTimeout != 60*time.Second {
					t.Error("existing read timeout was overwritten")
				}
				if cfg.Proxy.MaxHeaderBytes != 2097152 {
					t.Error("existing max header bytes was overwritten")
				}
				if cfg.Proxy.IdleTimeout != DefaultIdleTimeout {
					t.Error("idle timeout should get default when not set")
				}
			},
		},
		{
			name: "provider streaming mode defaults applied",
			input: Config{
				Providers: []ProviderConfig{
					{Name: "openai", Kind: "openai_compatible", BaseURL: "https://api.openai.com/v1"},
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Providers[0].StreamingMode != "auto" {
					t.Errorf("expected streaming mode %q, got %q", "auto", cfg.Providers[0].StreamingMode)
				}
				if cfg.Providers[0].BaseURL != "https://api.openai.com/v1" {
					t.Error("existing base URL was overwritten")
				}
			},
		},
		{
			name: "settings timeouts defaulted per phase",
			input: Config{
				Settings: SettingsConfig{
					Timeouts: TimeoutsConfig{
						Streaming: PhaseTimeouts{Connect: 2 * time.Second},
					},
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Settings.Timeouts.Streaming.Connect != 2*time.Second {
					t.Error("existing streaming connect timeout was overwritten")
				}
				if cfg.Settings.Timeouts.Streaming.Read != DefaultStreamingReadTimeout {
					t.Error("streaming read timeout should get default when not set")
				}
				if cfg.Settings.Timeouts.NonStreaming.Read != DefaultNonStreamingReadTimeout {
					t.Error("non-streaming read timeout should get default when not set")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := Config{}

	ApplyDefaults(&cfg)
	firstPass := cfg.Proxy.ListenAddress

	ApplyDefaults(&cfg)
	secondPass := cfg.Proxy.ListenAddress

	if firstPass != secondPass {
		t.Error("ApplyDefaults should be idempotent")
	}
}

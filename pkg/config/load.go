package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path. It
// expands ${VAR}-style environment references in provider secrets, applies
// default values, validates the configuration, and returns any errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	expandSecrets(&cfg)
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// a small set of environment variable overrides on top, following the
// BALANCER_SECTION_FIELD naming convention. Environment variables always
// take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// expandSecrets resolves "${VAR}" references in provider auth secrets and
// proxy URLs against the process environment. Unset variables expand to the
// empty string, which Validate then reports.
func expandSecrets(cfg *Config) {
	for i := range cfg.Providers {
		cfg.Providers[i].Auth.Secret = os.Expand(cfg.Providers[i].Auth.Secret, envLookup)
		cfg.Providers[i].ProxyURL = os.Expand(cfg.Providers[i].ProxyURL, envLookup)
	}
	for name, path := range cfg.Settings.OAuth.TokenFiles {
		cfg.Settings.OAuth.TokenFiles[name] = os.Expand(path, envLookup)
	}
}

func envLookup(key string) string {
	v, _ := os.LookupEnv(key)
	return v
}

// applyEnvOverrides applies a small set of deployment-time overrides.
// Per-provider secrets are expected to use the ${VAR} expansion in the YAML
// document itself (see expandSecrets), not ad hoc per-field env vars.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("BALANCER_LISTEN_ADDRESS"); val != "" {
		cfg.Proxy.ListenAddress = val
	}
	if val := os.Getenv("BALANCER_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("BALANCER_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("BALANCER_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("BALANCER_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Security.TLS.Enabled = b
		}
	}
	if val := os.Getenv("BALANCER_TLS_CERT_FILE"); val != "" {
		cfg.Security.TLS.CertFile = val
	}
	if val := os.Getenv("BALANCER_TLS_KEY_FILE"); val != "" {
		cfg.Security.TLS.KeyFile = val
	}
}

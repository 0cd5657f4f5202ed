package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "proxy.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateModelRoutes(cfg.ModelRoutes, cfg.Providers)...)
	errs = append(errs, validateSettings(&cfg.Settings)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateSecurity(&cfg.Security)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "proxy.listen_address", Message: "listen address is required"})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "proxy.read_timeout", Message: "must be non-negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "proxy.write_timeout", Message: "must be non-negative"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "proxy.idle_timeout", Message: "must be non-negative"})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{Field: "proxy.max_header_bytes", Message: "must be non-negative"})
	}

	return errs
}

var validProviderKinds = map[string]bool{"anthropic": true, "openai_compatible": true}
var validAuthSchemes = map[string]bool{"api_key": true, "bearer_token": true, "oauth": true, "passthrough": true}
var validStreamingModes = map[string]bool{"": true, "auto": true, "pass_through": true, "collected": true}

func validateProviders(providers []ProviderConfig) []FieldError {
	var errs []FieldError

	if len(providers) == 0 {
		errs = append(errs, FieldError{Field: "providers", Message: "at least one provider is required"})
		return errs
	}

	seen := make(map[string]bool, len(providers))
	for i, p := range providers {
		field := fmt.Sprintf("providers[%d]", i)
		if p.Name == "" {
			errs = append(errs, FieldError{Field: field + ".name", Message: "name is required"})
		} else if seen[p.Name] {
			errs = append(errs, FieldError{Field: field + ".name", Message: fmt.Sprintf("duplicate provider name %q", p.Name)})
		}
		seen[p.Name] = true

		if !validProviderKinds[p.Kind] {
			errs = append(errs, FieldError{Field: field + ".kind", Message: fmt.Sprintf("must be one of anthropic, openai_compatible, got %q", p.Kind)})
		}
		if p.BaseURL == "" {
			errs = append(errs, FieldError{Field: field + ".base_url", Message: "base_url is required"})
		}
		if !validAuthSchemes[p.Auth.Scheme] {
			errs = append(errs, FieldError{Field: field + ".auth.scheme", Message: fmt.Sprintf("must be one of api_key, bearer_token, oauth, passthrough, got %q", p.Auth.Scheme)})
		}
		if (p.Auth.Scheme == "api_key" || p.Auth.Scheme == "bearer_token") && p.Auth.Secret == "" {
			errs = append(errs, FieldError{Field: field + ".auth.secret", Message: "secret is required for this auth scheme"})
		}
		if !validStreamingModes[p.StreamingMode] {
			errs = append(errs, FieldError{Field: field + ".streaming_mode", Message: fmt.Sprintf("must be one of auto, pass_through, collected, got %q", p.StreamingMode)})
		}
	}

	return errs
}

func validateModelRoutes(routes map[string][]RouteConfig, providers []ProviderConfig) []FieldError {
	var errs []FieldError

	known := make(map[string]bool, len(providers))
	for _, p := range providers {
		known[p.Name] = true
	}

	if len(routes) == 0 {
		errs = append(errs, FieldError{Field: "model_routes", Message: "at least one model route pattern is required"})
		return errs
	}

	for pattern, candidates := range routes {
		if len(candidates) == 0 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("model_routes[%s]", pattern), Message: "pattern must have at least one route"})
			continue
		}
		for i, rt := range candidates {
			field := fmt.Sprintf("model_routes[%s][%d]", pattern, i)
			if rt.Provider == "" {
				errs = append(errs, FieldError{Field: field + ".provider", Message: "provider is required"})
			} else if !known[rt.Provider] {
				errs = append(errs, FieldError{Field: field + ".provider", Message: fmt.Sprintf("unknown provider %q", rt.Provider)})
			}
			if rt.Priority < 0 {
				errs = append(errs, FieldError{Field: field + ".priority", Message: "must be non-negative"})
			}
		}
	}

	return errs
}

var validSelectionStrategies = map[string]bool{"": true, "priority": true, "round_robin": true, "random": true}

func validateSettings(cfg *SettingsConfig) []FieldError {
	var errs []FieldError

	if !validSelectionStrategies[cfg.SelectionStrategy] {
		errs = append(errs, FieldError{Field: "settings.selection_strategy", Message: fmt.Sprintf("must be one of priority, round_robin, random, got %q", cfg.SelectionStrategy)})
	}
	if cfg.FailureCooldown < 0 {
		errs = append(errs, FieldError{Field: "settings.failure_cooldown", Message: "must be non-negative"})
	}
	if cfg.UnhealthyThreshold < 0 {
		errs = append(errs, FieldError{Field: "settings.unhealthy_threshold", Message: "must be non-negative"})
	}
	if cfg.StickyProviderDuration < 0 {
		errs = append(errs, FieldError{Field: "settings.sticky_provider_duration", Message: "must be non-negative"})
	}
	for _, code := range cfg.FailoverHTTPCodes {
		if code < 100 || code > 599 {
			errs = append(errs, FieldError{Field: "settings.failover_http_codes", Message: fmt.Sprintf("invalid HTTP status code %d", code)})
		}
	}

	t := cfg.Timeouts
	for _, group := range []struct {
		name string
		pt   PhaseTimeouts
	}{{"streaming", t.Streaming}, {"non_streaming", t.NonStreaming}, {"caching", t.Caching}} {
		if group.pt.Connect < 0 || group.pt.Read < 0 || group.pt.Pool < 0 {
			errs = append(errs, FieldError{Field: "settings.timeouts." + group.name, Message: "timeouts must be non-negative"})
		}
	}

	if cfg.Deduplication.SSEErrorCleanupDelay < 0 {
		errs = append(errs, FieldError{Field: "settings.deduplication.sse_error_cleanup_delay", Message: "must be non-negative"})
	}

	return errs
}

var validLogLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"": true, "json": true, "text": true}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !validLogLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{Field: "telemetry.logging.level", Message: fmt.Sprintf("must be one of debug, info, warn, error, got %q", cfg.Logging.Level)})
	}
	if !validLogFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{Field: "telemetry.logging.format", Message: fmt.Sprintf("must be one of json, text, got %q", cfg.Logging.Format)})
	}
	if cfg.Health.MinHealthyProviders < 0 {
		errs = append(errs, FieldError{Field: "telemetry.health.min_healthy_providers", Message: "must be non-negative"})
	}

	return errs
}

func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{Field: "security.tls.cert_file", Message: "required when tls is enabled"})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{Field: "security.tls.key_file", Message: "required when tls is enabled"})
		}
		if cfg.TLS.MinVersion != "1.2" && cfg.TLS.MinVersion != "1.3" {
			errs = append(errs, FieldError{Field: "security.tls.min_version", Message: fmt.Sprintf("must be one of 1.2, 1.3, got %q", cfg.TLS.MinVersion)})
		}
		if cfg.TLS.MTLS.Enabled {
			if cfg.TLS.MTLS.ClientCAFile == "" {
				errs = append(errs, FieldError{Field: "security.tls.mtls.client_ca_file", Message: "required when mtls is enabled"})
			}
			switch cfg.TLS.MTLS.ClientAuthType {
			case "", "require", "request", "verify_if_given":
			default:
				errs = append(errs, FieldError{Field: "security.tls.mtls.client_auth_type", Message: fmt.Sprintf("must be one of require, request, verify_if_given, got %q", cfg.TLS.MTLS.ClientAuthType)})
			}
		}
	}

	return errs
}

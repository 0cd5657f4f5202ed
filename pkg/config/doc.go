// Package config provides configuration management for the balancer.
//
// This package handles loading, validating, and managing configuration from
// YAML files with a small set of deployment-time environment variable
// overrides. It provides a type-safe configuration system with comprehensive
// validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Secrets
//
// Provider auth secrets and proxy URLs support ${VAR}-style expansion against
// the process environment, resolved before validation:
//
//	providers:
//	  - name: openai
//	    auth:
//	      scheme: api_key
//	      secret: "${OPENAI_API_KEY}"
//
// # Environment Variable Overrides
//
// A small, fixed set of deployment-level overrides apply on top of the file,
// intended for container/orchestrator injection rather than per-provider
// secrets (those use ${VAR} expansion instead):
//
//   - BALANCER_LISTEN_ADDRESS
//   - BALANCER_LOG_LEVEL / BALANCER_LOG_FORMAT
//   - BALANCER_METRICS_ENABLED
//   - BALANCER_TLS_ENABLED / BALANCER_TLS_CERT_FILE / BALANCER_TLS_KEY_FILE
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file, with ${VAR} secrets expanded
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Proxy.ListenAddress)
//
// Providers and model routes additionally support atomic hot-reload without
// restarting the process; see pkg/providers.Registry.Reload.
//
// # Validation
//
// All configuration is validated automatically during loading:
//
//   - Required field checks (provider name/kind/base_url/auth)
//   - Enum checks (provider kind, auth scheme, selection strategy, log level)
//   - Cross-reference checks (every model route names a configured provider)
//   - Logical validation (TLS enabled requires cert and key files)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - providers[0].auth.secret: secret is required for this auth scheme
//	  - model_routes[claude-*][0].provider: unknown provider "anthropic-typo"
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	proxy:
//	  listen_address: "127.0.0.1:8080"
//
//	providers:
//	  - name: openai
//	    kind: openai_compatible
//	    base_url: "https://api.openai.com/v1"
//	    auth:
//	      scheme: api_key
//	      secret: "${OPENAI_API_KEY}"
//	    enabled: true
//
//	model_routes:
//	  "gpt-*":
//	    - provider: openai
//	      priority: 0
//	      enabled: true
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const validConfigYAML = `
proxy:
  listen_address: "0.0.0.0:8080"
  read_timeout: "60s"

providers:
  - name: openai
    kind: openai_compatible
    base_url: "https://api.openai.com/v1"
    auth:
      scheme: api_key
      secret: "test-key-123"
    enabled: true

model_routes:
  "gpt-*":
    - provider: openai
      priority: 0
      enabled: true

telemetry:
  logging:
    level: "debug"
    format: "text"
  metrics:
    enabled: true
`

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, validConfigYAML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Proxy.ListenAddress != "0.0.0.0:8080" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8080", cfg.Proxy.ListenAddress)
	}
	if cfg.Proxy.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout %v, got %v", 60*time.Second, cfg.Proxy.ReadTimeout)
	}

	if len(cfg.Providers) != 1 || cfg.Providers[0].Name != "openai" {
		t.Fatalf("expected single openai provider, got %+v", cfg.Providers)
	}
	if cfg.Providers[0].Auth.Secret != "test-key-123" {
		t.Errorf("expected secret %q, got %q", "test-key-123", cfg.Providers[0].Auth.Secret)
	}

	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_SecretEnvExpansion(t *testing.T) {
	content := strings.Replace(validConfigYAML, `secret: "test-key-123"`, `secret: "${TEST_BALANCER_SECRET}"`, 1)
	path := writeConfig(t, content)

	os.Setenv("TEST_BALANCER_SECRET", "expanded-secret")
	defer os.Unsetenv("TEST_BALANCER_SECRET")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Providers[0].Auth.Secret != "expanded-secret" {
		t.Errorf("expected expanded secret, got %q", cfg.Providers[0].Auth.Secret)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "no such file or directory") {
		t.Errorf("expected file not found error, got: %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "proxy:\n  listen_address: \"0.0.0.0:8080\"\n  invalid yaml here: [\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	content := `
proxy:
  listen_address: "0.0.0.0:8080"

providers: []

telemetry:
  logging:
    level: "invalid"
    format: "json"
`
	path := writeConfig(t, content)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError in error chain, got %T: %v", err, err)
	}
}

func TestLoadConfigWithEnvOverrides_ListenAddress(t *testing.T) {
	path := writeConfig(t, validConfigYAML)

	os.Setenv("BALANCER_LISTEN_ADDRESS", "0.0.0.0:9090")
	defer os.Unsetenv("BALANCER_LISTEN_ADDRESS")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Proxy.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("expected listen address %q from env, got %q", "0.0.0.0:9090", cfg.Proxy.ListenAddress)
	}
}

func TestLoadConfigWithEnvOverrides_LoggingAndMetrics(t *testing.T) {
	path := writeConfig(t, validConfigYAML)

	os.Setenv("BALANCER_LOG_LEVEL", "warn")
	os.Setenv("BALANCER_LOG_FORMAT", "text")
	os.Setenv("BALANCER_METRICS_ENABLED", "false")
	defer func() {
		os.Unsetenv("BALANCER_LOG_LEVEL")
		os.Unsetenv("BALANCER_LOG_FORMAT")
		os.Unsetenv("BALANCER_METRICS_ENABLED")
	}()

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected logging level %q from env, got %q", "warn", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics enabled to be false from env")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidEnvValueFailsValidation(t *testing.T) {
	path := writeConfig(t, validConfigYAML)

	os.Setenv("BALANCER_LOG_LEVEL", "invalid-level")
	defer os.Unsetenv("BALANCER_LOG_LEVEL")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Error("expected validation error for invalid env values")
	}
}

func TestLoadConfigWithEnvOverrides_TLS(t *testing.T) {
	path := writeConfig(t, validConfigYAML)

	os.Setenv("BALANCER_TLS_ENABLED", "true")
	os.Setenv("BALANCER_TLS_CERT_FILE", "/etc/tls/cert.pem")
	os.Setenv("BALANCER_TLS_KEY_FILE", "/etc/tls/key.pem")
	defer func() {
		os.Unsetenv("BALANCER_TLS_ENABLED")
		os.Unsetenv("BALANCER_TLS_CERT_FILE")
		os.Unsetenv("BALANCER_TLS_KEY_FILE")
	}()

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Security.TLS.Enabled {
		t.Error("expected TLS enabled from env")
	}
	if cfg.Security.TLS.CertFile != "/etc/tls/cert.pem" {
		t.Errorf("expected cert file from env, got %q", cfg.Security.TLS.CertFile)
	}
}

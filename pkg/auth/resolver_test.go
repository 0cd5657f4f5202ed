package auth

import (
	"net/http"
	"testing"

	"provider-balancer/balancer/pkg/providers"
)

func anthropicProvider(scheme providers.AuthScheme, secret string) *providers.Provider {
	return &providers.Provider{
		Name: "claude-direct",
		Kind: providers.KindAnthropic,
		Auth: providers.AuthConfig{Scheme: scheme, Secret: secret},
	}
}

func openAIProvider(scheme providers.AuthScheme, secret string) *providers.Provider {
	return &providers.Provider{
		Name: "openai-compat",
		Kind: providers.KindOpenAICompatible,
		Auth: providers.AuthConfig{Scheme: scheme, Secret: secret},
	}
}

func TestResolvePassthroughForwardsInboundCredentials(t *testing.T) {
	r := NewResolver(nil)
	inbound := http.Header{}
	inbound.Set("Authorization", "Bearer client-token")
	inbound.Set("X-Api-Key", "client-key")
	inbound.Set("Content-Type", "application/json")

	out, err := r.Resolve(anthropicProvider(providers.AuthPassthrough, ""), inbound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Get("Authorization") != "Bearer client-token" {
		t.Fatalf("Authorization = %q", out.Get("Authorization"))
	}
	if out.Get("X-Api-Key") != "client-key" {
		t.Fatalf("X-Api-Key = %q", out.Get("X-Api-Key"))
	}
	if out.Get("Content-Type") != "application/json" {
		t.Fatalf("Content-Type dropped: %q", out.Get("Content-Type"))
	}
}

func TestResolveExcludesHopByHopInboundHeaders(t *testing.T) {
	r := NewResolver(nil)
	inbound := http.Header{}
	inbound.Set("Authorization", "Bearer client-token")
	inbound.Set("X-Api-Key", "client-key")
	inbound.Set("Host", "client.example.com")
	inbound.Set("Content-Length", "42")

	out, err := r.Resolve(anthropicProvider(providers.AuthAPIKey, "sk-server-key"), inbound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Get("Host") != "" || out.Get("Content-Length") != "" {
		t.Fatalf("hop-by-hop headers leaked through: %+v", out)
	}
	// The server's own api_key auth must win over whatever the client sent.
	if out.Get("X-Api-Key") != "sk-server-key" {
		t.Fatalf("X-Api-Key = %q, want server secret", out.Get("X-Api-Key"))
	}
}

func TestResolveAPIKeyAnthropicSetsXApiKeyAndVersion(t *testing.T) {
	r := NewResolver(nil)
	out, err := r.Resolve(anthropicProvider(providers.AuthAPIKey, "sk-ant-123"), http.Header{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Get("X-Api-Key") != "sk-ant-123" {
		t.Fatalf("X-Api-Key = %q", out.Get("X-Api-Key"))
	}
	if out.Get("Anthropic-Version") != "2023-06-01" {
		t.Fatalf("Anthropic-Version = %q", out.Get("Anthropic-Version"))
	}
	if out.Get("Authorization") != "" {
		t.Fatalf("unexpected Authorization header: %q", out.Get("Authorization"))
	}
}

func TestResolveAPIKeyOpenAICompatibleUsesBearerAuthorization(t *testing.T) {
	r := NewResolver(nil)
	out, err := r.Resolve(openAIProvider(providers.AuthAPIKey, "sk-oai-123"), http.Header{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Get("Authorization") != "Bearer sk-oai-123" {
		t.Fatalf("Authorization = %q", out.Get("Authorization"))
	}
	if out.Get("X-Api-Key") != "" {
		t.Fatalf("unexpected X-Api-Key header: %q", out.Get("X-Api-Key"))
	}
}

func TestResolveBearerTokenScheme(t *testing.T) {
	r := NewResolver(nil)
	out, err := r.Resolve(openAIProvider(providers.AuthBearerToken, "tok-456"), http.Header{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Get("Authorization") != "Bearer tok-456" {
		t.Fatalf("Authorization = %q", out.Get("Authorization"))
	}
}

func TestResolveOAuthUsesRegisteredTokenSource(t *testing.T) {
	r := NewResolver(map[string]TokenSource{
		"claude-direct": StaticTokenSource("oauth-token-789"),
	})
	out, err := r.Resolve(anthropicProvider(providers.AuthOAuth, ""), http.Header{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Get("Authorization") != "Bearer oauth-token-789" {
		t.Fatalf("Authorization = %q", out.Get("Authorization"))
	}
	if out.Get("Anthropic-Version") != "2023-06-01" {
		t.Fatalf("Anthropic-Version = %q", out.Get("Anthropic-Version"))
	}
}

func TestResolveOAuthMissingTokenSourceIsAuthorizationRequired(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.Resolve(anthropicProvider(providers.AuthOAuth, ""), http.Header{})
	var authErr *providers.AuthorizationRequiredError
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !asAuthorizationRequired(err, &authErr) {
		t.Fatalf("got %T: %v, want *providers.AuthorizationRequiredError", err, err)
	}
}

func TestResolveOAuthStaleTokenIsAuthorizationRequired(t *testing.T) {
	r := NewResolver(map[string]TokenSource{
		"claude-direct": StaticTokenSource(""),
	})
	_, err := r.Resolve(anthropicProvider(providers.AuthOAuth, ""), http.Header{})
	var authErr *providers.AuthorizationRequiredError
	if !asAuthorizationRequired(err, &authErr) {
		t.Fatalf("got %v, want *providers.AuthorizationRequiredError", err)
	}
}

func TestResolveUnknownSchemeIsConfigError(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.Resolve(anthropicProvider(providers.AuthScheme("bogus"), ""), http.Header{})
	var cfgErr *providers.ConfigError
	if !asConfigError(err, &cfgErr) {
		t.Fatalf("got %v, want *providers.ConfigError", err)
	}
}

func asAuthorizationRequired(err error, target **providers.AuthorizationRequiredError) bool {
	v, ok := err.(*providers.AuthorizationRequiredError)
	if ok {
		*target = v
	}
	return ok
}

func asConfigError(err error, target **providers.ConfigError) bool {
	v, ok := err.(*providers.ConfigError)
	if ok {
		*target = v
	}
	return ok
}

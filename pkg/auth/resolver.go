// Package auth implements the Auth Resolver (§4.5): building outbound
// request headers for one provider attempt from the provider's configured
// auth scheme and the inbound client headers.
package auth

import (
	"net/http"

	"provider-balancer/balancer/pkg/providers"
)

// TokenSource is the capability the Auth Resolver consumes for OAuth
// providers. The core never performs the device-flow UX itself (§1
// Non-goals); it only reads the current token snapshot.
type TokenSource interface {
	// CurrentToken returns the current bearer token, or ok=false if none is
	// available (stale/never-authorized).
	CurrentToken() (token string, ok bool)
}

// StaticTokenSource is a TokenSource backed by a fixed, possibly-empty
// string — used in tests and for providers that supply a pre-fetched token.
type StaticTokenSource string

func (s StaticTokenSource) CurrentToken() (string, bool) {
	if s == "" {
		return "", false
	}
	return string(s), true
}

var hopByHopExcluded = map[string]bool{
	"Authorization":  true,
	"X-Api-Key":      true,
	"Host":           true,
	"Content-Length": true,
}

// Resolver builds outbound headers per provider (§4.5). OAuth token sources
// are registered per provider name.
type Resolver struct {
	tokenSources map[string]TokenSource
}

// NewResolver builds a Resolver. tokenSources maps provider name to its
// OAuth TokenSource; providers using other schemes need no entry.
func NewResolver(tokenSources map[string]TokenSource) *Resolver {
	if tokenSources == nil {
		tokenSources = make(map[string]TokenSource)
	}
	return &Resolver{tokenSources: tokenSources}
}

// Resolve builds the outbound header set for one attempt against provider,
// given the inbound request's headers.
func (r *Resolver) Resolve(provider *providers.Provider, inbound http.Header) (http.Header, error) {
	out := make(http.Header)
	for k, values := range inbound {
		if hopByHopExcluded[http.CanonicalHeaderKey(k)] {
			continue
		}
		for _, v := range values {
			out.Add(k, v)
		}
	}

	switch provider.Auth.Scheme {
	case providers.AuthPassthrough:
		if v := inbound.Get("Authorization"); v != "" {
			out.Set("Authorization", v)
		}
		if v := inbound.Get("X-Api-Key"); v != "" {
			out.Set("X-Api-Key", v)
		}

	case providers.AuthAPIKey:
		if provider.Kind == providers.KindAnthropic {
			out.Set("X-Api-Key", provider.Auth.Secret)
			out.Set("Anthropic-Version", "2023-06-01")
		} else {
			out.Set("Authorization", "Bearer "+provider.Auth.Secret)
		}

	case providers.AuthBearerToken:
		out.Set("Authorization", "Bearer "+provider.Auth.Secret)
		if provider.Kind == providers.KindAnthropic {
			out.Set("Anthropic-Version", "2023-06-01")
		}

	case providers.AuthOAuth:
		src, ok := r.tokenSources[provider.Name]
		if !ok {
			return nil, &providers.AuthorizationRequiredError{Provider: provider.Name}
		}
		token, ok := src.CurrentToken()
		if !ok {
			return nil, &providers.AuthorizationRequiredError{Provider: provider.Name}
		}
		out.Set("Authorization", "Bearer "+token)
		if provider.Kind == providers.KindAnthropic {
			out.Set("Anthropic-Version", "2023-06-01")
		}

	default:
		return nil, &providers.ConfigError{Provider: provider.Name, Field: "auth.scheme", Message: "unrecognized auth scheme"}
	}

	return out, nil
}

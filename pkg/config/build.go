package config

import (
	"fmt"

	"provider-balancer/balancer/pkg/auth"
	"provider-balancer/balancer/pkg/orchestrator"
	"provider-balancer/balancer/pkg/providers"
	"provider-balancer/balancer/pkg/routing"
	"provider-balancer/balancer/pkg/routing/strategies"
)

// BuildProviders translates the on-disk ProviderConfig list into
// providers.Provider values for the Provider Registry.
func BuildProviders(cfgs []ProviderConfig) []providers.Provider {
	out := make([]providers.Provider, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, providers.Provider{
			Name:          c.Name,
			Kind:          providers.Kind(c.Kind),
			BaseURL:       c.BaseURL,
			Auth:          providers.AuthConfig{Scheme: providers.AuthScheme(c.Auth.Scheme), Secret: c.Auth.Secret},
			ProxyURL:      c.ProxyURL,
			StreamingMode: providers.StreamingMode(c.StreamingMode),
			Enabled:       c.Enabled,
		})
	}
	return out
}

// BuildRoutes flattens the pattern -> []RouteConfig map into
// providers.ModelRoute values for the Provider Registry.
func BuildRoutes(routeMap map[string][]RouteConfig) []providers.ModelRoute {
	var out []providers.ModelRoute
	for pattern, routes := range routeMap {
		for _, r := range routes {
			out = append(out, providers.ModelRoute{
				Pattern:       pattern,
				ProviderName:  r.Provider,
				UpstreamModel: r.UpstreamModel,
				Priority:      r.Priority,
				Enabled:       r.Enabled,
			})
		}
	}
	return out
}

// BuildHealthConfig translates SettingsConfig into providers.HealthConfig.
func BuildHealthConfig(s SettingsConfig) providers.HealthConfig {
	return providers.HealthConfig{
		UnhealthyThreshold:      s.UnhealthyThreshold,
		FailureCooldown:         s.FailureCooldown,
		UnhealthyResetOnSuccess: s.UnhealthyResetOnSuccess,
		UnhealthyResetTimeout:   s.UnhealthyResetTimeout,
	}
}

// BuildOrchestratorSettings translates SettingsConfig into the
// orchestrator.Settings the Request Orchestrator runs with.
func BuildOrchestratorSettings(s SettingsConfig) orchestrator.Settings {
	failoverKinds := make(map[providers.ErrorKind]bool, len(s.FailoverErrorTypes))
	for _, k := range s.FailoverErrorTypes {
		failoverKinds[providers.ErrorKind(k)] = true
	}

	failoverCodes := make(map[int]bool, len(s.FailoverHTTPCodes))
	for _, c := range s.FailoverHTTPCodes {
		failoverCodes[c] = true
	}

	return orchestrator.Settings{
		SelectionStrategy:       s.SelectionStrategy,
		FailureCooldown:         s.FailureCooldown,
		UnhealthyThreshold:      s.UnhealthyThreshold,
		UnhealthyResetOnSuccess: s.UnhealthyResetOnSuccess,
		UnhealthyResetTimeout:   s.UnhealthyResetTimeout,
		StickyProviderDuration:  s.StickyProviderDuration,
		FailoverErrorKinds:      failoverKinds,
		FailoverHTTPCodes:       failoverCodes,
		Streaming:               orchestrator.TimeoutGroup(s.Timeouts.Streaming),
		NonStreaming:            orchestrator.TimeoutGroup(s.Timeouts.NonStreaming),
		Caching:                 orchestrator.TimeoutGroup(s.Timeouts.Caching),
		DedupGraceWindow:        s.Deduplication.SSEErrorCleanupDelay,
		BroadcasterBound:        s.BroadcasterQueueBound,
	}
}

// BuildTokenSources opens a auth.FileTokenSource per entry in
// OAuth.TokenFiles. Callers are responsible for closing the returned
// sources (via the returned closer) on shutdown.
func BuildTokenSources(oauthCfg OAuthConfig) (map[string]auth.TokenSource, func(), error) {
	sources := make(map[string]auth.TokenSource, len(oauthCfg.TokenFiles))
	var closers []func() error

	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	for provider, path := range oauthCfg.TokenFiles {
		src, err := auth.NewFileTokenSource(path)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("failed to open oauth token file for %q: %w", provider, err)
		}
		sources[provider] = src
		closers = append(closers, src.Close)
	}

	return sources, closeAll, nil
}

// BuildSelector constructs the Route Selector and the sticky-state overlay
// it shares with the Request Orchestrator.
func BuildSelector(registry *providers.Registry, tracker *providers.Tracker, s SettingsConfig) (*routing.Selector, *routing.StickyState, error) {
	strategy, err := strategies.New(s.SelectionStrategy)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build selection strategy: %w", err)
	}
	sticky := routing.NewStickyState()
	selector := routing.NewSelector(registry, tracker, strategy, sticky, s.StickyProviderDuration)
	return selector, sticky, nil
}

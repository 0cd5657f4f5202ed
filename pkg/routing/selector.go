package routing

import (
	"time"

	"provider-balancer/balancer/pkg/providers"
	"provider-balancer/balancer/pkg/routing/strategies"
)

// Selector implements the Route Selector algorithm (§4.3): route lookup,
// health filtering, strategy ordering, and the sticky overlay.
type Selector struct {
	registry           *providers.Registry
	tracker            *providers.Tracker
	strategy           strategies.Strategy
	sticky             *StickyState
	stickyProviderTime time.Duration
}

// NewSelector builds a Selector. stickyProviderDuration of 0 disables
// stickiness entirely.
func NewSelector(registry *providers.Registry, tracker *providers.Tracker, strategy strategies.Strategy, sticky *StickyState, stickyProviderDuration time.Duration) *Selector {
	return &Selector{
		registry:           registry,
		tracker:            tracker,
		strategy:           strategy,
		sticky:             sticky,
		stickyProviderTime: stickyProviderDuration,
	}
}

// Select resolves requestedModel to an ordered candidate list, ready for the
// orchestrator to attempt in sequence. Returns NoHealthyProviderError if no
// enabled, healthy candidate remains after filtering.
func (s *Selector) Select(requestedModel string) (providers.CandidateList, error) {
	routes := s.registry.RoutesForModel(requestedModel)
	if len(routes) == 0 {
		return nil, &providers.NoHealthyProviderError{Model: requestedModel}
	}

	candidates := make(providers.CandidateList, 0, len(routes))
	for _, rt := range routes {
		p, ok := s.registry.ByName(rt.ProviderName)
		if !ok || !p.Enabled {
			continue
		}
		if !s.tracker.IsHealthy(p.Name) {
			continue
		}
		candidates = append(candidates, providers.Candidate{
			Provider:      p,
			UpstreamModel: rt.ResolveUpstreamModel(requestedModel),
			RouteProvider: rt.ProviderName,
		})
	}

	if len(candidates) == 0 {
		return nil, &providers.NoHealthyProviderError{Model: requestedModel}
	}

	ordered := s.strategy.Order(requestedModel, candidates)
	ordered = s.sticky.Apply(ordered, s.stickyProviderTime)
	return ordered, nil
}

// StrategyName reports the configured base strategy's name, for admin
// introspection and logging.
func (s *Selector) StrategyName() string { return s.strategy.Name() }

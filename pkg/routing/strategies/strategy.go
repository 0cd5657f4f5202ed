// Package strategies implements the base-ordering strategies the Route
// Selector applies before the stickiness overlay (§4.3 step 4).
package strategies

import "provider-balancer/balancer/pkg/providers"

// Strategy orders a priority-sorted candidate list for one route pattern.
// Implementations must not mutate the input slice.
type Strategy interface {
	Name() string
	Order(pattern string, candidates providers.CandidateList) providers.CandidateList
}

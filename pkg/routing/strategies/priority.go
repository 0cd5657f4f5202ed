package strategies

import "provider-balancer/balancer/pkg/providers"

// PriorityStrategy keeps candidates in ascending-priority order, exactly as
// the registry already sorted its routes.
type PriorityStrategy struct{}

func NewPriorityStrategy() *PriorityStrategy { return &PriorityStrategy{} }

func (s *PriorityStrategy) Name() string { return "priority" }

func (s *PriorityStrategy) Order(_ string, candidates providers.CandidateList) providers.CandidateList {
	out := make(providers.CandidateList, len(candidates))
	copy(out, candidates)
	return out
}

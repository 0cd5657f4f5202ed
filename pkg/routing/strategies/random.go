package strategies

import (
	"math/rand"

	"provider-balancer/balancer/pkg/providers"
)

// RandomStrategy uniformly picks among the top-3 priority group and places
// it first; the remainder keep priority order so fallback is still
// deterministic (§4.3 "Random").
type RandomStrategy struct{}

func NewRandomStrategy() *RandomStrategy { return &RandomStrategy{} }

func (s *RandomStrategy) Name() string { return "random" }

func (s *RandomStrategy) Order(_ string, candidates providers.CandidateList) providers.CandidateList {
	if len(candidates) <= 1 {
		out := make(providers.CandidateList, len(candidates))
		copy(out, candidates)
		return out
	}

	top := len(candidates)
	if top > 3 {
		top = 3
	}
	pick := rand.Intn(top)

	out := make(providers.CandidateList, 0, len(candidates))
	out = append(out, candidates[pick])
	out = append(out, candidates[:pick]...)
	out = append(out, candidates[pick+1:]...)
	return out
}

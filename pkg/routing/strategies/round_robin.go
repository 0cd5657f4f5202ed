package strategies

import (
	"sync"
	"sync/atomic"

	"provider-balancer/balancer/pkg/providers"
)

// RoundRobinStrategy rotates a per-pattern counter: the first candidate in
// the returned list is the rotated one, the rest keep priority order
// (§4.3 "RoundRobin").
type RoundRobinStrategy struct {
	mu       sync.Mutex
	counters map[string]*atomic.Int64
}

func NewRoundRobinStrategy() *RoundRobinStrategy {
	return &RoundRobinStrategy{counters: make(map[string]*atomic.Int64)}
}

func (s *RoundRobinStrategy) Name() string { return "round_robin" }

func (s *RoundRobinStrategy) counter(pattern string) *atomic.Int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[pattern]
	if !ok {
		c = &atomic.Int64{}
		s.counters[pattern] = c
	}
	return c
}

func (s *RoundRobinStrategy) Order(pattern string, candidates providers.CandidateList) providers.CandidateList {
	if len(candidates) == 0 {
		return candidates
	}

	c := s.counter(pattern)
	n := c.Add(1) - 1
	// Reset periodically to avoid unbounded growth over long uptimes.
	if n > 1_000_000_000 {
		c.Store(0)
		n = 0
	}
	rotate := int(n % int64(len(candidates)))

	out := make(providers.CandidateList, 0, len(candidates))
	out = append(out, candidates[rotate:]...)
	out = append(out, candidates[:rotate]...)
	return out
}

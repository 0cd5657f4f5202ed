// Package routing implements the Route Selector (§4.3): resolving a
// requested model to a priority-ordered, strategy-shuffled, sticky-aware
// list of candidate providers.
package routing

import (
	"sync"
	"time"

	"provider-balancer/balancer/pkg/providers"
)

// StickyState tracks the last successfully-used provider process-wide. It
// applies as an overlay on top of whichever base strategy is configured
// (§9 Open Question #1: sticky applies in round_robin mode too).
type StickyState struct {
	mu          sync.Mutex
	lastName    string
	lastSuccess time.Time
}

func NewStickyState() *StickyState { return &StickyState{} }

// Touch records a successful response from the given provider.
func (s *StickyState) Touch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastName = name
	s.lastSuccess = time.Now()
}

// Apply moves the last-successful provider to the front of candidates if
// it is still within duration and still present in the list. Otherwise
// candidates pass through unmodified.
func (s *StickyState) Apply(candidates providers.CandidateList, duration time.Duration) providers.CandidateList {
	if duration <= 0 || len(candidates) <= 1 {
		return candidates
	}

	s.mu.Lock()
	name := s.lastName
	last := s.lastSuccess
	s.mu.Unlock()

	if name == "" || time.Since(last) > duration {
		return candidates
	}

	idx := -1
	for i, c := range candidates {
		if c.Provider.Name == name {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return candidates
	}

	out := make(providers.CandidateList, 0, len(candidates))
	out = append(out, candidates[idx])
	out = append(out, candidates[:idx]...)
	out = append(out, candidates[idx+1:]...)
	return out
}

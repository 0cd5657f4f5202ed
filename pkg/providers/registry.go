package providers

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// snapshot is the immutable, atomically-swapped view of configured
// providers and routes. A Registry never mutates a snapshot in place; reload
// builds a new one and swaps the pointer.
type snapshot struct {
	providers    map[string]*Provider
	routesByPat  map[string][]ModelRoute
	patternOrder []string // config order, exact-match candidates first within Select
}

// Registry is the Provider Registry component (§4.1): an in-memory,
// reloadable set of provider descriptors and model routes. Readers use the
// snapshot they observed at call time; Reload publishes a new snapshot via
// atomic pointer swap so in-flight requests are unaffected.
type Registry struct {
	snap atomic.Pointer[snapshot]
}

// NewRegistry builds a Registry from an initial provider/route set.
func NewRegistry(providerList []Provider, routes []ModelRoute) *Registry {
	r := &Registry{}
	r.snap.Store(buildSnapshot(providerList, routes))
	return r
}

func buildSnapshot(providerList []Provider, routes []ModelRoute) *snapshot {
	s := &snapshot{
		providers:   make(map[string]*Provider, len(providerList)),
		routesByPat: make(map[string][]ModelRoute),
	}
	for i := range providerList {
		p := providerList[i]
		if !p.Enabled {
			continue
		}
		pc := p
		s.providers[p.Name] = &pc
	}

	seen := make(map[string]bool)
	for _, rt := range routes {
		if !rt.Enabled {
			continue
		}
		if !seen[rt.Pattern] {
			seen[rt.Pattern] = true
			s.patternOrder = append(s.patternOrder, rt.Pattern)
		}
		s.routesByPat[rt.Pattern] = append(s.routesByPat[rt.Pattern], rt)
	}
	for pat := range s.routesByPat {
		list := s.routesByPat[pat]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority < list[j].Priority })
		s.routesByPat[pat] = list
	}
	return s
}

// List returns every enabled provider in the current snapshot.
func (r *Registry) List() []*Provider {
	s := r.snap.Load()
	out := make([]*Provider, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByName looks up a provider by exact name in the current snapshot.
func (r *Registry) ByName(name string) (*Provider, bool) {
	s := r.snap.Load()
	p, ok := s.providers[name]
	return p, ok
}

// RoutesForModel returns the routes matching requestedModel: an exact
// pattern match takes precedence over any glob, and globs are evaluated in
// the order they appeared in configuration (§4.3 step 1).
func (r *Registry) RoutesForModel(requestedModel string) []ModelRoute {
	s := r.snap.Load()

	if exact, ok := s.routesByPat[requestedModel]; ok {
		return exact
	}
	for _, pat := range s.patternOrder {
		if pat == requestedModel {
			continue // already checked as exact match
		}
		if MatchesPattern(pat, requestedModel) {
			return s.routesByPat[pat]
		}
	}
	return nil
}

// Reload atomically replaces the snapshot. It never mutates the previous
// snapshot, so requests already holding a CandidateList built from it keep
// running unaffected.
func (r *Registry) Reload(providerList []Provider, routes []ModelRoute) error {
	if len(providerList) == 0 {
		return fmt.Errorf("reload rejected: provider list is empty")
	}
	r.snap.Store(buildSnapshot(providerList, routes))
	return nil
}

// Package providers holds the Provider Registry and Health Tracker: the
// immutable, reloadable set of configured upstreams and the mutable health
// state that the Route Selector consults when building a candidate list.
//
// A Registry snapshot is never mutated in place; Reload swaps in a new one
// atomically so in-flight requests keep using the snapshot they selected
// from. The Tracker serializes all health mutations behind a single mutex
// and never performs I/O while holding it.
package providers

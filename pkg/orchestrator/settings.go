// Package orchestrator implements the Request Orchestrator (§4.8): the
// per-request state machine that ties the Provider Registry, Health
// Tracker, Route Selector, Format Translator, Auth Resolver, Deduplication
// Index, and Broadcaster together.
package orchestrator

import (
	"time"

	"provider-balancer/balancer/pkg/providers"
)

// TimeoutGroup holds connect/read/pool timeouts for one traffic shape
// (§6 timeouts.{streaming,non_streaming,caching}).
type TimeoutGroup = providers.Timeouts

// Settings carries every tunable named in §6's settings table plus the
// three timeout groups.
type Settings struct {
	SelectionStrategy       string
	FailureCooldown         time.Duration
	UnhealthyThreshold      int
	UnhealthyResetOnSuccess bool
	UnhealthyResetTimeout   time.Duration
	StickyProviderDuration  time.Duration

	// FailoverErrorKinds gates the "(config)" rows of §7's taxonomy:
	// connection/timeout kinds only fail over when their kind is present
	// here; for 408/429/5xx responses, presence here or of the status code
	// in FailoverHTTPCodes is enough.
	FailoverErrorKinds map[providers.ErrorKind]bool

	// FailoverHTTPCodes makes an upstream status code eligible for failover:
	// for 408/429/5xx it is an alternative to FailoverErrorKinds, and for
	// other 4xx responses it alone decides eligibility and whether the
	// failure counts toward unhealthiness.
	FailoverHTTPCodes map[int]bool

	Streaming    TimeoutGroup
	NonStreaming TimeoutGroup
	// Caching bounds how long a Subscriber waits on a Primary it did not
	// start — the "caching" timeout group's read timeout doubles as the
	// subscriber wait deadline, since a subscriber is, by definition,
	// reading a cached-in-flight result rather than making its own call.
	Caching TimeoutGroup

	DedupGraceWindow time.Duration

	BroadcasterBound int
}

// DefaultSettings returns the documented defaults (§6 / teacher convention
// of zero-value-safe configuration).
func DefaultSettings() Settings {
	return Settings{
		SelectionStrategy:       "priority",
		FailureCooldown:         30 * time.Second,
		UnhealthyThreshold:      3,
		UnhealthyResetOnSuccess: true,
		UnhealthyResetTimeout:   5 * time.Minute,
		StickyProviderDuration:  0,
		FailoverErrorKinds: map[providers.ErrorKind]bool{
			providers.KindConnectionError:    true,
			providers.KindSSLError:           true,
			providers.KindConnectTimeout:     true,
			providers.KindReadTimeout:        true,
			providers.KindPoolTimeout:        true,
			providers.KindInternalServer:     true,
			providers.KindBadGateway:         true,
			providers.KindServiceUnavailable: true,
			providers.KindGatewayTimeout:     true,
			providers.KindRateLimit:          true,
		},
		FailoverHTTPCodes: map[int]bool{429: true, 500: true, 502: true, 503: true, 504: true, 408: true},
		Streaming:          TimeoutGroup{Connect: 10 * time.Second, Read: 30 * time.Second, Pool: 5 * time.Second},
		NonStreaming:       TimeoutGroup{Connect: 10 * time.Second, Read: 120 * time.Second, Pool: 5 * time.Second},
		Caching:            TimeoutGroup{Connect: 0, Read: 60 * time.Second, Pool: 0},
		DedupGraceWindow:   5 * time.Second,
		BroadcasterBound:   256,
	}
}

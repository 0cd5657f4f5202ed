package providers

import (
	"log/slog"
	"sync"
	"time"
)

// HealthConfig holds the tunables from settings.* that govern the Health
// Tracker's state machine (§4.2, §6).
type HealthConfig struct {
	UnhealthyThreshold      int
	FailureCooldown         time.Duration
	UnhealthyResetOnSuccess bool
	UnhealthyResetTimeout   time.Duration
}

// providerHealth is the mutable per-provider health record. All fields are
// only ever read/written while the Tracker's mutex is held.
type providerHealth struct {
	ConsecutiveErrors int
	LastErrorTime     time.Time
	LastSuccessTime   time.Time
	LastErrorKind     ErrorKind
}

// Tracker is the Health Tracker component (§4.2). A single mutex guards the
// small per-provider map; every mutation is O(1) and no I/O happens under
// the lock, matching the concurrency discipline in §5.
type Tracker struct {
	mu     sync.Mutex
	cfg    HealthConfig
	status map[string]*providerHealth
}

// NewTracker builds a Tracker with the given configuration.
func NewTracker(cfg HealthConfig) *Tracker {
	if cfg.UnhealthyThreshold <= 0 {
		cfg.UnhealthyThreshold = 3
	}
	return &Tracker{
		cfg:    cfg,
		status: make(map[string]*providerHealth),
	}
}

func (t *Tracker) entry(name string) *providerHealth {
	h, ok := t.status[name]
	if !ok {
		h = &providerHealth{}
		t.status[name] = h
	}
	return h
}

// RecordSuccess marks a successful attempt against provider name.
func (t *Tracker) RecordSuccess(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.entry(name)
	h.LastSuccessTime = time.Now()
	if t.cfg.UnhealthyResetOnSuccess {
		h.ConsecutiveErrors = 0
	}
}

// RecordError marks a classified failure against provider name.
func (t *Tracker) RecordError(name string, kind ErrorKind) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.entry(name)
	h.ConsecutiveErrors++
	h.LastErrorTime = time.Now()
	h.LastErrorKind = kind

	if h.ConsecutiveErrors >= t.cfg.UnhealthyThreshold {
		slog.Warn("provider marked unhealthy",
			"provider", name,
			"consecutive_errors", h.ConsecutiveErrors,
			"error_kind", kind,
		)
	}
}

// IsHealthy reports whether provider name is currently eligible for
// selection: healthy unless its consecutive-error count has reached the
// threshold and the failure cooldown has not yet elapsed.
func (t *Tracker) IsHealthy(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isHealthyLocked(name)
}

func (t *Tracker) isHealthyLocked(name string) bool {
	h, ok := t.status[name]
	if !ok {
		return true
	}
	if h.ConsecutiveErrors < t.cfg.UnhealthyThreshold {
		return true
	}
	return time.Since(h.LastErrorTime) > t.cfg.FailureCooldown
}

// Status is a point-in-time snapshot of one provider's health, used by
// admin endpoints and tests.
type Status struct {
	ConsecutiveErrors int
	LastErrorTime     time.Time
	LastSuccessTime   time.Time
	Healthy           bool
}

// Status returns a snapshot for provider name.
func (t *Tracker) Status(name string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.status[name]
	if !ok {
		return Status{Healthy: true}
	}
	return Status{
		ConsecutiveErrors: h.ConsecutiveErrors,
		LastErrorTime:     h.LastErrorTime,
		LastSuccessTime:   h.LastSuccessTime,
		Healthy:           t.isHealthyLocked(name),
	}
}

// SweepIdle resets the consecutive-error counter for any provider whose last
// error is older than UnhealthyResetTimeout. Driven by a periodic cron job
// (registered in cmd/balancer/run.go) rather than called inline from the
// request path.
func (t *Tracker) SweepIdle() {
	if t.cfg.UnhealthyResetTimeout <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for name, h := range t.status {
		if h.ConsecutiveErrors == 0 {
			continue
		}
		if now.Sub(h.LastErrorTime) > t.cfg.UnhealthyResetTimeout {
			slog.Debug("health reset timeout elapsed, clearing error count",
				"provider", name, "previous_errors", h.ConsecutiveErrors)
			h.ConsecutiveErrors = 0
		}
	}
}

package providers_test

import (
	"testing"
	"time"

	"provider-balancer/balancer/pkg/providers"
)

func TestTrackerIsHealthyByDefault(t *testing.T) {
	tr := providers.NewTracker(providers.HealthConfig{UnhealthyThreshold: 3})
	if !tr.IsHealthy("p1") {
		t.Error("unknown provider should be healthy by default")
	}
}

func TestTrackerBecomesUnhealthyAtThreshold(t *testing.T) {
	tr := providers.NewTracker(providers.HealthConfig{
		UnhealthyThreshold: 2,
		FailureCooldown:    time.Hour,
	})

	tr.RecordError("p1", providers.KindBadGateway)
	if !tr.IsHealthy("p1") {
		t.Error("provider should still be healthy below threshold")
	}

	tr.RecordError("p1", providers.KindBadGateway)
	if tr.IsHealthy("p1") {
		t.Error("provider should be unhealthy once threshold is reached")
	}
}

func TestTrackerRecoversAfterCooldown(t *testing.T) {
	tr := providers.NewTracker(providers.HealthConfig{
		UnhealthyThreshold: 1,
		FailureCooldown:    10 * time.Millisecond,
	})

	tr.RecordError("p1", providers.KindGatewayTimeout)
	if tr.IsHealthy("p1") {
		t.Fatal("expected unhealthy immediately after crossing threshold")
	}

	time.Sleep(20 * time.Millisecond)
	if !tr.IsHealthy("p1") {
		t.Error("expected healthy again once the failure cooldown has elapsed")
	}
}

func TestTrackerRecordSuccessResetsWhenConfigured(t *testing.T) {
	tr := providers.NewTracker(providers.HealthConfig{
		UnhealthyThreshold:      5,
		UnhealthyResetOnSuccess: true,
	})

	tr.RecordError("p1", providers.KindReadTimeout)
	tr.RecordError("p1", providers.KindReadTimeout)
	tr.RecordSuccess("p1")

	status := tr.Status("p1")
	if status.ConsecutiveErrors != 0 {
		t.Errorf("ConsecutiveErrors = %d, want 0 after success with reset-on-success", status.ConsecutiveErrors)
	}
}

func TestTrackerSweepIdleClearsStaleErrors(t *testing.T) {
	tr := providers.NewTracker(providers.HealthConfig{
		UnhealthyThreshold:    1,
		FailureCooldown:       time.Hour,
		UnhealthyResetTimeout: 10 * time.Millisecond,
	})

	tr.RecordError("p1", providers.KindConnectTimeout)
	if tr.IsHealthy("p1") {
		t.Fatal("expected unhealthy immediately after crossing threshold")
	}

	time.Sleep(20 * time.Millisecond)
	tr.SweepIdle()

	status := tr.Status("p1")
	if status.ConsecutiveErrors != 0 {
		t.Errorf("ConsecutiveErrors = %d, want 0 after SweepIdle past reset timeout", status.ConsecutiveErrors)
	}
}

func TestTrackerSweepIdleNoopWhenResetTimeoutUnset(t *testing.T) {
	tr := providers.NewTracker(providers.HealthConfig{UnhealthyThreshold: 1})
	tr.RecordError("p1", providers.KindConnectTimeout)
	tr.SweepIdle()

	status := tr.Status("p1")
	if status.ConsecutiveErrors != 1 {
		t.Errorf("ConsecutiveErrors = %d, want 1 (SweepIdle should be a no-op without a reset timeout)", status.ConsecutiveErrors)
	}
}

func TestTrackerStatusForUnknownProvider(t *testing.T) {
	tr := providers.NewTracker(providers.HealthConfig{UnhealthyThreshold: 3})
	status := tr.Status("ghost")
	if !status.Healthy {
		t.Error("unknown provider status should report healthy")
	}
	if status.ConsecutiveErrors != 0 {
		t.Errorf("ConsecutiveErrors = %d, want 0 for unknown provider", status.ConsecutiveErrors)
	}
}

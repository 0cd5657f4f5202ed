package metrics

import (
	"provider-balancer/balancer/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DedupMetrics tracks Deduplication Index and Broadcaster effectiveness.
//
// Metrics:
//   - <ns>_dedup_admissions_total: admissions by role (primary,
//     subscriber_non_streaming, subscriber_streaming)
//   - <ns>_dedup_inflight_entries: current size of the in-flight index
//   - <ns>_broadcaster_subscribers: live subscriber count, one gauge summed
//     across all broadcasters
type DedupMetrics struct {
	admissionsTotal *prometheus.CounterVec
	inflightEntries prometheus.Gauge
	subscribers     prometheus.Gauge
}

// NewDedupMetrics creates and registers dedup/broadcaster metrics.
func NewDedupMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DedupMetrics {
	dm := &DedupMetrics{
		admissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dedup_admissions_total",
				Help:      "Total Deduplication Index admissions by role",
			},
			[]string{"role"},
		),
		inflightEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dedup_inflight_entries",
				Help:      "Current number of in-flight Deduplication Index entries",
			},
		),
		subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "broadcaster_subscribers",
				Help:      "Current number of live Broadcaster subscribers across all streams",
			},
		),
	}

	registry.MustRegister(dm.admissionsTotal, dm.inflightEntries, dm.subscribers)
	return dm
}

// RecordAdmission records a Deduplication Index admission. role is one of
// "primary", "subscriber_non_streaming", "subscriber_streaming".
func (dm *DedupMetrics) RecordAdmission(role string) {
	dm.admissionsTotal.WithLabelValues(role).Inc()
}

// SetInflightEntries sets the current in-flight entry count (dedup.Index.Size).
func (dm *DedupMetrics) SetInflightEntries(n int) {
	dm.inflightEntries.Set(float64(n))
}

// AddSubscribers adjusts the live broadcaster subscriber gauge by delta
// (positive on subscribe, negative on unsubscribe/eviction).
func (dm *DedupMetrics) AddSubscribers(delta int) {
	dm.subscribers.Add(float64(delta))
}

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records outcomes of cart reconciliation runs.
type ReconcileMetrics struct {
	duration    *prometheus.HistogramVec
	corrections prometheus.Counter
	unverified  prometheus.Counter
	discarded   prometheus.Counter
}

// NewReconcileMetrics registers the reconciliation metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_reconcile_duration_seconds",
		Help:    "Duration of cart reconciliation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	corrections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_price_corrections_total",
		Help: "Cart lines whose stored price differed from the oracle price.",
	})
	unverified := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_unverified_sessions_total",
		Help: "Sessions served with locally cached prices because the oracle was unreachable.",
	})
	discarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_envelopes_discarded_total",
		Help: "Persisted cart envelopes discarded as corrupt or tampered.",
	})
	reg.MustRegister(duration, corrections, unverified, discarded)
	return &ReconcileMetrics{
		duration:    duration,
		corrections: corrections,
		unverified:  unverified,
		discarded:   discarded,
	}
}

// ObserveDuration records a reconciliation run with its outcome label.
func (m *ReconcileMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncCorrections counts lines corrected to the oracle price.
func (m *ReconcileMetrics) IncCorrections(n int) {
	if m == nil || m.corrections == nil || n <= 0 {
		return
	}
	m.corrections.Add(float64(n))
}

// IncUnverified counts a session that fell back to cached prices.
func (m *ReconcileMetrics) IncUnverified() {
	if m == nil || m.unverified == nil {
		return
	}
	m.unverified.Inc()
}

// IncDiscarded counts an envelope dropped at the decode boundary.
func (m *ReconcileMetrics) IncDiscarded() {
	if m == nil || m.discarded == nil {
		return
	}
	m.discarded.Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}

package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestReconcileMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReconcileMetrics(reg)

	metrics.ObserveDuration("Fresh", 250*time.Millisecond)
	metrics.IncCorrections(3)
	metrics.IncUnverified()
	metrics.IncDiscarded()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_price_corrections_total"); err != nil {
		t.Fatalf("fetch corrections: %v", err)
	} else if got != 3 {
		t.Fatalf("expected corrections=3, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_unverified_sessions_total"); err != nil {
		t.Fatalf("fetch unverified: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unverified=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_envelopes_discarded_total"); err != nil {
		t.Fatalf("fetch discarded: %v", err)
	} else if got != 1 {
		t.Fatalf("expected discarded=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "cart_reconcile_duration_seconds", "outcome", "fresh"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestReconcileMetricsNilSafe(t *testing.T) {
	var metrics *ReconcileMetrics
	metrics.ObserveDuration("fresh", time.Second)
	metrics.IncCorrections(1)
	metrics.IncUnverified()
	metrics.IncDiscarded()

	unregistered := NewReconcileMetrics(nil)
	unregistered.ObserveDuration("fresh", time.Second)
	unregistered.IncCorrections(1)
}

func TestReconcileMetricsIgnoresNonPositiveCorrections(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReconcileMetrics(reg)
	metrics.IncCorrections(0)
	metrics.IncCorrections(-4)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "cart_price_corrections_total"); err != nil {
		t.Fatalf("fetch corrections: %v", err)
	} else if got != 0 {
		t.Fatalf("expected corrections=0, got %f", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetCounter().GetValue(), nil
	}
	return 0, fmt.Errorf("metric %q has no samples", name)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

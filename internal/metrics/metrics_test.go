package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCycle("home", false, 120*time.Millisecond)
	m.AddViolation("home", "status_mismatch")
	m.AddViolation("home", "status_mismatch")
	m.AddAlert("home")
	m.SetFailing("home", true)
	m.AddSinkError("home")

	if got := testutil.ToFloat64(m.violations.WithLabelValues("home", "status_mismatch")); got != 2 {
		t.Fatalf("violations = %v", got)
	}
	if got := testutil.ToFloat64(m.alerts.WithLabelValues("home")); got != 1 {
		t.Fatalf("alerts = %v", got)
	}
	if got := testutil.ToFloat64(m.failing.WithLabelValues("home")); got != 1 {
		t.Fatalf("failing = %v", got)
	}
	if got := testutil.ToFloat64(m.sinkErrors.WithLabelValues("home")); got != 1 {
		t.Fatalf("sink errors = %v", got)
	}
	if n := testutil.CollectAndCount(m.cycleDuration); n != 1 {
		t.Fatalf("cycle duration series = %d", n)
	}

	m.SetFailing("home", false)
	if got := testutil.ToFloat64(m.failing.WithLabelValues("home")); got != 0 {
		t.Fatalf("failing after recovery = %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCycle("x", true, time.Second)
	m.AddViolation("x", "y")
	m.AddAlert("x")
	m.SetFailing("x", true)
	m.AddSinkError("x")
}

// Package metrics holds the Prometheus collectors exported by running probes.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	cycleDuration *prometheus.HistogramVec
	violations    *prometheus.CounterVec
	alerts        *prometheus.CounterVec
	failing       *prometheus.GaugeVec
	sinkErrors    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "httprobe_cycle_duration_seconds",
			Help:    "Time taken by the HTTP request of each check cycle.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"probe", "healthy"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httprobe_violations_total",
			Help: "Violations found by check cycles, by kind.",
		}, []string{"probe", "kind"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httprobe_alerts_total",
			Help: "Alert events emitted.",
		}, []string{"probe"}),
		failing: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "httprobe_failing",
			Help: "1 while the probe is in the failing state.",
		}, []string{"probe"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httprobe_sink_errors_total",
			Help: "Alert deliveries that returned an error.",
		}, []string{"probe"}),
	}
	reg.MustRegister(m.cycleDuration, m.violations, m.alerts, m.failing, m.sinkErrors)
	return m
}

func (m *Metrics) ObserveCycle(probe string, healthy bool, d time.Duration) {
	if m == nil {
		return
	}
	m.cycleDuration.WithLabelValues(probe, strconv.FormatBool(healthy)).Observe(d.Seconds())
}

func (m *Metrics) AddViolation(probe, kind string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(probe, kind).Inc()
}

func (m *Metrics) AddAlert(probe string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(probe).Inc()
}

func (m *Metrics) SetFailing(probe string, failing bool) {
	if m == nil {
		return
	}
	v := 0.0
	if failing {
		v = 1
	}
	m.failing.WithLabelValues(probe).Set(v)
}

func (m *Metrics) AddSinkError(probe string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(probe).Inc()
}

// Package control implements the control-plane HTTP surface
// (SPEC_FULL.md §12): a /healthz liveness probe and a /metrics endpoint
// exposing the counters and gauges the rest of the runtime feeds.
package control

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the full set of control-plane instruments. Each is wired
// into the component that observes it: BackendInFlight into
// internal/lb.BackendCount, HealthCheckFailures into
// internal/health.Engine, ZoneSerial into internal/supervisor.Store.
type Metrics struct {
	BackendInFlight     *prometheus.GaugeVec
	HealthCheckFailures prometheus.Counter
	ZoneSerial          *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics builds a fresh, independently-registered Metrics instance
// (a private Registry rather than the global default, so tests and
// multiple peers in one process never collide on metric registration).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		BackendInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "edgemesh",
			Name:      "backend_inflight",
			Help:      "Current in-flight connections or requests per LB backend.",
		}, []string{"backend"}),
		HealthCheckFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edgemesh",
			Name:      "healthcheck_failures_total",
			Help:      "Total number of failed health check probes, across all targets.",
		}),
		ZoneSerial: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "edgemesh",
			Name:      "zone_serial",
			Help:      "Current SOA serial number per authoritative zone.",
		}, []string{"zone"}),
		registry: reg,
	}
	reg.MustRegister(m.BackendInFlight, m.HealthCheckFailures, m.ZoneSerial)
	return m
}

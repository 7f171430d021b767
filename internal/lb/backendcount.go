// Package lb implements the load-balancer frontend task (spec.md §4.4):
// per-record TCP or HTTP proxying over a live, health-engine-mutated
// backend pool, with least-in-flight backend selection.
package lb

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"funkhouse.rs/edgemesh/internal/model"
)

// BackendCount tracks in-flight request counts per backend and selects the
// least-loaded one, adapted from original_source/src/lb.rs's BackendCount:
// the backend with the lowest count wins and an unseen backend starts at
// count zero. Ties go to the first-iterated candidate (a strict <
// comparison), where the original picks the last-iterated one.
type BackendCount struct {
	mu       sync.Mutex
	counts   map[string]int64
	inflight *prometheus.GaugeVec // optional; labeled by backend address
}

// Option configures a BackendCount built by NewBackendCount.
type Option func(*BackendCount)

// WithInFlightGauge reports every count change to g, labeled by backend
// address (SPEC_FULL.md §12's edgemesh_backend_inflight gauge).
func WithInFlightGauge(g *prometheus.GaugeVec) Option {
	return func(c *BackendCount) { c.inflight = g }
}

// NewBackendCount returns an empty counter.
func NewBackendCount(opts ...Option) *BackendCount {
	c := &BackendCount{counts: make(map[string]int64)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBackend picks the least-loaded backend among backends, increments its
// count, and returns it. It errors if backends is empty.
func (c *BackendCount) GetBackend(backends []model.SocketAddr) (model.SocketAddr, error) {
	if len(backends) == 0 {
		return model.SocketAddr{}, fmt.Errorf("no backends to service")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var lowest model.SocketAddr
	var lowestCount int64 = -1
	for _, b := range backends {
		count := c.counts[b.String()]
		if lowestCount == -1 || count < lowestCount {
			lowest = b
			lowestCount = count
		}
	}
	c.counts[lowest.String()]++
	if c.inflight != nil {
		c.inflight.WithLabelValues(lowest.String()).Set(float64(c.counts[lowest.String()]))
	}
	return lowest, nil
}

// Finished decrements backend's in-flight count once a request it served
// has completed.
func (c *BackendCount) Finished(backend model.SocketAddr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[backend.String()]--
	if c.inflight != nil {
		c.inflight.WithLabelValues(backend.String()).Set(float64(c.counts[backend.String()]))
	}
}

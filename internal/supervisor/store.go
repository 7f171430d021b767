// Package supervisor assembles the DNS task, the per-record LB tasks, and
// the health engine into one cooperatively-shutdown process (spec.md
// §4.5), owning the single shared Config cell their mutations and reads
// all flow through (spec.md §5).
package supervisor

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"funkhouse.rs/edgemesh/internal/catalog"
	"funkhouse.rs/edgemesh/internal/model"
)

var log = logrus.WithField("component", "supervisor")

// Store is the shared-ownership Config cell (spec.md §5): a mutex guards
// all reads and writes, and every mutation rebuilds and atomically swaps
// the DNS answer catalog before releasing the lock. Rebuilding
// (internal/catalog.Materialize) is pure CPU work, so doing it inside the
// critical section never violates the "no network I/O while holding the
// lock" invariant.
type Store struct {
	mu  sync.Mutex
	cfg *model.Config
	cat atomic.Pointer[catalog.Catalog]

	zoneSerial *prometheus.GaugeVec // optional
}

// StoreOption configures a Store built by NewStore.
type StoreOption func(*Store)

// WithZoneSerialGauge reports every zone's current SOA serial to g after
// each rebuild (SPEC_FULL.md §12's edgemesh_zone_serial gauge).
func WithZoneSerialGauge(g *prometheus.GaugeVec) StoreOption {
	return func(s *Store) { s.zoneSerial = g }
}

// NewStore wraps cfg, materializing its initial catalog generation.
func NewStore(cfg *model.Config, opts ...StoreOption) (*Store, error) {
	s := &Store{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.rebuildLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// Mutate runs fn with exclusive access to the Config, then rebuilds and
// swaps the catalog. It implements health.ConfigStore.
func (s *Store) Mutate(fn func(cfg *model.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cfg)
	if err := s.rebuildLocked(); err != nil {
		log.WithError(err).Error("rebuild catalog after mutation failed; continuing to serve the previous generation")
	}
}

func (s *Store) rebuildLocked() error {
	cat, err := catalog.Materialize(s.cfg)
	if err != nil {
		return err
	}
	s.cat.Store(cat)
	if s.zoneSerial != nil {
		for _, apex := range cat.Zones() {
			zc, _ := cat.Zone(apex)
			s.zoneSerial.WithLabelValues(apex).Set(float64(zc.Serial))
		}
	}
	return nil
}

// Catalog returns the most recently materialized generation. Safe for
// concurrent use without acquiring the Config lock.
func (s *Store) Catalog() *catalog.Catalog {
	return s.cat.Load()
}

// SnapshotBackends returns a fresh copy of the current backend set of the
// (first) LBRecord named name, under the Config lock, for an LB frontend
// task to read without holding the lock itself (spec.md §5's
// snapshot-then-release discipline).
func (s *Store) SnapshotBackends(name model.DNSName) []model.SocketAddr {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.SocketAddr
	found := false
	s.cfg.Zones.Range(func(_ model.DNSName, zone model.Zone) {
		if found {
			return
		}
		for _, rec := range zone.Records {
			if rec.Name != name {
				continue
			}
			if lb, ok := rec.Record.(*model.LBRecord); ok {
				out = append(out, append([]model.SocketAddr(nil), lb.Backends...)...)
				found = true
				return
			}
		}
	})
	return out
}

package lb

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"funkhouse.rs/edgemesh/internal/model"
)

var log = logrus.WithField("component", "lb")

// Frontend is one LB record's local proxy task: its proxy mode and a
// live accessor for its current backend pool (the health engine mutates
// the underlying LBRecord concurrently, so Backends is re-read on every
// accepted connection or request rather than captured once).
type Frontend struct {
	Kind     model.LBKind
	Backends func() []model.SocketAddr

	counter *BackendCount
}

// NewFrontend builds a Frontend for one LB record. backends should return
// a fresh snapshot of the record's current backend set under the
// supervisor's config lock each time it's called. opts configure the
// frontend's BackendCount (e.g. WithInFlightGauge).
func NewFrontend(kind model.LBKind, backends func() []model.SocketAddr, opts ...Option) *Frontend {
	return &Frontend{Kind: kind, Backends: backends, counter: NewBackendCount(opts...)}
}

// Serve binds addr and proxies to the backend pool until ctx is done,
// dispatching on the record's proxy mode (spec.md §4.4).
func (f *Frontend) Serve(ctx context.Context, addr model.SocketAddr) error {
	switch f.Kind {
	case model.LBKindTCP:
		return f.serveTCP(ctx, addr)
	case model.LBKindHTTP:
		return f.serveHTTP(ctx, addr)
	default:
		return fmt.Errorf("unknown lb kind %q", f.Kind)
	}
}

package health

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Engine drives every Action on a fixed interval, probing the whole
// generation concurrently each round (spec.md §4.2: rounds are
// independent; nothing orders one action's probe against another's).
type Engine struct {
	store          ConfigStore
	actions        []*Action
	interval       time.Duration
	failureCounter prometheus.Counter // optional
}

// EngineOption configures an Engine built by NewEngine.
type EngineOption func(*Engine)

// WithFailureCounter reports every failed probe to c
// (SPEC_FULL.md §12's edgemesh_healthcheck_failures_total counter).
func WithFailureCounter(c prometheus.Counter) EngineOption {
	return func(e *Engine) { e.failureCounter = c }
}

// NewEngine builds an Engine over actions, mutating store as actions cross
// their failure threshold. The one-second tick interval matches spec.md
// §4.2.
func NewEngine(store ConfigStore, actions []*Action, opts ...EngineOption) *Engine {
	e := &Engine{store: store, actions: actions, interval: time.Second}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run ticks the engine until ctx is done. It probes once immediately, then
// once per interval.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if err := e.round(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// round probes every action once, concurrently.
func (e *Engine) round(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range e.actions {
		a := a
		g.Go(func() error {
			a.tick(gctx, e.store, e.failureCounter)
			return nil
		})
	}
	return g.Wait()
}

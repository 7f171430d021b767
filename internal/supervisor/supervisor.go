package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"funkhouse.rs/edgemesh/internal/control"
	"funkhouse.rs/edgemesh/internal/health"
	"funkhouse.rs/edgemesh/internal/lb"
	"funkhouse.rs/edgemesh/internal/model"
)

// Supervisor owns one peer's whole runtime: the DNS task, one task per
// local LB record, the health engine, and (if configured) the
// control-plane surface, all sharing a Store and a single cancellation
// signal (spec.md §4.5).
type Supervisor struct {
	cfg     *model.Config
	store   *Store
	metrics *control.Metrics // optional

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New builds a Supervisor over cfg. cfg.Me must already be set
// (model.Config.SetMe). metrics may be nil, in which case no metric is
// recorded and no control-plane surface is served even if
// cfg.Listen.ControlAddr is set.
func New(cfg *model.Config, metrics *control.Metrics) (*Supervisor, error) {
	if cfg.Me == "" {
		return nil, fmt.Errorf("supervisor: config has no local peer selected")
	}
	var storeOpts []StoreOption
	if metrics != nil {
		storeOpts = append(storeOpts, WithZoneSerialGauge(metrics.ZoneSerial))
	}
	store, err := NewStore(cfg, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("supervisor: initial catalog: %w", err)
	}
	return &Supervisor{cfg: cfg, store: store, metrics: metrics}, nil
}

// lbTask pairs one LB frontend with the address it binds.
type lbTask struct {
	frontend *lb.Frontend
	addr     model.SocketAddr
}

// localLBTasks builds one lbTask per (LB record, resolved local listener
// address) pair, each with its own BackendCount, mirroring the original's
// one-backend_count-per-listener-socket lifetime.
func (s *Supervisor) localLBTasks() []lbTask {
	var tasks []lbTask
	s.cfg.Zones.Range(func(_ model.DNSName, zone model.Zone) {
		for _, rec := range zone.Records {
			lbRec, ok := rec.Record.(*model.LBRecord)
			if !ok {
				continue
			}
			name := rec.Name
			for _, l := range lbRec.Listeners {
				if l.PeerName != s.cfg.Me {
					continue
				}
				addrs, err := l.Addrs(s.cfg.Peers)
				if err != nil {
					log.WithError(err).WithField("record", name.String()).Error("resolve local lb listener")
					continue
				}
				kind := lbRec.LBKind
				var lbOpts []lb.Option
				if s.metrics != nil {
					lbOpts = append(lbOpts, lb.WithInFlightGauge(s.metrics.BackendInFlight))
				}
				for _, a := range addrs {
					sockAddr := model.NewSocketAddr(a.IP, a.Port)
					frontend := lb.NewFrontend(kind, func() []model.SocketAddr {
						return s.store.SnapshotBackends(name)
					}, lbOpts...)
					tasks = append(tasks, lbTask{frontend: frontend, addr: sockAddr})
				}
			}
		}
	})
	return tasks
}

// Start runs the supervisor until ctx is done or a task fails fatally
// (spec.md §4.5's start() sequence: LB tasks, then the DNS task, then the
// health engine, all under one cancellation signal).
func (s *Supervisor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	for _, task := range s.localLBTasks() {
		task := task
		g.Go(func() error {
			if err := task.frontend.Serve(gctx, task.addr); err != nil {
				return fmt.Errorf("lb task on %s: %w", task.addr, err)
			}
			return nil
		})
	}

	g.Go(func() error { return s.serveDNS(gctx) })

	actions, err := health.BuildActions(s.cfg)
	if err != nil {
		return fmt.Errorf("supervisor: build health actions: %w", err)
	}
	var engineOpts []health.EngineOption
	if s.metrics != nil {
		engineOpts = append(engineOpts, health.WithFailureCounter(s.metrics.HealthCheckFailures))
	}
	engine := health.NewEngine(s.store, actions, engineOpts...)
	g.Go(func() error {
		err := engine.Run(gctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("health engine: %w", err)
		}
		return nil
	})

	if s.metrics != nil && s.cfg.Listen.ControlAddr != "" {
		ctrl := control.NewServer(s.cfg.Listen.ControlAddr, s.metrics, func() bool { return true })
		g.Go(func() error {
			if err := ctrl.Serve(gctx); err != nil {
				return fmt.Errorf("control server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Shutdown sets the cancellation signal (spec.md §4.5's shutdown()): all
// tasks started by Start observe it and unwind. It is a no-op if Start
// has not yet been called.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

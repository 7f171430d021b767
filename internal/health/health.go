// Package health implements the health-check and membership engine
// (spec.md §4.2): a fixed set of probe actions, each bound to exactly one
// target class, ticking on a fixed interval and mutating the shared Config
// when an action crosses its failure threshold in either direction.
//
// The scheduling shape — a ticker-driven loop re-probing every target each
// round — is grounded on the teacher's poll loop (tailscale.go); the
// mutation contract itself comes directly from spec.md §4.2's table, since
// original_source's health_check.rs is only the probe-spec struct and does
// not contain an engine to imitate.
package health

import (
	"context"
	"math"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"funkhouse.rs/edgemesh/internal/model"
)

var log = logrus.WithField("component", "health")

// TargetClass identifies what kind of config mutation an Action performs
// when its health state changes (spec.md §4.2).
type TargetClass int

const (
	// TargetDNS probes an address that should appear directly in an
	// ARecord's advertised set, and optionally a listener alongside it.
	TargetDNS TargetClass = iota
	// TargetLBBackend probes one backend of a load-balanced service.
	TargetLBBackend
	// TargetLBFrontend probes one resolved listener endpoint of a
	// load-balanced service.
	TargetLBFrontend
)

func (c TargetClass) String() string {
	switch c {
	case TargetDNS:
		return "dns"
	case TargetLBBackend:
		return "lb_backend"
	case TargetLBFrontend:
		return "lb_frontend"
	default:
		return "unknown"
	}
}

// Action binds one probe specification to exactly one target class
// (spec.md §4.2). It owns its own failure-count state; probing and
// mutation both go through it.
type Action struct {
	ID         uuid.UUID
	Class      TargetClass
	RecordName model.DNSName
	Target     model.SocketAddr
	// Listener is set for TargetLBFrontend actions (the listener the
	// target address resolves) and optionally for TargetDNS actions that
	// also advertise a listener on the same record (spec.md §4.2's "DNS"
	// row: "append listener (if action has one)").
	Listener *model.Listener
	Spec     model.HealthCheckSpec

	mu           sync.Mutex
	failureCount uint8
	lastFailure  *time.Time
}

func newAction(class TargetClass, recordName model.DNSName, target model.SocketAddr, listener *model.Listener, spec model.HealthCheckSpec) *Action {
	return &Action{
		ID:         uuid.New(),
		Class:      class,
		RecordName: recordName,
		Target:     target,
		Listener:   listener,
		Spec:       spec,
	}
}

// tick runs one probe round for the action and applies whatever config
// mutation the transition requires, per spec.md §4.2:
//
//   - on success, if the action was previously unhealthy (failure_count
//     had reached the threshold), add_config runs and the counter resets;
//   - on failure, the counter increments and, once it reaches the
//     threshold, remove_config runs (repeatedly, while it stays unhealthy
//     — remove_config is idempotent by construction).
func (a *Action) tick(ctx context.Context, store ConfigStore, failureCounter prometheus.Counter) {
	healthy := probe(ctx, a.Target, a.Spec.Timeout.Duration())

	a.mu.Lock()
	defer a.mu.Unlock()

	fields := logrus.Fields{"action": a.ID, "class": a.Class, "target": a.Target.String(), "record": a.RecordName.String()}

	if healthy {
		wasUnhealthy := a.failureCount >= a.Spec.FailuresThreshold
		a.failureCount = 0
		a.lastFailure = nil
		if wasUnhealthy {
			log.WithFields(fields).Info("target recovered; adding to config")
			store.Mutate(func(cfg *model.Config) { addConfig(cfg, a) })
		}
		return
	}

	if a.failureCount < math.MaxUint8 {
		a.failureCount++
	}
	now := time.Now()
	a.lastFailure = &now
	if failureCounter != nil {
		failureCounter.Inc()
	}

	if a.failureCount >= a.Spec.FailuresThreshold {
		log.WithFields(fields).WithField("failures", a.failureCount).Warn("target unhealthy; removing from config")
		store.Mutate(func(cfg *model.Config) { removeConfig(cfg, a) })
	}
}

// probe reports whether a TCP connection to target succeeds within
// timeout (spec.md §4.2: "the engine only ever runs a TCP connect probe").
func probe(ctx context.Context, target model.SocketAddr, timeout time.Duration) bool {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", target.String())
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

package control

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server binds listen.control_addr and serves /healthz and /metrics
// until ctx is done.
type Server struct {
	addr    string
	metrics *Metrics
	healthy func() bool
}

// NewServer builds a control-plane Server. healthy may be nil, in which
// case /healthz always reports OK once the server is up.
func NewServer(addr string, metrics *Metrics, healthy func() bool) *Server {
	return &Server{addr: addr, metrics: metrics, healthy: healthy}
}

// Serve binds and runs the control-plane HTTP server until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("control server on %s: %w", s.addr, err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.healthy != nil && !s.healthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

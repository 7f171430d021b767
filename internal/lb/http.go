package lb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"time"

	"funkhouse.rs/edgemesh/internal/model"
)

const headerXForwardedFor = "X-Forwarded-For"

// backendTransport picks a backend per request and releases it once the
// round trip completes, keeping BackendCount's get/finished pairing
// symmetric the way original_source/src/lb.rs's http_handler does around
// its client.request call.
type backendTransport struct {
	next     http.RoundTripper
	counter  *BackendCount
	backends func() []model.SocketAddr
}

func (t *backendTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	backend, err := t.counter.GetBackend(t.backends())
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = "http"
	req.URL.Host = backend.String()
	resp, err := t.next.RoundTrip(req)
	t.counter.Finished(backend)
	return resp, err
}

// serveHTTP binds addr and reverse-proxies each request to a
// least-loaded backend, the HTTP counterpart to serveTCP. Any upstream
// error — dial failure, backend timeout, anything — surfaces to the
// client as a plain 403, matching the original's
// `Response::builder().status(403)` fallback rather than a generic 502.
func (f *Frontend) serveHTTP(ctx context.Context, addr model.SocketAddr) error {
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			if existing := pr.In.Header.Get(headerXForwardedFor); existing != "" {
				pr.Out.Header.Set(headerXForwardedFor, fmt.Sprintf("%s,%s", addr.IP.String(), existing))
			} else {
				pr.Out.Header.Set(headerXForwardedFor, addr.IP.String())
			}
		},
		Transport: &backendTransport{
			next:     http.DefaultTransport,
			counter:  f.counter,
			backends: f.Backends,
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.WithError(err).Warn("lb http proxy error")
			w.WriteHeader(http.StatusForbidden)
		},
	}

	srv := &http.Server{Addr: addr.String(), Handler: proxy}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http lb on %s: %w", addr, err)
	}
	return nil
}

package lb

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"funkhouse.rs/edgemesh/internal/model"
)

const dialTimeout = 5 * time.Second

// serveTCP binds addr and, for each accepted connection, dials the
// least-loaded backend and splices the two connections together
// bidirectionally. Grounded directly on original_source/src/lb.rs's
// serve_tcp_listener: on a dial failure it drops that backend from this
// connection's candidate set and retries the remaining ones, until the
// set is exhausted.
func (f *Frontend) serveTCP(ctx context.Context, addr model.SocketAddr) error {
	ln, err := net.Listen("tcp", addr.String())
	if err != nil {
		return fmt.Errorf("listen tcp %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept on %s: %w", addr, err)
			}
		}
		go f.handleTCP(conn)
	}
}

func (f *Frontend) handleTCP(client net.Conn) {
	defer client.Close()

	candidates := f.Backends()
	for {
		backend, err := f.counter.GetBackend(candidates)
		if err != nil {
			log.WithError(err).Warn("no backend available for tcp connection")
			return
		}

		upstream, err := net.DialTimeout("tcp", backend.String(), dialTimeout)
		if err != nil {
			log.WithError(err).WithField("backend", backend.String()).Warn("dial backend failed, retrying with remaining backends")
			f.counter.Finished(backend)
			candidates = withoutBackend(candidates, backend)
			if len(candidates) == 0 {
				return
			}
			continue
		}

		spliceBidirectional(client, upstream)
		f.counter.Finished(backend)
		return
	}
}

func withoutBackend(backends []model.SocketAddr, remove model.SocketAddr) []model.SocketAddr {
	out := make([]model.SocketAddr, 0, len(backends))
	for _, b := range backends {
		if !b.Equal(remove) {
			out = append(out, b)
		}
	}
	return out
}

// spliceBidirectional copies in both directions until one side closes,
// the Go counterpart to the original's tokio::io::copy_bidirectional.
func spliceBidirectional(a, b net.Conn) {
	defer b.Close()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(b, a)
		_ = b.Close()
	}()
	go func() {
		defer wg.Done()
		_, _ = io.Copy(a, b)
		_ = a.Close()
	}()
	wg.Wait()
}

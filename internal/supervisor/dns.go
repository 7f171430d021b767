package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"

	"funkhouse.rs/edgemesh/internal/catalog"
)

const tcpIdleTimeout = 60 * time.Second

// dnsHandler answers from whatever catalog generation is current at
// lookup time, via the authority façade spec.md §1 and §4.1 describe:
// materialization and wire encoding are the two hard-engineering-excluded
// collaborators this handler glues together.
type dnsHandler struct {
	store *Store
}

func (h *dnsHandler) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	msg := new(dns.Msg)
	msg.SetReply(r)
	msg.Authoritative = true

	if len(r.Question) != 1 {
		msg.Rcode = dns.RcodeFormatError
		_ = w.WriteMsg(msg)
		return
	}

	q := r.Question[0]
	zc, ok := findZone(h.store.Catalog(), q.Name)
	if !ok {
		msg.Rcode = dns.RcodeRefused
		_ = w.WriteMsg(msg)
		return
	}

	if set, ok := zc.Lookup(q.Name, q.Qtype); ok {
		msg.Answer = append(msg.Answer, set.Records...)
	} else if soa, ok := zc.Lookup(zc.Apex, dns.TypeSOA); ok {
		// Negative answer: NOERROR with the SOA in the authority section,
		// rather than bare empty NOERROR.
		msg.Ns = append(msg.Ns, soa.Records...)
	}

	_ = w.WriteMsg(msg)
}

// findZone returns the catalog's most specific (longest-suffix) zone
// authoritative for qname.
func findZone(cat *catalog.Catalog, qname string) (*catalog.ZoneCatalog, bool) {
	if cat == nil {
		return nil, false
	}
	var best *catalog.ZoneCatalog
	for _, apex := range cat.Zones() {
		if !dns.IsSubDomain(apex, qname) {
			continue
		}
		if best == nil || len(apex) > len(best.Apex) {
			zc, _ := cat.Zone(apex)
			best = zc
		}
	}
	return best, best != nil
}

// serveDNS binds listen.dns_addr on both UDP and TCP (spec.md §4.5's DNS
// task), running until ctx is done.
func (s *Supervisor) serveDNS(ctx context.Context) error {
	handler := &dnsHandler{store: s.store}
	addr := s.cfg.Listen.DNSAddr

	udp := &dns.Server{Addr: addr, Net: "udp", Handler: handler}
	tcp := &dns.Server{Addr: addr, Net: "tcp", Handler: handler, IdleTimeout: func() time.Duration { return tcpIdleTimeout }}

	errCh := make(chan error, 2)
	go func() { errCh <- udp.ListenAndServe() }()
	go func() { errCh <- tcp.ListenAndServe() }()

	select {
	case <-ctx.Done():
		_ = udp.ShutdownContext(context.Background())
		_ = tcp.ShutdownContext(context.Background())
		return nil
	case err := <-errCh:
		_ = udp.ShutdownContext(context.Background())
		_ = tcp.ShutdownContext(context.Background())
		if err != nil {
			return fmt.Errorf("dns task on %s: %w", addr, err)
		}
		return nil
	}
}

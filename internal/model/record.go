package model

import (
	"fmt"
	"net"

	"gopkg.in/yaml.v3"
)

// RecordKind tags the closed set of record variants (spec.md §3).
type RecordKind string

const (
	KindA   RecordKind = "a"
	KindTXT RecordKind = "txt"
	KindLB  RecordKind = "lb"
)

// RecordType is the closed, tagged-union variant set a Record can carry.
// Materialization (internal/catalog) and mutation (this file) both match
// on Kind() with a small function per variant, rather than dynamic
// dispatch, per spec.md §9's design note.
type RecordType interface {
	Kind() RecordKind
}

// ARecord holds a static set of addresses, split into A/AAAA answers at
// materialization time by IP family.
type ARecord struct {
	Addresses    []net.IP          `yaml:"addresses"`
	TTL          uint32            `yaml:"ttl"`
	HealthChecks []HealthCheckSpec `yaml:"healthchecks"`
}

func (*ARecord) Kind() RecordKind { return KindA }

// TXTRecord holds a single TXT record's character-string list.
type TXTRecord struct {
	Value []string `yaml:"value"`
	TTL   uint32   `yaml:"ttl"`
}

func (*TXTRecord) Kind() RecordKind { return KindTXT }

// LBKind selects the load balancer's proxy mode for an LB record.
type LBKind string

const (
	LBKindTCP  LBKind = "tcp"
	LBKindHTTP LBKind = "http"
)

// TLSSettings is reserved by the schema but not implemented by the
// runtime (spec.md §1 Non-goals: TLS termination).
type TLSSettings struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

// LBRecord describes one load-balanced service: its backend pool, the
// listeners (peer:port bind specs) that front it, and its proxy mode.
type LBRecord struct {
	Backends     []SocketAddr      `yaml:"backends"`
	LBKind       LBKind            `yaml:"kind"`
	Listeners    []Listener        `yaml:"listeners"`
	TLS          *TLSSettings      `yaml:"tls,omitempty"`
	HealthChecks []HealthCheckSpec `yaml:"healthchecks"`
	TTL          uint32            `yaml:"ttl"`
}

func (*LBRecord) Kind() RecordKind { return KindLB }

const defaultTTL = 30

// Record pairs an owner name with one RecordType variant.
type Record struct {
	Name   DNSName
	Record RecordType
}

// --- mutators (spec.md §4.3) ---
//
// Each mutator applies only to the matching variant and is a no-op
// otherwise, by contract. Addition is duplicate-avoiding; removal is
// idempotent.

// AddIP appends ip to an ARecord's addresses if not already present.
// No-op on any other variant.
func (r Record) AddIP(ip net.IP) {
	a, ok := r.Record.(*ARecord)
	if !ok {
		return
	}
	for _, existing := range a.Addresses {
		if existing.Equal(ip) {
			return
		}
	}
	a.Addresses = append(a.Addresses, ip)
}

// RemoveIP removes ip from an ARecord's addresses, if present. No-op on
// any other variant or if ip is absent (idempotent).
func (r Record) RemoveIP(ip net.IP) {
	a, ok := r.Record.(*ARecord)
	if !ok {
		return
	}
	out := a.Addresses[:0]
	for _, existing := range a.Addresses {
		if !existing.Equal(ip) {
			out = append(out, existing)
		}
	}
	a.Addresses = out
}

// AddListener appends l to an LBRecord's listeners if not already present
// (equality by (peer_name, port)). No-op on any other variant.
func (r Record) AddListener(l Listener) {
	lb, ok := r.Record.(*LBRecord)
	if !ok {
		return
	}
	for _, existing := range lb.Listeners {
		if existing.Equal(l) {
			return
		}
	}
	lb.Listeners = append(lb.Listeners, l)
}

// RemoveListener removes the listener matching l (by (peer_name, port))
// from an LBRecord. No-op on any other variant or if absent.
func (r Record) RemoveListener(l Listener) {
	lb, ok := r.Record.(*LBRecord)
	if !ok {
		return
	}
	out := lb.Listeners[:0]
	for _, existing := range lb.Listeners {
		if !existing.Equal(l) {
			out = append(out, existing)
		}
	}
	lb.Listeners = out
}

// AddBackend appends a to an LBRecord's backends if not already present.
// No-op on any other variant.
func (r Record) AddBackend(a SocketAddr) {
	lb, ok := r.Record.(*LBRecord)
	if !ok {
		return
	}
	for _, existing := range lb.Backends {
		if existing.Equal(a) {
			return
		}
	}
	lb.Backends = append(lb.Backends, a)
}

// RemoveBackend removes a from an LBRecord's backends, if present. No-op
// on any other variant or if absent.
func (r Record) RemoveBackend(a SocketAddr) {
	lb, ok := r.Record.(*LBRecord)
	if !ok {
		return
	}
	out := lb.Backends[:0]
	for _, existing := range lb.Backends {
		if !existing.Equal(a) {
			out = append(out, existing)
		}
	}
	lb.Backends = out
}

// --- YAML (de)serialization ---
//
// Record is a tagged union keyed by a "type" field (spec.md §6); YAML
// doesn't model tagged unions natively, so Record peeks the tag before
// decoding into the matching concrete type.

type recordEnvelope struct {
	Name DNSName `yaml:"name"`
	Type string  `yaml:"type"`
}

func (r Record) MarshalYAML() (any, error) {
	switch v := r.Record.(type) {
	case *ARecord:
		return struct {
			Name DNSName `yaml:"name"`
			Type string  `yaml:"type"`
			ARecord `yaml:",inline"`
		}{Name: r.Name, Type: "a", ARecord: *v}, nil
	case *TXTRecord:
		return struct {
			Name DNSName `yaml:"name"`
			Type string  `yaml:"type"`
			TXTRecord `yaml:",inline"`
		}{Name: r.Name, Type: "txt", TXTRecord: *v}, nil
	case *LBRecord:
		return struct {
			Name DNSName `yaml:"name"`
			Type string  `yaml:"type"`
			LBRecord `yaml:",inline"`
		}{Name: r.Name, Type: "lb", LBRecord: *v}, nil
	default:
		return nil, fmt.Errorf("marshal record %q: unknown kind %q", r.Name, r.Record.Kind())
	}
}

func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	var env recordEnvelope
	if err := node.Decode(&env); err != nil {
		return err
	}
	r.Name = env.Name

	switch env.Type {
	case "a", "A":
		var body struct {
			ARecord `yaml:",inline"`
		}
		if err := node.Decode(&body); err != nil {
			return err
		}
		if body.TTL == 0 {
			body.TTL = defaultTTL
		}
		rec := body.ARecord
		r.Record = &rec
	case "txt", "TXT":
		var body struct {
			TXTRecord `yaml:",inline"`
		}
		if err := node.Decode(&body); err != nil {
			return err
		}
		if body.TTL == 0 {
			body.TTL = defaultTTL
		}
		rec := body.TXTRecord
		r.Record = &rec
	case "lb", "LB":
		var body struct {
			LBRecord `yaml:",inline"`
		}
		if err := node.Decode(&body); err != nil {
			return err
		}
		if body.TTL == 0 {
			body.TTL = defaultTTL
		}
		rec := body.LBRecord
		r.Record = &rec
	default:
		return fmt.Errorf("record %q: unknown type %q", env.Name, env.Type)
	}
	return nil
}

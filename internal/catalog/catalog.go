// Package catalog implements the zone materializer (spec.md §4.1): the
// pure projection from a Config to a DNS answer catalog, keyed by zone
// name and then by (owner name, record type).
package catalog

import (
	"github.com/miekg/dns"
)

// rrKey identifies one record-set within a zone.
type rrKey struct {
	owner string
	rtype uint16
}

// RRSet is one answer record-set: every dns.RR sharing an owner name and
// type, annotated with the zone generation (SOA serial) it was produced
// for (spec.md §4.1 "Serial assignment").
type RRSet struct {
	Owner   string
	Type    uint16
	Serial  uint32
	Records []dns.RR
}

// ZoneCatalog is one zone's materialized answers.
type ZoneCatalog struct {
	Apex   string
	Serial uint32

	sets  map[rrKey]*RRSet
	order []rrKey
}

func newZoneCatalog(apex string, serial uint32) *ZoneCatalog {
	return &ZoneCatalog{
		Apex:   apex,
		Serial: serial,
		sets:   make(map[rrKey]*RRSet),
	}
}

// insert appends rr to the record-set for (owner, rtype), creating it if
// necessary. Within a zone, (owner, type) is a unique key: colliding
// records are merged into one record-set, in source order.
func (z *ZoneCatalog) insert(owner string, rtype uint16, rr dns.RR) {
	k := rrKey{owner: owner, rtype: rtype}
	set, ok := z.sets[k]
	if !ok {
		set = &RRSet{Owner: owner, Type: rtype, Serial: z.Serial}
		z.sets[k] = set
		z.order = append(z.order, k)
	}
	set.Records = append(set.Records, rr)
}

// Lookup returns the record-set for (owner, rtype), if any.
func (z *ZoneCatalog) Lookup(owner string, rtype uint16) (*RRSet, bool) {
	set, ok := z.sets[rrKey{owner: owner, rtype: rtype}]
	return set, ok
}

// RRSets returns every record-set in the zone, in the order their key was
// first inserted (which follows source configuration order).
func (z *ZoneCatalog) RRSets() []*RRSet {
	out := make([]*RRSet, len(z.order))
	for i, k := range z.order {
		out[i] = z.sets[k]
	}
	return out
}

// Catalog is the whole materialized answer set: one ZoneCatalog per
// configured zone.
type Catalog struct {
	zones map[string]*ZoneCatalog
	order []string
}

func newCatalog() *Catalog {
	return &Catalog{zones: make(map[string]*ZoneCatalog)}
}

// Zone returns the materialized zone apex'd at name, if this catalog
// authoritatively serves it.
func (c *Catalog) Zone(name string) (*ZoneCatalog, bool) {
	z, ok := c.zones[name]
	return z, ok
}

// Zones returns every zone apex this catalog serves, in declaration
// order.
func (c *Catalog) Zones() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

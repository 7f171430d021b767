package catalog

import (
	"fmt"
	"math"
	"net"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"

	"funkhouse.rs/edgemesh/internal/model"
)

var log = logrus.WithField("component", "catalog")

// Materialize projects the current Config into a DNS answer catalog
// (spec.md §4.1): one authoritative zone per configured zone, each
// containing record-sets keyed by (owner name, record type).
func Materialize(cfg *model.Config) (*Catalog, error) {
	out := newCatalog()

	var err error
	cfg.Zones.Range(func(name model.DNSName, zone model.Zone) {
		if err != nil {
			return
		}
		zc, zerr := materializeZone(cfg, name, zone)
		if zerr != nil {
			err = fmt.Errorf("zone %s: %w", name, zerr)
			return
		}
		out.zones[name.String()] = zc
		out.order = append(out.order, name.String())
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func materializeZone(cfg *model.Config, name model.DNSName, zone model.Zone) (*ZoneCatalog, error) {
	apex := name.String()
	zc := newZoneCatalog(apex, zone.SOA.Serial)

	soaRR, err := soaRecord(apex, zone.SOA)
	if err != nil {
		return nil, err
	}
	zc.insert(apex, dns.TypeSOA, soaRR)

	for _, nsRR := range nsRecords(apex, zone.NS) {
		zc.insert(apex, dns.TypeNS, nsRR)
	}

	for _, rec := range zone.Records {
		owner := rec.Name.String()
		switch v := rec.Record.(type) {
		case *model.ARecord:
			aRRs, aaaaRRs := addressRecords(owner, v.Addresses, v.TTL)
			for _, rr := range aRRs {
				zc.insert(owner, dns.TypeA, rr)
			}
			for _, rr := range aaaaRRs {
				zc.insert(owner, dns.TypeAAAA, rr)
			}
		case *model.TXTRecord:
			zc.insert(owner, dns.TypeTXT, txtRecord(owner, v))
		case *model.LBRecord:
			ips, err := localListenerIPs(cfg, v)
			if err != nil {
				return nil, err
			}
			if ips == nil {
				log.WithField("record", owner).Debug("LB record has no listener for the local peer; no DNS answers contributed")
				continue
			}
			aRRs, aaaaRRs := addressRecords(owner, ips, v.TTL)
			for _, rr := range aRRs {
				zc.insert(owner, dns.TypeA, rr)
			}
			for _, rr := range aaaaRRs {
				zc.insert(owner, dns.TypeAAAA, rr)
			}
		default:
			return nil, fmt.Errorf("record %s: unknown record kind %q", owner, rec.Record.Kind())
		}
	}

	return zc, nil
}

// localListenerIPs resolves the LB record's listener naming cfg.Me into
// the concrete IPs that peer advertises, or nil if no listener names the
// local peer (spec.md §4.1: "the LB record contributes no DNS answers on
// this peer").
func localListenerIPs(cfg *model.Config, lb *model.LBRecord) ([]net.IP, error) {
	for _, l := range lb.Listeners {
		if l.PeerName != cfg.Me {
			continue
		}
		addrs, err := l.Addrs(cfg.Peers)
		if err != nil {
			return nil, err
		}
		ips := make([]net.IP, len(addrs))
		for i, a := range addrs {
			ips[i] = a.IP
		}
		return ips, nil
	}
	return nil, nil
}

// addressRecords partitions ips by family and builds the corresponding
// A/AAAA RRs (spec.md §4.1 "A (static)" and "LB" projections share this
// split).
func addressRecords(owner string, ips []net.IP, ttl uint32) (a, aaaa []dns.RR) {
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			a = append(a, &dns.A{
				Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: ttl},
				A:   v4,
			})
			continue
		}
		aaaa = append(aaaa, &dns.AAAA{
			Hdr:  dns.RR_Header{Name: owner, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: ttl},
			AAAA: ip,
		})
	}
	return a, aaaa
}

func txtRecord(owner string, rec *model.TXTRecord) dns.RR {
	return &dns.TXT{
		Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: rec.TTL},
		Txt: append([]string(nil), rec.Value...),
	}
}

func nsRecords(apex string, ns model.NS) []dns.RR {
	out := make([]dns.RR, len(ns.Servers))
	for i, server := range ns.Servers {
		out[i] = &dns.NS{
			Hdr: dns.RR_Header{Name: apex, Rrtype: dns.TypeNS, Class: dns.ClassINET, Ttl: ns.TTL},
			Ns:  server.String(),
		}
	}
	return out
}

func soaRecord(apex string, soa model.SOA) (dns.RR, error) {
	refresh, err := checkedInt32(soa.Refresh)
	if err != nil {
		return nil, fmt.Errorf("soa refresh: %w", err)
	}
	retry, err := checkedInt32(soa.Retry)
	if err != nil {
		return nil, fmt.Errorf("soa retry: %w", err)
	}
	expire, err := checkedInt32(soa.Expire)
	if err != nil {
		return nil, fmt.Errorf("soa expire: %w", err)
	}
	return &dns.SOA{
		Hdr:     dns.RR_Header{Name: apex, Rrtype: dns.TypeSOA, Class: dns.ClassINET, Ttl: soa.MinTTL},
		Ns:      soa.Domain.String(),
		Mbox:    soa.Admin.String(),
		Serial:  soa.Serial,
		Refresh: uint32(refresh),
		Retry:   uint32(retry),
		Expire:  uint32(expire),
		Minttl:  soa.MinTTL,
	}, nil
}

// checkedInt32 mirrors the source's u32->i32 conversion (spec.md §4.1):
// legitimate SOA timer values are always < 2^31, so this only ever fails
// on a malformed configuration, and fails loudly rather than silently
// wrapping.
func checkedInt32(v uint32) (int32, error) {
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("value %d overflows a signed 32-bit integer", v)
	}
	return int32(v), nil
}

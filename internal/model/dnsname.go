package model

import (
	"fmt"

	"github.com/miekg/dns"
)

// DNSName is a parsed, canonicalized domain name. It is comparable and
// orderable, so it can be used directly as a map key or sorted.
type DNSName struct {
	fqdn string // always canonical: lower-cased, dot-terminated.
}

// ParseDNSName parses and canonicalizes s into a DNSName.
func ParseDNSName(s string) (DNSName, error) {
	if s == "" {
		return DNSName{}, fmt.Errorf("parse dns name: empty string")
	}
	if _, ok := dns.IsDomainName(s); !ok {
		return DNSName{}, fmt.Errorf("parse dns name %q: not a valid domain name", s)
	}
	return DNSName{fqdn: dns.CanonicalName(s)}, nil
}

// MustParseDNSName is ParseDNSName but panics on error. Intended for tests
// and constant zone-apex names known at compile time.
func MustParseDNSName(s string) DNSName {
	n, err := ParseDNSName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the canonical, dot-terminated form of the name.
func (n DNSName) String() string {
	return n.fqdn
}

// IsZero reports whether n is the zero value (never parsed).
func (n DNSName) IsZero() bool {
	return n.fqdn == ""
}

// Less orders names lexically by their canonical form, giving DNSName a
// total order suitable for sorted output and deterministic iteration.
func (n DNSName) Less(other DNSName) bool {
	return n.fqdn < other.fqdn
}

// Sub reports whether n is qn itself or a descendant of qn, i.e. whether qn
// names a zone that would be authoritative for n.
func (n DNSName) Sub(qn DNSName) bool {
	return dns.IsSubDomain(qn.fqdn, n.fqdn)
}

func (n DNSName) MarshalYAML() (any, error) {
	return n.fqdn, nil
}

func (n *DNSName) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDNSName(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

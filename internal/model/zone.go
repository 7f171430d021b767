package model

// SOA is the start-of-authority metadata for a zone.
type SOA struct {
	Domain  DNSName `yaml:"domain"`
	Admin   DNSName `yaml:"admin"`
	MinTTL  uint32  `yaml:"minttl"`
	Serial  uint32  `yaml:"serial"`
	Refresh uint32  `yaml:"refresh"`
	Retry   uint32  `yaml:"retry"`
	Expire  uint32  `yaml:"expire"`
}

// NS is the zone's authoritative nameserver set.
type NS struct {
	Servers []DNSName `yaml:"servers"`
	TTL     uint32    `yaml:"ttl"`
}

// Zone is a DNS authority rooted at a domain name: its SOA, NS set, and
// records. soa.serial must be strictly increasing across generations
// while the process runs (spec.md §3 invariant); this module never
// decrements it.
type Zone struct {
	SOA     SOA      `yaml:"soa"`
	NS      NS       `yaml:"ns"`
	Records []Record `yaml:"records"`
}

// BumpSerial increments the zone's serial number by one. Called by
// Zones.ForEachRecordNamed after a health-engine action touched one of the
// zone's records, per the monotonicity invariant and the serial-bump
// policy decided in
// SPEC_FULL.md §13 (bump-by-one per mutating call).
func (z *Zone) BumpSerial() {
	z.SOA.Serial++
}

package model

// HealthCheckSpec is the probe specification embedded in A and LB records
// (spec.md §3). It only specifies a TCP probe (spec.md §4.2): the health
// engine treats the action healthy iff a TCP connection to the target
// succeeds within Timeout.
//
// Port is dialed for probes built from an ARecord, since a bare address has
// no port of its own to probe; it is ignored when the health engine builds
// actions from an LBRecord, where the backend or listener already carries
// one (original_source's health_check.rs left the probe's target addressing
// unspecified, so this is this module's resolution of that gap).
type HealthCheckSpec struct {
	FailuresThreshold uint8    `yaml:"failures"`
	Timeout           Duration `yaml:"timeout"`
	Port              uint16   `yaml:"port,omitempty"`
}

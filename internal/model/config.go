// Package model is the typed, in-memory representation of the cluster
// configuration (spec.md §3): peers, zones, records, listeners. It is
// pure data plus the narrow record mutators the health engine drives.
package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"funkhouse.rs/edgemesh/internal/keys"
)

// ListenConfig describes the two sockets this node binds: the
// authoritative DNS listener and the control-plane HTTP surface
// (SPEC_FULL.md §12).
type ListenConfig struct {
	DNSAddr     string `yaml:"dns_addr"`
	ControlAddr string `yaml:"control_addr"`
}

// Config is the whole cluster configuration as loaded from disk. It is
// loaded once, then owned by the supervisor as a single shared-ownership
// cell protected by mutual exclusion; it is mutated only by the health
// engine and administrative operations (spec.md §3 Lifecycle).
type Config struct {
	AuthKey      keys.Key     `yaml:"auth_key"`
	Listen       ListenConfig `yaml:"listen"`
	Peers        []Peer       `yaml:"peers"`
	Zones        Zones        `yaml:"zones"`
	Me           string       `yaml:"-"`
	ShutdownWait Duration     `yaml:"shutdown_wait"`
}

// Load reads and parses a Config from the YAML document at path, the way
// bhangun-mandau's pkg/config loader does: read the whole file, unmarshal
// into the typed struct, surface any error to the caller.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// Peer looks up a peer by name.
func (c *Config) Peer(name string) (Peer, bool) {
	for _, p := range c.Peers {
		if p.Name() == name {
			return p, true
		}
	}
	return Peer{}, false
}

// SetMe selects which configured peer this process runs as. It fails if
// no peer named name exists, matching the "serve" subcommand's contract
// (spec.md §6: "Exits non-zero if the peer is absent").
func (c *Config) SetMe(name string) error {
	if _, ok := c.Peer(name); !ok {
		return fmt.Errorf("no such peer %q", name)
	}
	c.Me = name
	return nil
}

// Validate checks the invariants spec.md §3 places on a Config: every
// peer is individually well-formed, and every peer named by a listener
// reference actually exists in peers.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Peers))
	for _, p := range c.Peers {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name()] {
			return fmt.Errorf("duplicate peer name %q", p.Name())
		}
		seen[p.Name()] = true
	}

	var invalid error
	c.Zones.Range(func(zoneName DNSName, zone Zone) {
		if invalid != nil {
			return
		}
		for _, rec := range zone.Records {
			lb, ok := rec.Record.(*LBRecord)
			if !ok {
				continue
			}
			for _, l := range lb.Listeners {
				if !seen[l.PeerName] {
					invalid = fmt.Errorf("zone %s: record %s: listener %s: no such peer %q",
						zoneName, rec.Name, l, l.PeerName)
					return
				}
			}
		}
	})
	return invalid
}

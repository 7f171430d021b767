package model

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// zoneEntry is one (name, zone) pair of an ordered zone mapping.
type zoneEntry struct {
	Name DNSName
	Zone Zone
}

// Zones is config.zones: an ordered mapping from zone apex name to Zone
// (spec.md §3). Declaration order from the config file is preserved,
// mirroring the source's BTreeMap<String, Zone> in spirit (a stable,
// deterministic traversal order) without forcing lexical order onto a
// YAML document that already has its own order.
type Zones struct {
	entries []zoneEntry
	index   map[string]int
}

// Get returns the zone named name and whether it was found.
func (z *Zones) Get(name DNSName) (Zone, bool) {
	if z.index == nil {
		return Zone{}, false
	}
	i, ok := z.index[name.String()]
	if !ok {
		return Zone{}, false
	}
	return z.entries[i].Zone, true
}

// Set inserts or replaces the zone named name.
func (z *Zones) Set(name DNSName, zone Zone) {
	if z.index == nil {
		z.index = make(map[string]int)
	}
	if i, ok := z.index[name.String()]; ok {
		z.entries[i].Zone = zone
		return
	}
	z.index[name.String()] = len(z.entries)
	z.entries = append(z.entries, zoneEntry{Name: name, Zone: zone})
}

// Range calls fn for every (name, zone) pair in declaration order.
func (z *Zones) Range(fn func(name DNSName, zone Zone)) {
	for _, e := range z.entries {
		fn(e.Name, e.Zone)
	}
}

// Len returns the number of zones.
func (z *Zones) Len() int {
	return len(z.entries)
}

// ForEachRecordNamed calls fn once for every record, in every zone, whose
// owner name equals name (spec.md §4.2's config-mutation contract scopes a
// health action to "every record in every zone whose name equals the
// action's target name"). If fn reports a mutation for at least one record
// in a zone, that zone's serial is bumped exactly once (SPEC_FULL.md §13),
// regardless of how many of its records matched or mutated.
func (z *Zones) ForEachRecordNamed(name DNSName, fn func(rec Record) bool) {
	for i := range z.entries {
		zone := &z.entries[i].Zone
		mutated := false
		for _, rec := range zone.Records {
			if rec.Name != name {
				continue
			}
			if fn(rec) {
				mutated = true
			}
		}
		if mutated {
			zone.BumpSerial()
		}
	}
}

// Names returns the zone apex names, sorted, for deterministic iteration
// where declaration order doesn't matter (e.g. tests).
func (z *Zones) Names() []string {
	names := make([]string, len(z.entries))
	for i, e := range z.entries {
		names[i] = e.Name.String()
	}
	sort.Strings(names)
	return names
}

func (z Zones) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range z.entries {
		var keyNode, valNode yaml.Node
		if err := keyNode.Encode(e.Name); err != nil {
			return nil, fmt.Errorf("zones: encode zone name %q: %w", e.Name, err)
		}
		if err := valNode.Encode(e.Zone); err != nil {
			return nil, fmt.Errorf("zones: encode zone %q: %w", e.Name, err)
		}
		node.Content = append(node.Content, &keyNode, &valNode)
	}
	return node, nil
}

func (z *Zones) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("zones: expected a mapping, got %v", node.Kind)
	}
	*z = Zones{index: make(map[string]int)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var name DNSName
		if err := keyNode.Decode(&name); err != nil {
			return fmt.Errorf("zones: invalid zone name: %w", err)
		}
		var zone Zone
		if err := valNode.Decode(&zone); err != nil {
			return fmt.Errorf("zones: zone %q: %w", name, err)
		}
		z.Set(name, zone)
	}
	return nil
}

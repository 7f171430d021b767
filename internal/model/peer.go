package model

import (
	"fmt"
	"net"
	"net/url"

	"funkhouse.rs/edgemesh/internal/keys"
)

// Peer describes one member of the cluster: the logical node identified by
// its key's identifier, the IP addresses it advertises, and the control
// endpoint other peers (or operators) can reach it on.
type Peer struct {
	IPs        []net.IP  `yaml:"ips"`
	ControlURL string    `yaml:"control_url"`
	Key        keys.Key  `yaml:"key"`
}

// Name is the peer's logical name: its key's identifier.
func (p Peer) Name() string {
	return p.Key.ID()
}

// Validate checks that a Peer is well formed independent of the rest of
// the config (ControlURL parses, the key carries an identifier).
func (p Peer) Validate() error {
	if p.Key.ID() == "" {
		return fmt.Errorf("peer has no key id")
	}
	if p.ControlURL != "" {
		if _, err := url.Parse(p.ControlURL); err != nil {
			return fmt.Errorf("peer %q: invalid control_url: %w", p.Name(), err)
		}
	}
	return nil
}

// Listener is an abstract (peer_name, port) reference. It resolves against
// a peer table into the concrete socket addresses the named peer listens
// on at that port. It is used both as an LB bind specification and as a
// DNS target that expands to a peer's IPs.
type Listener struct {
	PeerName string
	Port     uint16
}

// String renders the listener in its wire form, "peer_name:port".
func (l Listener) String() string {
	return fmt.Sprintf("%s:%d", l.PeerName, l.Port)
}

// Equal compares listeners by (peer_name, port), the equality contract
// record mutators use for deduplication.
func (l Listener) Equal(other Listener) bool {
	return l.PeerName == other.PeerName && l.Port == other.Port
}

// Addrs resolves l against peers, returning one socket address per IP of
// the named peer, in peer-IP order. It returns an error if no peer named
// l.PeerName exists in peers.
func (l Listener) Addrs(peers []Peer) ([]net.TCPAddr, error) {
	for _, p := range peers {
		if p.Name() != l.PeerName {
			continue
		}
		addrs := make([]net.TCPAddr, len(p.IPs))
		for i, ip := range p.IPs {
			addrs[i] = net.TCPAddr{IP: ip, Port: int(l.Port)}
		}
		return addrs, nil
	}
	return nil, fmt.Errorf("listener %q: no such peer %q", l, l.PeerName)
}

func parseListener(s string) (Listener, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Listener{}, fmt.Errorf("parse listener %q: %w", s, err)
	}
	var port uint16
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return Listener{}, fmt.Errorf("parse listener %q: invalid port %q: %w", s, portStr, err)
	}
	if host == "" {
		return Listener{}, fmt.Errorf("parse listener %q: empty peer name", s)
	}
	return Listener{PeerName: host, Port: port}, nil
}

func (l Listener) MarshalYAML() (any, error) {
	return l.String(), nil
}

func (l *Listener) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := parseListener(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

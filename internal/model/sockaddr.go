package model

import (
	"fmt"
	"net"
)

// SocketAddr is a concrete IP:port pair, used for LB backends. It wraps
// net.TCPAddr with YAML (de)serialization from the "host:port" wire form
// (spec.md §6), since net.TCPAddr has no TextMarshaler of its own.
type SocketAddr struct {
	net.TCPAddr
}

func NewSocketAddr(ip net.IP, port int) SocketAddr {
	return SocketAddr{TCPAddr: net.TCPAddr{IP: ip, Port: port}}
}

func (s SocketAddr) Equal(other SocketAddr) bool {
	return s.IP.Equal(other.IP) && s.Port == other.Port
}

func (s SocketAddr) String() string {
	return s.TCPAddr.String()
}

func ParseSocketAddr(raw string) (SocketAddr, error) {
	host, portStr, err := net.SplitHostPort(raw)
	if err != nil {
		return SocketAddr{}, fmt.Errorf("parse socket address %q: %w", raw, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return SocketAddr{}, fmt.Errorf("parse socket address %q: invalid IP %q", raw, host)
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return SocketAddr{}, fmt.Errorf("parse socket address %q: invalid port %q: %w", raw, portStr, err)
	}
	return NewSocketAddr(ip, port), nil
}

func (s SocketAddr) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s *SocketAddr) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseSocketAddr(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

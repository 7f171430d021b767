package health

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funkhouse.rs/edgemesh/internal/model"
)

func zoneWith(t *testing.T, name model.DNSName, records ...model.Record) *model.Config {
	t.Helper()
	cfg := &model.Config{}
	cfg.Zones.Set(name, model.Zone{
		SOA:     model.SOA{Domain: name, Admin: name, Serial: 1},
		Records: records,
	})
	return cfg
}

func TestAddRemoveConfigDNS(t *testing.T) {
	owner := model.MustParseDNSName("a.example.com.")
	zoneName := model.MustParseDNSName("example.com.")
	a := &model.ARecord{Addresses: []net.IP{net.ParseIP("10.0.0.1")}, TTL: 30}
	cfg := zoneWith(t, zoneName, model.Record{Name: owner, Record: a})

	target := model.NewSocketAddr(net.ParseIP("10.0.0.2"), 0)
	action := newAction(TargetDNS, owner, target, nil, model.HealthCheckSpec{FailuresThreshold: 1})

	addConfig(cfg, action)
	assert.Len(t, a.Addresses, 2, "add_config should append the target IP")

	z, ok := cfg.Zones.Get(zoneName)
	require.True(t, ok)
	assert.EqualValues(t, 2, z.SOA.Serial, "a mutating add_config bumps the zone serial by one")

	removeConfig(cfg, action)
	assert.Len(t, a.Addresses, 1, "remove_config should drop the target IP")

	z, _ = cfg.Zones.Get(zoneName)
	assert.EqualValues(t, 3, z.SOA.Serial)

	// Idempotent: removing again is a no-op on the address list but still
	// counts as a mutating call because the record variant matched.
	removeConfig(cfg, action)
	assert.Len(t, a.Addresses, 1)
}

func TestAddConfigDNSWithListener(t *testing.T) {
	owner := model.MustParseDNSName("svc.example.com.")
	zoneName := model.MustParseDNSName("example.com.")
	lb := &model.LBRecord{LBKind: model.LBKindTCP}
	cfg := zoneWith(t, zoneName, model.Record{Name: owner, Record: lb})

	listener := model.Listener{PeerName: "node-a", Port: 443}
	target := model.NewSocketAddr(net.ParseIP("10.0.0.5"), 0)
	action := newAction(TargetDNS, owner, target, &listener, model.HealthCheckSpec{FailuresThreshold: 1})

	addConfig(cfg, action)
	require.Len(t, lb.Listeners, 1)
	assert.True(t, lb.Listeners[0].Equal(listener))
}

func TestAddRemoveConfigLBBackend(t *testing.T) {
	owner := model.MustParseDNSName("svc.example.com.")
	zoneName := model.MustParseDNSName("example.com.")
	lb := &model.LBRecord{LBKind: model.LBKindTCP}
	cfg := zoneWith(t, zoneName, model.Record{Name: owner, Record: lb})

	backend := model.NewSocketAddr(net.ParseIP("10.0.0.9"), 8080)
	action := newAction(TargetLBBackend, owner, backend, nil, model.HealthCheckSpec{FailuresThreshold: 1})

	addConfig(cfg, action)
	require.Len(t, lb.Backends, 1)
	assert.True(t, lb.Backends[0].Equal(backend))

	removeConfig(cfg, action)
	assert.Len(t, lb.Backends, 0)
}

func TestRemoveConfigLBFrontendAlsoRemovesA(t *testing.T) {
	owner := model.MustParseDNSName("svc.example.com.")
	zoneName := model.MustParseDNSName("example.com.")
	ip := net.ParseIP("10.0.0.7")
	lb := &model.LBRecord{LBKind: model.LBKindTCP}
	a := &model.ARecord{Addresses: []net.IP{ip}, TTL: 30}
	cfg := zoneWith(t, zoneName,
		model.Record{Name: owner, Record: lb},
		model.Record{Name: owner, Record: a},
	)

	listener := model.Listener{PeerName: "node-a", Port: 443}
	lb.Listeners = append(lb.Listeners, listener)

	target := model.NewSocketAddr(ip, 443)
	action := newAction(TargetLBFrontend, owner, target, &listener, model.HealthCheckSpec{FailuresThreshold: 1})

	removeConfig(cfg, action)
	assert.Empty(t, lb.Listeners, "frontend removal drops the listener")
	assert.Empty(t, a.Addresses, "frontend removal also drops the paired A record's IP")

	z, _ := cfg.Zones.Get(zoneName)
	assert.EqualValues(t, 2, z.SOA.Serial, "both records matched but the zone bumps once")
}

func TestAddConfigUnrelatedRecordIsNoop(t *testing.T) {
	owner := model.MustParseDNSName("txt.example.com.")
	zoneName := model.MustParseDNSName("example.com.")
	txt := &model.TXTRecord{Value: []string{"v=1"}}
	cfg := zoneWith(t, zoneName, model.Record{Name: owner, Record: txt})

	action := newAction(TargetLBBackend, owner, model.NewSocketAddr(net.ParseIP("10.0.0.1"), 80), nil, model.HealthCheckSpec{FailuresThreshold: 1})
	addConfig(cfg, action)

	z, _ := cfg.Zones.Get(zoneName)
	assert.EqualValues(t, 1, z.SOA.Serial, "no matching variant means no mutation and no serial bump")
}

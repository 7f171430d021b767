package health

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funkhouse.rs/edgemesh/internal/keys"
	"funkhouse.rs/edgemesh/internal/model"
)

func TestBuildActionsFanOut(t *testing.T) {
	peerKey, err := keys.Generate("node-a")
	require.NoError(t, err)

	cfg := &model.Config{
		Peers: []model.Peer{
			{IPs: []net.IP{net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.2")}, Key: peerKey},
		},
	}

	owner := model.MustParseDNSName("svc.example.com.")
	zoneName := model.MustParseDNSName("example.com.")
	lb := &model.LBRecord{
		LBKind:       model.LBKindTCP,
		Backends:     []model.SocketAddr{model.NewSocketAddr(net.ParseIP("10.1.0.1"), 8080)},
		Listeners:    []model.Listener{{PeerName: "node-a", Port: 443}},
		HealthChecks: []model.HealthCheckSpec{{FailuresThreshold: 3}},
	}
	cfg.Zones.Set(zoneName, model.Zone{
		SOA:     model.SOA{Domain: zoneName, Admin: zoneName},
		Records: []model.Record{{Name: owner, Record: lb}},
	})

	actions, err := BuildActions(cfg)
	require.NoError(t, err)

	var backendActions, frontendActions int
	for _, a := range actions {
		switch a.Class {
		case TargetLBBackend:
			backendActions++
		case TargetLBFrontend:
			frontendActions++
		}
	}
	assert.Equal(t, 1, backendActions, "one backend times one healthcheck spec")
	assert.Equal(t, 2, frontendActions, "two resolved listener IPs times one healthcheck spec")
}

func TestBuildActionsUnknownPeerErrors(t *testing.T) {
	cfg := &model.Config{}
	owner := model.MustParseDNSName("svc.example.com.")
	zoneName := model.MustParseDNSName("example.com.")
	lb := &model.LBRecord{
		Listeners:    []model.Listener{{PeerName: "ghost", Port: 443}},
		HealthChecks: []model.HealthCheckSpec{{FailuresThreshold: 3}},
	}
	cfg.Zones.Set(zoneName, model.Zone{
		Records: []model.Record{{Name: owner, Record: lb}},
	})

	_, err := BuildActions(cfg)
	assert.Error(t, err)
}

package supervisor

import (
	"net"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funkhouse.rs/edgemesh/internal/model"
)

func TestFindZonePicksMostSpecific(t *testing.T) {
	cfg := &model.Config{}
	apex := model.MustParseDNSName("example.com.")
	sub := model.MustParseDNSName("corp.example.com.")
	cfg.Zones.Set(apex, model.Zone{SOA: model.SOA{Domain: apex, Admin: apex}})
	cfg.Zones.Set(sub, model.Zone{SOA: model.SOA{Domain: sub, Admin: sub}})

	store, err := NewStore(cfg)
	require.NoError(t, err)

	zc, ok := findZone(store.Catalog(), "host.corp.example.com.")
	require.True(t, ok)
	assert.Equal(t, sub.String(), zc.Apex)

	zc, ok = findZone(store.Catalog(), "host.example.com.")
	require.True(t, ok)
	assert.Equal(t, apex.String(), zc.Apex)

	_, ok = findZone(store.Catalog(), "host.other.net.")
	assert.False(t, ok)
}

func TestDNSHandlerAnswersARecord(t *testing.T) {
	zoneName := model.MustParseDNSName("example.com.")
	owner := model.MustParseDNSName("host.example.com.")
	cfg := &model.Config{}
	a := &model.ARecord{Addresses: []net.IP{net.ParseIP("10.0.0.5")}, TTL: 30}
	cfg.Zones.Set(zoneName, model.Zone{
		SOA:     model.SOA{Domain: zoneName, Admin: zoneName, Serial: 1},
		Records: []model.Record{{Name: owner, Record: a}},
	})
	store, err := NewStore(cfg)
	require.NoError(t, err)

	h := &dnsHandler{store: store}
	rec := &testResponseWriter{}
	req := new(dns.Msg)
	req.SetQuestion(owner.String(), dns.TypeA)

	h.ServeDNS(rec, req)

	require.NotNil(t, rec.msg)
	require.Len(t, rec.msg.Answer, 1)
	arec, ok := rec.msg.Answer[0].(*dns.A)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5", arec.A.String())
}

func TestDNSHandlerNegativeAnswerCarriesSOA(t *testing.T) {
	zoneName := model.MustParseDNSName("example.com.")
	cfg := &model.Config{}
	cfg.Zones.Set(zoneName, model.Zone{SOA: model.SOA{Domain: zoneName, Admin: zoneName, Serial: 1}})
	store, err := NewStore(cfg)
	require.NoError(t, err)

	h := &dnsHandler{store: store}
	rec := &testResponseWriter{}
	req := new(dns.Msg)
	req.SetQuestion("missing.example.com.", dns.TypeA)

	h.ServeDNS(rec, req)

	require.NotNil(t, rec.msg)
	assert.Empty(t, rec.msg.Answer)
	require.Len(t, rec.msg.Ns, 1)
	_, ok := rec.msg.Ns[0].(*dns.SOA)
	assert.True(t, ok)
}

// testResponseWriter is a minimal dns.ResponseWriter that only captures
// the written message, enough to exercise the handler without a live
// socket.
type testResponseWriter struct {
	msg *dns.Msg
}

func (w *testResponseWriter) WriteMsg(m *dns.Msg) error {
	w.msg = m
	return nil
}
func (w *testResponseWriter) Write(b []byte) (int, error)  { return len(b), nil }
func (w *testResponseWriter) Close() error                 { return nil }
func (w *testResponseWriter) TsigStatus() error            { return nil }
func (w *testResponseWriter) TsigTimersOnly(bool)          {}
func (w *testResponseWriter) Hijack()                      {}
func (w *testResponseWriter) LocalAddr() net.Addr           { return &net.TCPAddr{} }
func (w *testResponseWriter) RemoteAddr() net.Addr          { return &net.TCPAddr{} }

package health

import (
	"fmt"

	"funkhouse.rs/edgemesh/internal/model"
)

// BuildActions derives the full set of probe actions from cfg's zones
// (spec.md §4.2): one action per (address, health check) pair on an
// ARecord, and per (backend, health check) and (resolved listener, health
// check) pair on an LBRecord.
func BuildActions(cfg *model.Config) ([]*Action, error) {
	var actions []*Action
	var err error

	cfg.Zones.Range(func(zoneName model.DNSName, zone model.Zone) {
		if err != nil {
			return
		}
		for _, rec := range zone.Records {
			switch v := rec.Record.(type) {
			case *model.ARecord:
				for _, ip := range v.Addresses {
					for _, spec := range v.HealthChecks {
						target := model.NewSocketAddr(ip, int(spec.Port))
						actions = append(actions, newAction(TargetDNS, rec.Name, target, nil, spec))
					}
				}
			case *model.LBRecord:
				for _, backend := range v.Backends {
					for _, spec := range v.HealthChecks {
						actions = append(actions, newAction(TargetLBBackend, rec.Name, backend, nil, spec))
					}
				}
				for _, l := range v.Listeners {
					l := l
					addrs, aerr := l.Addrs(cfg.Peers)
					if aerr != nil {
						err = fmt.Errorf("zone %s: record %s: listener %s: %w", zoneName, rec.Name, l, aerr)
						return
					}
					for _, addr := range addrs {
						for _, spec := range v.HealthChecks {
							target := model.NewSocketAddr(addr.IP, addr.Port)
							actions = append(actions, newAction(TargetLBFrontend, rec.Name, target, &l, spec))
						}
					}
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return actions, nil
}

package health

import "funkhouse.rs/edgemesh/internal/model"

// ConfigStore is the narrow interface the health engine needs from the
// supervisor's shared configuration cell: run fn with exclusive access,
// then (per the supervisor's own contract, not this package's concern)
// rebuild and swap the DNS answer catalog. fn must never perform network
// I/O or block — spec.md §5's bounded-critical-section invariant.
type ConfigStore interface {
	Mutate(fn func(cfg *model.Config))
}

// addConfig and removeConfig implement spec.md §4.2's mutation table. Both
// functions are applied to every record, in every zone, whose name equals
// the action's record name (Zones.ForEachRecordNamed), relying on the
// mutators' own no-op contract (model.Record) to make the class-specific
// calls meaningless on variants they don't apply to — which is exactly how
// the table's "DNS" row touches both an ARecord and an LBRecord sharing a
// name, and how the "LBFrontend" row's removal also touches an ARecord.

func addConfig(cfg *model.Config, a *Action) {
	cfg.Zones.ForEachRecordNamed(a.RecordName, func(rec model.Record) bool {
		switch a.Class {
		case TargetDNS:
			applicable := false
			if rec.Record.Kind() == model.KindA {
				rec.AddIP(a.Target.IP)
				applicable = true
			}
			if a.Listener != nil && rec.Record.Kind() == model.KindLB {
				rec.AddListener(*a.Listener)
				applicable = true
			}
			return applicable
		case TargetLBFrontend:
			if rec.Record.Kind() != model.KindLB {
				return false
			}
			rec.AddListener(*a.Listener)
			return true
		case TargetLBBackend:
			if rec.Record.Kind() != model.KindLB {
				return false
			}
			rec.AddBackend(a.Target)
			return true
		default:
			return false
		}
	})
}

func removeConfig(cfg *model.Config, a *Action) {
	cfg.Zones.ForEachRecordNamed(a.RecordName, func(rec model.Record) bool {
		switch a.Class {
		case TargetDNS:
			if rec.Record.Kind() != model.KindA {
				return false
			}
			rec.RemoveIP(a.Target.IP)
			return true
		case TargetLBFrontend:
			// Edge case (spec.md §4.2): removing a frontend also removes
			// the matching IP from any A record sharing the name.
			applicable := false
			if rec.Record.Kind() == model.KindLB && a.Listener != nil {
				rec.RemoveListener(*a.Listener)
				applicable = true
			}
			if rec.Record.Kind() == model.KindA {
				rec.RemoveIP(a.Target.IP)
				applicable = true
			}
			return applicable
		case TargetLBBackend:
			if rec.Record.Kind() != model.KindLB {
				return false
			}
			rec.RemoveBackend(a.Target)
			return true
		default:
			return false
		}
	})
}

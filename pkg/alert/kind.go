// Package alert defines the alert data model shared by every detector, the
// alert store, and the coherence façade: the eight detection kinds, the
// severity levels, the per-kind detail payloads, and the dismissal record.
package alert

// Kind identifies which of the eight detection routines produced an alert.
type Kind string

const (
	KindConflict  Kind = "conflict"
	KindDuplicate Kind = "duplicate"
	KindGap       Kind = "gap"
	KindDrift     Kind = "drift"
	KindTemporal  Kind = "temporal"
	KindAllergy   Kind = "allergy"
	KindDose      Kind = "dose"
	KindCritical  Kind = "critical"
)

// AllKinds lists every kind in detector execution order (spec.md §4, §5).
func AllKinds() []Kind {
	return []Kind{
		KindConflict, KindDuplicate, KindGap, KindDrift,
		KindTemporal, KindAllergy, KindDose, KindCritical,
	}
}

func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the eight known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindConflict, KindDuplicate, KindGap, KindDrift,
		KindTemporal, KindAllergy, KindDose, KindCritical:
		return true
	default:
		return false
	}
}

// Symmetric reports whether alerts of this kind relate an unordered pair of
// entities, so dedup must treat (A,B) and (B,A) as identical (spec.md §3, §4.11).
func (k Kind) Symmetric() bool {
	switch k {
	case KindConflict, KindDuplicate, KindTemporal, KindAllergy:
		return true
	default:
		return false
	}
}

// MinEntityIDs returns the minimum number of entity_ids every alert of this
// kind must carry (spec.md §3).
func (k Kind) MinEntityIDs() int {
	if k.Symmetric() {
		return 2
	}
	return 1
}

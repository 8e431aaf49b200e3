package alert

// Counts holds one non-negative count per detection kind (spec.md §3 "Alert
// Counts").
type Counts struct {
	Conflict  int
	Duplicate int
	Gap       int
	Drift     int
	Temporal  int
	Allergy   int
	Dose      int
	Critical  int
}

// Add increments the counter for kind by 1. Unknown kinds are ignored —
// callers only ever pass kinds sourced from a real Detail.Kind().
func (c *Counts) Add(kind Kind) {
	switch kind {
	case KindConflict:
		c.Conflict++
	case KindDuplicate:
		c.Duplicate++
	case KindGap:
		c.Gap++
	case KindDrift:
		c.Drift++
	case KindTemporal:
		c.Temporal++
	case KindAllergy:
		c.Allergy++
	case KindDose:
		c.Dose++
	case KindCritical:
		c.Critical++
	}
}

// Total returns the sum of all per-kind counts (testable property 9).
func (c Counts) Total() int {
	return c.Conflict + c.Duplicate + c.Gap + c.Drift +
		c.Temporal + c.Allergy + c.Dose + c.Critical
}

package alert

// Severity is the two-tier (plus informational) urgency level of an alert.
// It is never set directly by a detector — it is derived from the alert's
// Detail payload so that invariant 3 (severity is a function of kind, and for
// Drift, of sub-variant) cannot be violated by construction (see New).
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityStandard Severity = "standard"
	SeverityCritical Severity = "critical"
)

func (s Severity) String() string { return string(s) }

// Critical reports whether s requires the two-step dismissal protocol and
// persistent surfacing (spec.md §4.12, Glossary "Critical alert").
func (s Severity) Critical() bool { return s == SeverityCritical }

package alert

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Alert is the engine's unit of clinically relevant anomaly. Severity is
// never assigned independently of Detail — New derives it, so invariant 3
// (severity is a function of kind) cannot be violated by a detector.
type Alert struct {
	ID                uuid.UUID
	Kind              Kind
	Severity          Severity
	EntityIDs         []uuid.UUID
	SourceDocumentIDs []uuid.UUID
	Message           string
	Detail            Detail
	DetectedAt        time.Time
	Surfaced          bool
	Dismissed         bool
	Dismissal         *Dismissal
}

// New constructs an Alert from a detector's findings, validating the
// entity-id and source-document invariants from spec.md §3. detectedAt is
// passed in rather than read from the clock so detectors stay deterministic
// and testable.
func New(detail Detail, entityIDs, sourceDocumentIDs []uuid.UUID, message string, detectedAt time.Time) (*Alert, error) {
	if detail == nil {
		return nil, fmt.Errorf("alert: detail must not be nil")
	}
	kind := detail.Kind()
	if !kind.Valid() {
		return nil, fmt.Errorf("alert: %w: %q", ErrInvalidKind, kind)
	}
	if len(entityIDs) < kind.MinEntityIDs() {
		return nil, fmt.Errorf("alert: kind %q requires at least %d entity id(s), got %d", kind, kind.MinEntityIDs(), len(entityIDs))
	}
	if len(sourceDocumentIDs) == 0 {
		return nil, fmt.Errorf("alert: source_document_ids must be non-empty")
	}

	return &Alert{
		ID:                uuid.New(),
		Kind:              kind,
		Severity:          detail.Severity(),
		EntityIDs:         entityIDs,
		SourceDocumentIDs: sourceDocumentIDs,
		Message:           message,
		Detail:            detail,
		DetectedAt:        detectedAt,
	}, nil
}

// SortedEntityIDSet returns the sorted, de-duplicated string form of a's
// entity ids — the dedup/dismissal key used throughout spec.md §4.11 and
// §3 ("sorted unique entity-id set").
func (a *Alert) SortedEntityIDSet() []string {
	return SortedIDSet(a.EntityIDs)
}

// SortedIDSet de-duplicates and sorts a slice of ids into their canonical
// string form, used as the key component for both in-memory and persisted
// dedup (spec.md §3, §4.11).
func SortedIDSet(ids []uuid.UUID) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		s := id.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Dismiss applies the single-step dismissal protocol (spec.md §4.11
// dismiss). Fails for Critical alerts, which require
// DismissCritical.
func (a *Alert) Dismiss(d Dismissal) error {
	if a.Severity.Critical() {
		return ErrCriticalRequiresTwoStep
	}
	d.TwoStepConfirmed = false
	a.applyDismissal(d)
	return nil
}

// DismissCritical applies the two-step dismissal protocol required for
// Critical alerts (spec.md §4.11 dismiss_critical).
func (a *Alert) DismissCritical(d Dismissal) error {
	if !a.Severity.Critical() {
		return ErrNotCriticalAlert
	}
	if !d.TwoStepConfirmed {
		return ErrTwoStepNotConfirmed
	}
	d.Actor = ActorPatient
	a.applyDismissal(d)
	return nil
}

func (a *Alert) applyDismissal(d Dismissal) {
	a.Dismissed = true
	a.Dismissal = &d
}

// Surface marks the alert as having been shown to a consumer at least once
// (spec.md §3 "Surfaced"). Idempotent: called by internal/store on every
// read path that returns alerts for display.
func (a *Alert) Surface() {
	a.Surfaced = true
}

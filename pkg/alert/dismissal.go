package alert

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Actor names who performed a dismissal (spec.md §3 Dismissal).
type Actor string

const (
	ActorPatient              Actor = "patient"
	ActorProfessionalFeedback Actor = "professional_feedback"
)

// Dismissal records how and why an alert was dismissed.
type Dismissal struct {
	At               time.Time
	Reason           string
	Actor            Actor
	TwoStepConfirmed bool
}

// DismissedRecord is the persistent tuple spec.md §3 defines: the key for
// re-detection suppression is (kind, sorted unique entity-id set), independent
// of which specific Alert instance originally carried that kind/entity-set
// combination.
type DismissedRecord struct {
	Kind      Kind
	EntityIDs []uuid.UUID
	Dismissal Dismissal
}

// Key returns the canonical lookup key "<kind>:<id1>,<id2>,..." for the
// dismissal log (spec.md §3, §4.11). Two records with the same kind and the
// same set of entity ids (in any order, with any duplicates) produce the
// same key.
func (r DismissedRecord) Key() string {
	return DismissalKey(r.Kind, r.EntityIDs)
}

// DismissalKey computes the dismissal-log lookup key for a kind and entity
// id set without requiring a DismissedRecord or Alert value — used by the
// repository implementations (pkg/repository/memory, pkg/repository/badger)
// to key the dismissal log (spec.md §4.11 step (a)).
func DismissalKey(kind Kind, entityIDs []uuid.UUID) string {
	var b strings.Builder
	b.WriteString(string(kind))
	b.WriteByte(':')
	b.WriteString(strings.Join(SortedIDSet(entityIDs), ","))
	return b.String()
}

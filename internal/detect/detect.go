// Package detect implements the eight detection routines (spec.md §4.3–
// §4.10). Every detector shares the same signature — Input in, candidate
// alerts out — and the same conventions: provenance via SourceDocumentIDs,
// message construction via pkg/message, symmetric-pair dedup where the
// kind calls for it, and data-quality skip-and-log-at-debug semantics
// (detectors never panic, never return an error for a malformed record).
package detect

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/refdata"
	"github.com/localhealth/coherence-engine/pkg/repository"
)

// Input is the shared argument every detector takes: read access to
// repositories and reference data, the triggering document (nil for a
// full scan), and the clock/window parameters a detector needs to stay
// deterministic and testable.
type Input struct {
	DocumentID            *uuid.UUID
	Repos                 repository.Set
	RefData               *refdata.Data
	CorrelationWindowDays int
	Now                   time.Time
}

// Detector is the common signature every one of the eight routines
// satisfies (spec.md §2 "Eight detection routines sharing the same
// signature").
type Detector func(ctx context.Context, in Input) ([]*alert.Alert, error)

// All maps each of the eight kinds to its detector. A map has no order;
// the façade's analyze_* calls run them in Order (spec.md §5 "Ordering").
func All() map[alert.Kind]Detector {
	return map[alert.Kind]Detector{
		alert.KindConflict:  Conflict,
		alert.KindDuplicate: Duplicate,
		alert.KindGap:       Gap,
		alert.KindDrift:     Drift,
		alert.KindTemporal:  Temporal,
		alert.KindAllergy:   Allergy,
		alert.KindDose:      Dose,
		alert.KindCritical:  Critical,
	}
}

// Order is All's keys in spec.md §4 execution order.
var Order = []alert.Kind{
	alert.KindConflict, alert.KindDuplicate, alert.KindGap, alert.KindDrift,
	alert.KindTemporal, alert.KindAllergy, alert.KindDose, alert.KindCritical,
}

// sourceDocs builds a deduplicated, non-empty source-document-id list: the
// triggering document (if any) plus whichever entity-owning documents the
// detector observed (spec.md §3 "at least one element corresponds to the
// document that triggered detection").
func sourceDocs(docID *uuid.UUID, observed ...uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(observed)+1)
	out := make([]uuid.UUID, 0, len(observed)+1)
	add := func(id uuid.UUID) {
		if id == uuid.Nil {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if docID != nil {
		add(*docID)
	}
	for _, id := range observed {
		add(id)
	}
	return out
}

// newAlert constructs an alert via alert.New, logging and dropping the
// candidate on the rare case a detector assembled an invariant-violating
// payload (defensive: alert.New should never reject well-formed detector
// output, but a detector bug here must not panic).
func newAlert(log *slog.Logger, detail alert.Detail, entityIDs, srcDocs []uuid.UUID, msg string, at time.Time) *alert.Alert {
	a, err := alert.New(detail, entityIDs, srcDocs, msg, at)
	if err != nil {
		log.Debug("dropping invalid candidate alert", "kind", detail.Kind(), "error", err)
		return nil
	}
	return a
}

// isPRN reports whether a medication is taken as-needed rather than on a
// fixed schedule — either via its explicit AsNeeded flag or a frequency
// string that normalizes to "prn" (spec.md §9 Open Question, resolved in
// DESIGN.md: PRN is excluded from CONFLICT checks against a scheduled
// prescription of the same generic).
func isPRN(m repository.Medication) bool {
	if m.AsNeeded {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(m.Frequency)) {
	case "prn", "as needed", "as-needed":
		return true
	default:
		return false
	}
}

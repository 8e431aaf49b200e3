package detect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/message"
	"github.com/localhealth/coherence-engine/pkg/repository"
)

// onsetDateLayout is the ISO-8601 calendar date format spec.md §6 mandates
// for all dates.
const onsetDateLayout = "2006-01-02"

// Temporal implements spec.md §4.7: symptoms whose onset falls within the
// correlation window after a medication start, dose change, or procedure.
// Direction is strictly symptom-after-event.
func Temporal(ctx context.Context, in Input) ([]*alert.Alert, error) {
	log := slog.With("detector", "temporal")
	window := time.Duration(in.CorrelationWindowDays) * 24 * time.Hour

	symptoms, err := in.Repos.Symptoms.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("temporal: list symptoms: %w", err)
	}
	activeMeds, err := in.Repos.Medications.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("temporal: list active medications: %w", err)
	}
	procedures, err := in.Repos.Procedures.List(ctx, repository.Filter{})
	if err != nil {
		return nil, fmt.Errorf("temporal: list procedures: %w", err)
	}

	var out []*alert.Alert

	for _, sy := range symptoms {
		onset, err := time.Parse(onsetDateLayout, sy.OnsetDateRaw)
		if err != nil {
			log.Debug("skipping symptom with unparseable onset date", "symptom_id", sy.ID, "raw", sy.OnsetDateRaw)
			continue
		}

		for _, m := range activeMeds {
			if within(onset, m.StartDate, window) {
				out = append(out, buildTemporalAlert(log, in, alert.TemporalMedicationStarted, sy, onset, m.StartDate, m.ID, m.DisplayName()))
			}

			entries, err := in.Repos.Medications.DoseHistory(ctx, m.ID)
			if err != nil {
				return nil, fmt.Errorf("temporal: dose history: %w", err)
			}
			for _, e := range entries {
				if within(onset, e.ChangedAt, window) {
					out = append(out, buildTemporalAlert(log, in, alert.TemporalDoseChanged, sy, onset, e.ChangedAt, m.ID, m.DisplayName()))
				}
			}
		}

		for _, p := range procedures {
			if within(onset, p.Date, window) {
				out = append(out, buildTemporalAlert(log, in, alert.TemporalProcedurePerformed, sy, onset, p.Date, p.ID, p.Name))
			}
		}
	}

	return filterNilAlerts(out), nil
}

// within reports whether onset falls strictly after event (or same day)
// and no more than window later (spec.md §4.7 "0 ≤ D − S ≤ W").
func within(onset, event time.Time, window time.Duration) bool {
	if event.IsZero() {
		return false
	}
	delta := onset.Sub(event)
	return delta >= 0 && delta <= window
}

func buildTemporalAlert(log *slog.Logger, in Input, variant alert.TemporalVariant, sy repository.Symptom, onset, event time.Time, relatedID uuid.UUID, relatedName string) *alert.Alert {
	detail := alert.TemporalDetail{
		Variant:           variant,
		SymptomID:         sy.ID,
		SymptomName:       sy.Name,
		RelatedEntityID:   relatedID,
		RelatedEntityName: relatedName,
		DaysBetween:       int(onset.Sub(event).Hours() / 24),
	}
	a := newAlert(log, detail, []uuid.UUID{sy.ID, relatedID}, sourceDocs(in.DocumentID, sy.DocumentID), "", in.Now)
	if a == nil {
		return nil
	}
	a.Message = message.Build(detail)
	return a
}

func filterNilAlerts(in []*alert.Alert) []*alert.Alert {
	out := make([]*alert.Alert, 0, len(in))
	for _, a := range in {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

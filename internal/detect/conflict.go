package detect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/message"
	"github.com/localhealth/coherence-engine/pkg/normalize"
	"github.com/localhealth/coherence-engine/pkg/repository"
)

// Conflict implements spec.md §4.3: active medications newly associated
// with the triggering document that resolve to the same generic as another
// currently-active medication from a different prescriber, differing in
// dose, frequency, or route.
func Conflict(ctx context.Context, in Input) ([]*alert.Alert, error) {
	log := slog.With("detector", "conflict")

	newMeds, err := in.Repos.Medications.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("conflict: list medications: %w", err)
	}
	activeMeds, err := in.Repos.Medications.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("conflict: list active medications: %w", err)
	}

	var out []*alert.Alert
	for _, newMed := range newMeds {
		if newMed.Status != "active" {
			continue
		}
		genericA := normalize.ResolveGeneric(newMed.Generic, newMed.BrandName, in.RefData.ResolveGeneric)
		if genericA == "" {
			log.Debug("skipping medication with unresolvable generic", "medication_id", newMed.ID)
			continue
		}

		for _, other := range activeMeds {
			if other.ID == newMed.ID {
				continue
			}
			genericB := normalize.ResolveGeneric(other.Generic, other.BrandName, in.RefData.ResolveGeneric)
			if genericB != genericA {
				continue
			}
			if samePrescriber(newMed.Prescriber, other.Prescriber) {
				continue
			}
			if isPRN(newMed) || isPRN(other) {
				continue
			}

			for _, field := range conflictingFields(newMed, other) {
				detail := alert.ConflictDetail{
					Generic:     genericA,
					Field:       field,
					MedicationA: medRef(newMed),
					MedicationB: medRef(other),
					PrescriberA: newMed.Prescriber,
					PrescriberB: other.Prescriber,
				}
				a := newAlert(log, detail,
					[]uuid.UUID{newMed.ID, other.ID}, sourceDocs(in.DocumentID, newMed.DocumentID, other.DocumentID),
					"", in.Now)
				if a == nil {
					continue
				}
				a.Message = message.Build(detail)
				out = append(out, a)
			}
		}
	}
	return out, nil
}

// samePrescriber reports whether two prescriber strings identify the same
// person. An empty/unknown prescriber never matches anything, including
// another unknown one (spec.md §4.3 "unknown prescriber counts as
// different").
func samePrescriber(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func conflictingFields(a, b repository.Medication) []alert.ConflictField {
	var fields []alert.ConflictField
	if !normalize.DosesEqual(a.Dose, b.Dose) {
		fields = append(fields, alert.ConflictFieldDose)
	}
	if !normalize.FrequenciesEqual(a.Frequency, b.Frequency) {
		fields = append(fields, alert.ConflictFieldFrequency)
	}
	if !strings.EqualFold(strings.TrimSpace(a.Route), strings.TrimSpace(b.Route)) {
		fields = append(fields, alert.ConflictFieldRoute)
	}
	return fields
}

func medRef(m repository.Medication) alert.MedicationRef {
	return alert.MedicationRef{
		ID:          m.ID,
		DisplayName: m.DisplayName(),
		Dose:        m.Dose,
		Frequency:   m.Frequency,
		Route:       m.Route,
	}
}

package detect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/message"
	"github.com/localhealth/coherence-engine/pkg/repository"
)

// Gap implements spec.md §4.5's two sub-rules: diagnoses with no related
// active medication, and non-OTC medications with neither a documented
// reason nor a related diagnosis.
func Gap(ctx context.Context, in Input) ([]*alert.Alert, error) {
	log := slog.With("detector", "gap")

	diagnoses, err := in.Repos.Diagnoses.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("gap: list diagnoses: %w", err)
	}
	medications, err := in.Repos.Medications.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("gap: list medications: %w", err)
	}
	activeMeds, err := in.Repos.Medications.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("gap: list active medications: %w", err)
	}
	activeDiagnoses, err := in.Repos.Diagnoses.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("gap: list active diagnoses: %w", err)
	}

	var out []*alert.Alert

	for _, dg := range diagnoses {
		if dg.Status != "active" {
			continue
		}
		if hasRelatedMedication(dg, activeMeds) {
			continue
		}
		detail := alert.GapDetail{
			Variant:       alert.GapDiagnosisWithoutTreatment,
			DiagnosisID:   dg.ID,
			DiagnosisName: dg.Name,
		}
		a := newAlert(log, detail, []uuid.UUID{dg.ID}, sourceDocs(in.DocumentID, dg.DocumentID), "", in.Now)
		if a == nil {
			continue
		}
		a.Message = message.Build(detail)
		out = append(out, a)
	}

	for _, m := range medications {
		if m.Status != "active" || m.IsOverTheCounter {
			continue
		}
		if strings.TrimSpace(m.ReasonStart) != "" {
			continue
		}
		if hasRelatedDiagnosis(m, activeDiagnoses) {
			continue
		}
		detail := alert.GapDetail{
			Variant:        alert.GapMedicationWithoutDiagnosis,
			MedicationID:   m.ID,
			MedicationName: m.DisplayName(),
		}
		a := newAlert(log, detail, []uuid.UUID{m.ID}, sourceDocs(in.DocumentID, m.DocumentID), "", in.Now)
		if a == nil {
			continue
		}
		a.Message = message.Build(detail)
		out = append(out, a)
	}

	return out, nil
}

func hasRelatedMedication(dg repository.Diagnosis, meds []repository.Medication) bool {
	for _, m := range meds {
		if relates(m.Condition, dg.Name) || relates(m.ReasonStart, dg.Name) {
			return true
		}
	}
	return false
}

func hasRelatedDiagnosis(m repository.Medication, diagnoses []repository.Diagnosis) bool {
	for _, dg := range diagnoses {
		if relates(m.Condition, dg.Name) || relates(m.ReasonStart, dg.Name) {
			return true
		}
	}
	return false
}

// relates implements spec.md §4.5's relation test: case-insensitive
// substring, either direction.
func relates(text, name string) bool {
	text, name = strings.ToLower(strings.TrimSpace(text)), strings.ToLower(strings.TrimSpace(name))
	if text == "" || name == "" {
		return false
	}
	return strings.Contains(text, name) || strings.Contains(name, text)
}

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

// Drift implements spec.md §4.6: medication status/dose drift against
// prior records of the same generic, and diagnosis status drift against
// prior records of the same name.
func Drift(ctx context.Context, in Input) ([]*alert.Alert, error) {
	log := slog.With("detector", "drift")

	newMeds, err := in.Repos.Medications.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("drift: list medications: %w", err)
	}
	allMeds, err := in.Repos.Medications.List(ctx, repository.Filter{})
	if err != nil {
		return nil, fmt.Errorf("drift: list all medications: %w", err)
	}
	newDiagnoses, err := in.Repos.Diagnoses.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("drift: list diagnoses: %w", err)
	}
	allDiagnoses, err := in.Repos.Diagnoses.List(ctx, repository.Filter{})
	if err != nil {
		return nil, fmt.Errorf("drift: list all diagnoses: %w", err)
	}

	var out []*alert.Alert

	for _, m := range newMeds {
		generic := normalize.ResolveGeneric(m.Generic, m.BrandName, in.RefData.ResolveGeneric)
		if generic == "" {
			log.Debug("skipping medication with unresolvable generic", "medication_id", m.ID)
			continue
		}

		statusEmitted, doseEmitted := false, false
		for _, prior := range allMeds {
			if prior.ID == m.ID || prior.DocumentID == m.DocumentID {
				continue
			}
			priorGeneric := normalize.ResolveGeneric(prior.Generic, prior.BrandName, in.RefData.ResolveGeneric)
			if priorGeneric != generic {
				continue
			}

			if !statusEmitted && prior.Status == "active" && m.Status == "stopped" && strings.TrimSpace(m.ReasonStop) == "" {
				detail := alert.DriftDetail{Variant: alert.DriftMedicationStatus, MedicationID: m.ID, Generic: generic,
					PriorStatus: prior.Status, NewStatus: m.Status}
				if a := emitDrift(log, detail, m, in); a != nil {
					out = append(out, a)
					statusEmitted = true
				}
			}

			if !doseEmitted && !normalize.DosesEqual(m.Dose, prior.Dose) {
				reasoned, err := hasReasonedDoseChange(ctx, in, m.ID)
				if err != nil {
					return nil, err
				}
				if !reasoned {
					priorMg, _ := normalize.ParseDoseToMg(prior.Dose)
					newMg, _ := normalize.ParseDoseToMg(m.Dose)
					detail := alert.DriftDetail{Variant: alert.DriftMedicationDose, MedicationID: m.ID, Generic: generic,
						PriorDoseMg: priorMg, NewDoseMg: newMg}
					if a := emitDrift(log, detail, m, in); a != nil {
						out = append(out, a)
						doseEmitted = true
					}
				}
			}
		}
	}

	for _, dg := range newDiagnoses {
		emitted := false
		for _, prior := range allDiagnoses {
			if emitted || prior.ID == dg.ID || prior.DocumentID == dg.DocumentID {
				continue
			}
			if !strings.EqualFold(strings.TrimSpace(prior.Name), strings.TrimSpace(dg.Name)) {
				continue
			}
			if prior.Status == dg.Status {
				continue
			}
			detail := alert.DriftDetail{Variant: alert.DriftDiagnosisStatus, DiagnosisID: dg.ID,
				DiagnosisName: dg.Name, PriorStatus: prior.Status, NewStatus: dg.Status}
			a := newAlert(log, detail, []uuid.UUID{dg.ID}, sourceDocs(in.DocumentID, dg.DocumentID, prior.DocumentID), "", in.Now)
			if a == nil {
				continue
			}
			a.Message = message.Build(detail)
			out = append(out, a)
			emitted = true
		}
	}

	return out, nil
}

func emitDrift(log *slog.Logger, detail alert.DriftDetail, m repository.Medication, in Input) *alert.Alert {
	a := newAlert(log, detail, []uuid.UUID{m.ID}, sourceDocs(in.DocumentID, m.DocumentID), "", in.Now)
	if a == nil {
		return nil
	}
	a.Message = message.Build(detail)
	return a
}

func hasReasonedDoseChange(ctx context.Context, in Input, medicationID uuid.UUID) (bool, error) {
	entries, err := in.Repos.Medications.DoseHistory(ctx, medicationID)
	if err != nil {
		return false, fmt.Errorf("drift: dose history: %w", err)
	}
	for _, e := range entries {
		if strings.TrimSpace(e.Reason) != "" {
			return true, nil
		}
	}
	return false, nil
}

package detect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/message"
	"github.com/localhealth/coherence-engine/pkg/normalize"
	"github.com/localhealth/coherence-engine/pkg/repository"
)

// Dose implements spec.md §4.9: a newly associated medication's extracted
// dose outside its generic's single-dose reference range.
func Dose(ctx context.Context, in Input) ([]*alert.Alert, error) {
	log := slog.With("detector", "dose")

	newMeds, err := in.Repos.Medications.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("dose: list medications: %w", err)
	}

	var out []*alert.Alert
	for _, m := range newMeds {
		generic := normalize.ResolveGeneric(m.Generic, m.BrandName, in.RefData.ResolveGeneric)
		if generic == "" {
			log.Debug("skipping medication with unresolvable generic", "medication_id", m.ID)
			continue
		}

		doseRange, ok := in.RefData.GetDoseRange(generic)
		if !ok {
			log.Debug("skipping medication with unknown dose range", "generic", generic)
			continue
		}

		mg, ok := normalize.ParseDoseToMg(m.Dose)
		if !ok {
			log.Debug("skipping medication with unparseable dose", "medication_id", m.ID, "dose", m.Dose)
			continue
		}

		if mg >= doseRange.MinSingleMg && mg <= doseRange.MaxSingleMg {
			continue
		}

		detail := alert.DoseDetail{
			MedicationID:    m.ID,
			Generic:         generic,
			ExtractedDoseMg: mg,
			MinSingleDoseMg: doseRange.MinSingleMg,
			MaxSingleDoseMg: doseRange.MaxSingleMg,
			MaxDailyDoseMg:  doseRange.MaxDailyMg,
			Route:           m.Route,
			IsNarcotic:      m.IsNarcotic,
			Schedule:        m.Schedule,
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

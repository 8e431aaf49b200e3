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

// Duplicate implements spec.md §4.4: active medications that resolve to
// the same generic but present under different display names. Symmetric
// pair dedup applied (spec.md §4.4, §4.11).
func Duplicate(ctx context.Context, in Input) ([]*alert.Alert, error) {
	log := slog.With("detector", "duplicate")

	newMeds, err := in.Repos.Medications.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("duplicate: list medications: %w", err)
	}
	activeMeds, err := in.Repos.Medications.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("duplicate: list active medications: %w", err)
	}

	var candidates []*alert.Alert
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
			if strings.EqualFold(newMed.DisplayName(), other.DisplayName()) {
				continue
			}

			detail := alert.DuplicateDetail{
				Generic:     genericA,
				MedicationA: medRef(newMed),
				MedicationB: medRef(other),
			}
			a := newAlert(log, detail,
				[]uuid.UUID{newMed.ID, other.ID}, sourceDocs(in.DocumentID, newMed.DocumentID, other.DocumentID),
				"", in.Now)
			if a == nil {
				continue
			}
			a.Message = message.Build(detail)
			candidates = append(candidates, a)
		}
	}
	return dedupSymmetricPairs(candidates), nil
}

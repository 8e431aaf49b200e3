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

// Allergy implements spec.md §4.8: every ingredient of a newly associated
// medication checked against every active allergy, first by exact match
// then by drug-family match. Always Critical. Symmetric-pair dedup applied
// over (medication-id, allergy-id).
func Allergy(ctx context.Context, in Input) ([]*alert.Alert, error) {
	log := slog.With("detector", "allergy")

	allergies, err := in.Repos.Allergies.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("allergy: list allergies: %w", err)
	}
	newMeds, err := in.Repos.Medications.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("allergy: list medications: %w", err)
	}

	var candidates []*alert.Alert

	for _, m := range newMeds {
		ingredients, err := ingredientSet(ctx, in, m)
		if err != nil {
			return nil, err
		}

		for _, ingredient := range ingredients {
			for _, al := range allergies {
				allergen := strings.ToLower(strings.TrimSpace(al.Allergen))
				if allergen == "" {
					continue
				}

				var matchType alert.AllergyMatchType
				switch {
				case ingredient == allergen:
					matchType = alert.AllergyMatchExact
				case in.RefData.IsSameFamily(allergen, ingredient):
					matchType = alert.AllergyMatchDrugFamily
				default:
					continue
				}

				detail := alert.AllergyDetail{
					AllergyID:    al.ID,
					Allergen:     al.Allergen,
					MedicationID: m.ID,
					Ingredient:   ingredient,
					MatchType:    matchType,
				}
				a := newAlert(log, detail, []uuid.UUID{m.ID, al.ID}, sourceDocs(in.DocumentID, m.DocumentID, al.DocumentID), "", in.Now)
				if a == nil {
					continue
				}
				a.Message = message.Build(detail)
				candidates = append(candidates, a)
			}
		}
	}

	return dedupSymmetricPairs(candidates), nil
}

// ingredientSet builds a medication's lowercased ingredient set: its
// resolved generic, plus (for compound medications) each compound
// ingredient's resolved mapping (spec.md §4.8).
func ingredientSet(ctx context.Context, in Input, m repository.Medication) ([]string, error) {
	var out []string

	generic := normalize.ResolveGeneric(m.Generic, m.BrandName, in.RefData.ResolveGeneric)
	if generic != "" {
		out = append(out, generic)
	}

	compounds, err := in.Repos.Medications.CompoundIngredients(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("allergy: compound ingredients: %w", err)
	}
	for _, c := range compounds {
		out = append(out, strings.ToLower(c.Resolved()))
	}

	return out, nil
}

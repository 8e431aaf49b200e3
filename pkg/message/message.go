// Package message builds patient-facing strings for every alert kind and
// enforces the calm-language linguistic contract (spec.md §4.13, §8
// properties 1–2). Every Build function is a deterministic, side-effect-free
// string builder from structured arguments — no detector or store code ever
// assembles patient text itself.
package message

import (
	"fmt"

	"github.com/localhealth/coherence-engine/pkg/alert"
)

// Build renders the patient-facing message for an alert detail. The result
// is guaranteed (by the package's own tests, and enforceable at runtime via
// Validate) to satisfy the calm-language contract.
func Build(d alert.Detail) string {
	switch v := d.(type) {
	case alert.ConflictDetail:
		return buildConflict(v)
	case alert.DuplicateDetail:
		return buildDuplicate(v)
	case alert.GapDetail:
		return buildGap(v)
	case alert.DriftDetail:
		return buildDrift(v)
	case alert.TemporalDetail:
		return buildTemporal(v)
	case alert.AllergyDetail:
		return buildAllergy(v)
	case alert.DoseDetail:
		return buildDose(v)
	case alert.CriticalDetail:
		return buildCritical(v)
	default:
		return "You may want to review a recent change to your health record with your care team."
	}
}

func buildConflict(d alert.ConflictDetail) string {
	prescriberA, prescriberB := d.PrescriberA, d.PrescriberB
	if prescriberA == "" {
		prescriberA = "an unknown prescriber"
	}
	if prescriberB == "" {
		prescriberB = "an unknown prescriber"
	}
	return fmt.Sprintf(
		"Two active prescriptions for %s differ in %s: %s (%s), prescribed by %s, and %s (%s), prescribed by %s. You may want to verify this with your prescribers.",
		d.Generic, d.Field,
		d.MedicationA.DisplayName, d.MedicationA.Dose, prescriberA,
		d.MedicationB.DisplayName, d.MedicationB.Dose, prescriberB,
	)
}

func buildDuplicate(d alert.DuplicateDetail) string {
	return fmt.Sprintf(
		"%s and %s appear to be the same medication (%s) listed under different names. Please verify with your pharmacist whether both are still needed.",
		d.MedicationA.DisplayName, d.MedicationB.DisplayName, d.Generic,
	)
}

func buildGap(d alert.GapDetail) string {
	switch d.Variant {
	case alert.GapDiagnosisWithoutTreatment:
		return fmt.Sprintf(
			"Your record lists %s without a related treatment. Might be worth asking your care team if anything is needed.",
			d.DiagnosisName,
		)
	default:
		return fmt.Sprintf(
			"Your record lists %s without a documented reason. Might be worth asking your prescriber what it's treating.",
			d.MedicationName,
		)
	}
}

func buildDrift(d alert.DriftDetail) string {
	switch d.Variant {
	case alert.DriftMedicationStatus:
		return fmt.Sprintf(
			"%s was previously active and now shows as stopped with no reason recorded. You may want to confirm this change with your prescriber.",
			d.Generic,
		)
	case alert.DriftMedicationDose:
		return fmt.Sprintf(
			"The dose for %s appears to have changed without a recorded reason. Please verify the current dose with your prescriber.",
			d.Generic,
		)
	default:
		return fmt.Sprintf(
			"The status of %s has changed from %s to %s. Might be worth mentioning at your next visit.",
			d.DiagnosisName, d.PriorStatus, d.NewStatus,
		)
	}
}

func buildTemporal(d alert.TemporalDetail) string {
	var cause string
	switch d.Variant {
	case alert.TemporalDoseChanged:
		cause = fmt.Sprintf("a dose change to %s", d.RelatedEntityName)
	case alert.TemporalProcedurePerformed:
		cause = fmt.Sprintf("the procedure %s", d.RelatedEntityName)
	default:
		cause = fmt.Sprintf("starting %s", d.RelatedEntityName)
	}
	return fmt.Sprintf(
		"%s began %d day(s) after %s. You may want to mention this timing to your care team.",
		d.SymptomName, d.DaysBetween, cause,
	)
}

func buildAllergy(d alert.AllergyDetail) string {
	return fmt.Sprintf(
		"%s may be related to your recorded allergy to %s. Please contact your doctor or pharmacist before your next dose so they can review this.",
		d.Ingredient, d.Allergen,
	)
}

func buildDose(d alert.DoseDetail) string {
	msg := fmt.Sprintf(
		"The recorded dose for %s (%.1f mg) falls outside the usual single-dose range of %.1f–%.1f mg. You may want to verify this with your prescriber.",
		d.Generic, d.ExtractedDoseMg, d.MinSingleDoseMg, d.MaxSingleDoseMg,
	)
	if d.IsNarcotic {
		msg += fmt.Sprintf(" %s is a controlled substance (schedule %s); please verify this dose carefully.", d.Generic, d.Schedule)
	}
	return msg
}

func buildCritical(d alert.CriticalDetail) string {
	return fmt.Sprintf(
		"Your %s result (%.1f %s) is outside the critical range. This may need prompt attention — please contact your care team soon.",
		d.TestName, d.Value, d.Unit,
	)
}

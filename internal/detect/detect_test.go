package detect

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/refdata"
	"github.com/localhealth/coherence-engine/pkg/repository"
	"github.com/localhealth/coherence-engine/pkg/repository/memory"
)

type aliasRecord struct {
	Brand   string `json:"brand"`
	Generic string `json:"generic"`
}

func testRefData(t *testing.T) *refdata.Data {
	t.Helper()
	dir := t.TempDir()

	aliases := []aliasRecord{
		{Brand: "Lipitor", Generic: "atorvastatin"},
		{Brand: "Glucophage", Generic: "metformin"},
	}
	aliasJSON, err := json.Marshal(aliases)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alias.json"), aliasJSON, 0o644))

	ranges := []refdata.DoseRange{
		{Generic: "levothyroxine", MinSingleMg: 0.025, MaxSingleMg: 0.2, MaxDailyMg: 0.2, Route: "oral"},
	}
	rangeJSON, err := json.Marshal(ranges)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dose_ranges.json"), rangeJSON, 0o644))

	families := [][]string{{"penicillin", "amoxicillin"}}
	famJSON, err := json.Marshal(families)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drug_families.json"), famJSON, 0o644))

	d, err := refdata.Load(dir)
	require.NoError(t, err)
	return d
}

func baseInput(t *testing.T, repos repository.Set, docID *uuid.UUID) Input {
	return Input{
		DocumentID:            docID,
		Repos:                 repos,
		RefData:               testRefData(t),
		CorrelationWindowDays: 14,
		Now:                   time.Now(),
	}
}

func TestConflict_DifferentPrescriberSameGenericDifferentDose(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	m1 := store.AddMedication(repository.Medication{DocumentID: docID, Generic: "metformin", Dose: "500 mg",
		Frequency: "twice daily", Route: "oral", Status: "active", Prescriber: "Dr. A"})
	store.AddMedication(repository.Medication{DocumentID: uuid.New(), Generic: "metformin", Dose: "1000 mg",
		Frequency: "twice daily", Route: "oral", Status: "active", Prescriber: "Dr. B"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Conflict(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.KindConflict, alerts[0].Kind)
	assert.Contains(t, alerts[0].EntityIDs, m1.ID)
}

func TestConflict_PRNExcluded(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddMedication(repository.Medication{DocumentID: docID, Generic: "metformin", Dose: "500 mg",
		Frequency: "twice daily", Route: "oral", Status: "active", Prescriber: "Dr. A", AsNeeded: true})
	store.AddMedication(repository.Medication{DocumentID: uuid.New(), Generic: "metformin", Dose: "1000 mg",
		Frequency: "twice daily", Route: "oral", Status: "active", Prescriber: "Dr. B"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Conflict(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestConflict_SamePrescriberNoAlert(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddMedication(repository.Medication{DocumentID: docID, Generic: "metformin", Dose: "500 mg",
		Status: "active", Prescriber: "Dr. A"})
	store.AddMedication(repository.Medication{DocumentID: uuid.New(), Generic: "metformin", Dose: "1000 mg",
		Status: "active", Prescriber: "Dr. A"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Conflict(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDuplicate_SameGenericDifferentDisplayName(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddMedication(repository.Medication{DocumentID: docID, BrandName: "Lipitor", Status: "active"})
	store.AddMedication(repository.Medication{DocumentID: uuid.New(), Generic: "atorvastatin", Status: "active"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Duplicate(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.KindDuplicate, alerts[0].Kind)
}

func TestGap_DiagnosisWithoutTreatment(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddDiagnosis(repository.Diagnosis{DocumentID: docID, Name: "Hypertension", Status: "active"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Gap(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.SeverityInfo, alerts[0].Severity)
}

func TestGap_MedicationWithoutDiagnosisSkipsOTC(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddMedication(repository.Medication{DocumentID: docID, Generic: "ibuprofen", Status: "active", IsOverTheCounter: true})
	store.AddMedication(repository.Medication{DocumentID: docID, Generic: "metformin", Status: "active"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Gap(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.GapMedicationWithoutDiagnosis, alerts[0].Detail.(alert.GapDetail).Variant)
}

func TestDrift_MedicationStoppedWithoutReason(t *testing.T) {
	store := memory.New()
	priorDoc, newDoc := uuid.New(), uuid.New()
	store.AddMedication(repository.Medication{DocumentID: priorDoc, Generic: "metformin", Status: "active", Dose: "500mg"})
	store.AddMedication(repository.Medication{DocumentID: newDoc, Generic: "metformin", Status: "stopped", Dose: "500mg"})

	in := baseInput(t, store.Set(), &newDoc)
	alerts, err := Drift(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.DriftMedicationStatus, alerts[0].Detail.(alert.DriftDetail).Variant)
}

func TestDrift_DoseChangeWithoutReason(t *testing.T) {
	store := memory.New()
	priorDoc, newDoc := uuid.New(), uuid.New()
	store.AddMedication(repository.Medication{DocumentID: priorDoc, Generic: "metformin", Status: "active", Dose: "500mg"})
	store.AddMedication(repository.Medication{DocumentID: newDoc, Generic: "metformin", Status: "active", Dose: "1000mg"})

	in := baseInput(t, store.Set(), &newDoc)
	alerts, err := Drift(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.DriftMedicationDose, alerts[0].Detail.(alert.DriftDetail).Variant)
}

func TestDrift_DiagnosisStatusChange(t *testing.T) {
	store := memory.New()
	priorDoc, newDoc := uuid.New(), uuid.New()
	store.AddDiagnosis(repository.Diagnosis{DocumentID: priorDoc, Name: "Asthma", Status: "active"})
	store.AddDiagnosis(repository.Diagnosis{DocumentID: newDoc, Name: "Asthma", Status: "resolved"})

	in := baseInput(t, store.Set(), &newDoc)
	alerts, err := Drift(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.SeverityInfo, alerts[0].Severity)
}

func TestTemporal_SymptomAfterMedicationStart(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.AddMedication(repository.Medication{DocumentID: uuid.New(), Generic: "metformin", Status: "active", StartDate: start})
	store.AddSymptom(repository.Symptom{DocumentID: docID, Name: "nausea", OnsetDateRaw: "2026-01-05"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Temporal(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 4, alerts[0].Detail.(alert.TemporalDetail).DaysBetween)
}

func TestTemporal_SkipsUnparseableOnset(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddSymptom(repository.Symptom{DocumentID: docID, Name: "fatigue", OnsetDateRaw: "sometime recently"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Temporal(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAllergy_ExactMatch(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddAllergy(repository.Allergy{Allergen: "metformin", Status: "active"})
	store.AddMedication(repository.Medication{DocumentID: docID, Generic: "metformin", Status: "active"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Allergy(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, alert.AllergyMatchExact, alerts[0].Detail.(alert.AllergyDetail).MatchType)
}

func TestAllergy_FamilyMatch(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddAllergy(repository.Allergy{Allergen: "penicillin", Status: "active"})
	store.AddMedication(repository.Medication{DocumentID: docID, Generic: "amoxicillin", Status: "active"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Allergy(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.AllergyMatchDrugFamily, alerts[0].Detail.(alert.AllergyDetail).MatchType)
}

func TestDose_OutsideRange(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddMedication(repository.Medication{DocumentID: docID, Generic: "levothyroxine", Dose: "500 mcg", Status: "active"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Dose(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.SeverityStandard, alerts[0].Severity)
}

func TestDose_WithinRangeNoAlert(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddMedication(repository.Medication{DocumentID: docID, Generic: "levothyroxine", Dose: "100 mcg", Status: "active"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Dose(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestCritical_OnlyCriticalFlags(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.AddLabResult(repository.LabResult{DocumentID: docID, TestName: "Potassium", AbnormalFlag: "critical_high"})
	store.AddLabResult(repository.LabResult{DocumentID: docID, TestName: "Sodium", AbnormalFlag: "high"})

	in := baseInput(t, store.Set(), &docID)
	alerts, err := Critical(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.SeverityCritical, alerts[0].Severity)
}

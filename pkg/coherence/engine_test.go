package coherence

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
	"github.com/localhealth/coherence-engine/pkg/config"
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

	aliases := []aliasRecord{{Brand: "Glucophage", Generic: "metformin"}}
	aliasJSON, err := json.Marshal(aliases)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alias.json"), aliasJSON, 0o644))

	ranges := []refdata.DoseRange{
		{Generic: "metformin", MinSingleMg: 500, MaxSingleMg: 2000, MaxDailyMg: 2000, Route: "oral"},
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

func testEngine(t *testing.T, store *memory.Store) *Engine {
	t.Helper()
	e := NewEngine(config.Defaults(), store.Set(), testRefData(t))
	t.Cleanup(e.Close)
	return e
}

// TestAnalyzeNewDocument_ConflictByPrescriber implements spec.md §8 S1.
func TestAnalyzeNewDocument_ConflictByPrescriber(t *testing.T) {
	mem := memory.New()
	mem.AddMedication(repository.Medication{DocumentID: uuid.New(), Generic: "metformin", Dose: "500 mg",
		Frequency: "twice daily", Route: "oral", Status: "active", Prescriber: "Dr. A"})
	docID := uuid.New()
	mem.AddMedication(repository.Medication{DocumentID: docID, Generic: "metformin", Dose: "1000 mg",
		Frequency: "twice daily", Route: "oral", Status: "active", Prescriber: "Dr. B"})

	e := testEngine(t, mem)
	res, err := e.AnalyzeNewDocument(context.Background(), docID)
	require.NoError(t, err)

	// CONFLICT runs first. GAP also flags the new record (no documented
	// reason) and DRIFT flags its dose change (no recorded reason).
	require.Len(t, res.NewAlerts, 3)
	a := res.NewAlerts[0]
	assert.Equal(t, alert.KindConflict, a.Kind)
	assert.Equal(t, alert.SeverityStandard, a.Severity)
	assert.Contains(t, a.Message, "Dr. A")
	assert.Contains(t, a.Message, "Dr. B")
	assert.Equal(t, 1, res.Counts.Conflict)
	assert.Equal(t, 3, res.Counts.Total())
}

// TestAnalyzeNewDocument_AllergyViaFamily implements spec.md §8 S6.
func TestAnalyzeNewDocument_AllergyViaFamily(t *testing.T) {
	mem := memory.New()
	mem.AddAllergy(repository.Allergy{Allergen: "penicillin", Severity: "severe", Status: "active"})
	docID := uuid.New()
	mem.AddMedication(repository.Medication{DocumentID: docID, Generic: "amoxicillin", Dose: "500 mg",
		Frequency: "three times daily", Route: "oral", Status: "active"})

	e := testEngine(t, mem)
	res, err := e.AnalyzeNewDocument(context.Background(), docID)
	require.NoError(t, err)

	// GAP runs before ALLERGY and also flags the new medication, which has
	// no documented reason.
	require.Len(t, res.NewAlerts, 2)
	assert.Equal(t, alert.KindAllergy, res.NewAlerts[1].Kind)
	assert.True(t, res.NewAlerts[1].Severity.Critical())
}

func TestAnalyzeNewDocument_IsIdempotentAcrossRuns(t *testing.T) {
	mem := memory.New()
	mem.AddAllergy(repository.Allergy{Allergen: "penicillin", Severity: "severe", Status: "active"})
	docID := uuid.New()
	mem.AddMedication(repository.Medication{DocumentID: docID, Generic: "amoxicillin", Dose: "500 mg",
		Frequency: "three times daily", Route: "oral", Status: "active"})

	e := testEngine(t, mem)
	ctx := context.Background()

	first, err := e.AnalyzeNewDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, first.NewAlerts, 2) // GAP and ALLERGY

	second, err := e.AnalyzeNewDocument(ctx, docID)
	require.NoError(t, err)
	assert.Empty(t, second.NewAlerts)
}

func TestAnalyzeNewDocumentAsync_DeliversResult(t *testing.T) {
	mem := memory.New()
	mem.AddAllergy(repository.Allergy{Allergen: "penicillin", Severity: "severe", Status: "active"})
	docID := uuid.New()
	mem.AddMedication(repository.Medication{DocumentID: docID, Generic: "amoxicillin", Dose: "500 mg",
		Frequency: "three times daily", Route: "oral", Status: "active"})

	e := testEngine(t, mem)

	select {
	case res := <-e.AnalyzeNewDocumentAsync(docID):
		assert.Len(t, res.NewAlerts, 2) // GAP and ALLERGY
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async analysis result")
	}
}

func TestDismissAlert_AndGetActiveAlerts(t *testing.T) {
	mem := memory.New()
	docID := uuid.New()
	mem.AddMedication(repository.Medication{DocumentID: uuid.New(), Generic: "metformin", Dose: "500 mg",
		Frequency: "twice daily", Route: "oral", Status: "active", Prescriber: "Dr. A"})
	mem.AddMedication(repository.Medication{DocumentID: docID, Generic: "metformin", Dose: "1000 mg",
		Frequency: "twice daily", Route: "oral", Status: "active", Prescriber: "Dr. B"})

	e := testEngine(t, mem)
	ctx := context.Background()
	res, err := e.AnalyzeNewDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, res.NewAlerts, 3) // CONFLICT, GAP and DRIFT

	active := e.GetActiveAlerts(nil)
	require.Len(t, active, 3)

	err = e.DismissAlert(ctx, active[0].ID, "reviewed", alert.ActorPatient)
	require.NoError(t, err)
	assert.Len(t, e.GetActiveAlerts(nil), 2)
}

func TestDismissCriticalAlert_RequiresTwoStep(t *testing.T) {
	mem := memory.New()
	mem.AddAllergy(repository.Allergy{Allergen: "penicillin", Severity: "severe", Status: "active"})
	docID := uuid.New()
	mem.AddMedication(repository.Medication{DocumentID: docID, Generic: "amoxicillin", Dose: "500 mg",
		Frequency: "three times daily", Route: "oral", Status: "active"})

	e := testEngine(t, mem)
	ctx := context.Background()
	res, err := e.AnalyzeNewDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, res.NewAlerts, 2)
	critical := res.NewAlerts[1] // NewAlerts[0] is the Info GAP alert

	err = e.DismissAlert(ctx, critical.ID, "n/a", alert.ActorPatient)
	assert.ErrorIs(t, err, ErrCriticalRequiresTwoStep)

	err = e.DismissCriticalAlert(ctx, critical.ID, "n/a", false)
	assert.ErrorIs(t, err, ErrTwoStepNotConfirmed)

	err = e.DismissCriticalAlert(ctx, critical.ID, "doctor reviewed", true)
	require.NoError(t, err)
	assert.Empty(t, e.GetCriticalAlerts())
}

func TestStats_ReflectsActiveCounts(t *testing.T) {
	mem := memory.New()
	docID := uuid.New()
	mem.AddAllergy(repository.Allergy{Allergen: "penicillin", Severity: "severe", Status: "active"})
	mem.AddMedication(repository.Medication{DocumentID: docID, Generic: "amoxicillin", Dose: "500 mg",
		Frequency: "three times daily", Route: "oral", Status: "active"})

	e := testEngine(t, mem)
	_, err := e.AnalyzeNewDocument(context.Background(), docID)
	require.NoError(t, err)

	stats := e.Stats()
	assert.Equal(t, 1, stats.Active.Allergy)
	assert.Equal(t, 2, stats.Active.Total()) // GAP and ALLERGY
	assert.Equal(t, 14, stats.ConfigStats.CorrelationWindowDays)
}

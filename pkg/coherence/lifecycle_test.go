package coherence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localhealth/coherence-engine/pkg/alert"
)

func TestBuildEmergencyActions_CriticalLabPrompts(t *testing.T) {
	detail := alert.CriticalDetail{
		LabResultID: uuid.New(), TestName: "Potassium", Value: 6.8, Unit: "mmol/L",
		AbnormalFlag: "critical_high",
	}
	a, err := alert.New(detail, []uuid.UUID{detail.LabResultID}, []uuid.UUID{uuid.New()}, "please verify this result soon, prompt attention advised", time.Now())
	require.NoError(t, err)

	actions := BuildEmergencyActions([]*alert.Alert{a})
	require.Len(t, actions, 1)
	action := actions[0]

	assert.True(t, action.AppointmentPriority)
	assert.Equal(t, 2, action.RequiredDismissalSteps)
	assert.Equal(t, "Has your doctor addressed this?", action.Prompt1)
	assert.Equal(t, "Yes, my doctor has seen this result", action.Prompt2)
}

func TestBuildEmergencyActions_AllergyPrompts(t *testing.T) {
	detail := alert.AllergyDetail{
		AllergyID: uuid.New(), Allergen: "penicillin", MedicationID: uuid.New(),
		Ingredient: "amoxicillin", MatchType: alert.AllergyMatchDrugFamily,
	}
	a, err := alert.New(detail, []uuid.UUID{detail.MedicationID, detail.AllergyID}, []uuid.UUID{uuid.New()}, "please verify with your care team", time.Now())
	require.NoError(t, err)

	actions := BuildEmergencyActions([]*alert.Alert{a})
	require.Len(t, actions, 1)
	assert.Contains(t, actions[0].Prompt1, "doctor or pharmacist")
}

func TestBuildEmergencyActions_SkipsNonCriticalAlerts(t *testing.T) {
	detail := alert.GapDetail{Variant: alert.GapDiagnosisWithoutTreatment, DiagnosisName: "Type 2 Diabetes"}
	a, err := alert.New(detail, []uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()}, "you may want to discuss this", time.Now())
	require.NoError(t, err)

	actions := BuildEmergencyActions([]*alert.Alert{a})
	assert.Empty(t, actions)
}

package alert

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SeverityDerivedFromDetail(t *testing.T) {
	now := time.Now()
	a, b := uuid.New(), uuid.New()

	cases := []struct {
		name string
		d    Detail
		want Severity
	}{
		{"conflict", ConflictDetail{}, SeverityStandard},
		{"duplicate", DuplicateDetail{}, SeverityStandard},
		{"gap", GapDetail{}, SeverityInfo},
		{"drift-medication-status", DriftDetail{Variant: DriftMedicationStatus}, SeverityStandard},
		{"drift-medication-dose", DriftDetail{Variant: DriftMedicationDose}, SeverityStandard},
		{"drift-diagnosis-status", DriftDetail{Variant: DriftDiagnosisStatus}, SeverityInfo},
		{"temporal", TemporalDetail{}, SeverityStandard},
		{"allergy", AllergyDetail{}, SeverityCritical},
		{"dose", DoseDetail{}, SeverityStandard},
		{"critical", CriticalDetail{}, SeverityCritical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			al, err := New(tc.d, []uuid.UUID{a, b}, []uuid.UUID{uuid.New()}, "msg", now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, al.Severity)
			assert.Equal(t, tc.d.Kind(), al.Kind)
		})
	}
}

func TestNew_RejectsShortEntityIDsForSymmetricKinds(t *testing.T) {
	_, err := New(ConflictDetail{}, []uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()}, "msg", time.Now())
	assert.Error(t, err)
}

func TestNew_AllowsSingleEntityForAsymmetricKinds(t *testing.T) {
	al, err := New(GapDetail{}, []uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()}, "msg", time.Now())
	require.NoError(t, err)
	assert.Len(t, al.EntityIDs, 1)
}

func TestNew_RequiresSourceDocuments(t *testing.T) {
	_, err := New(GapDetail{}, []uuid.UUID{uuid.New()}, nil, "msg", time.Now())
	assert.Error(t, err)
}

func TestDismiss_CriticalRequiresTwoStep(t *testing.T) {
	al, err := New(CriticalDetail{}, []uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()}, "msg", time.Now())
	require.NoError(t, err)

	err = al.Dismiss(Dismissal{Reason: "addressed", Actor: ActorPatient})
	assert.ErrorIs(t, err, ErrCriticalRequiresTwoStep)
	assert.False(t, al.Dismissed)
	assert.Nil(t, al.Dismissal)
}

func TestDismissCritical_RequiresConfirmation(t *testing.T) {
	al, err := New(CriticalDetail{}, []uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()}, "msg", time.Now())
	require.NoError(t, err)

	err = al.DismissCritical(Dismissal{Reason: "addressed", TwoStepConfirmed: false})
	assert.ErrorIs(t, err, ErrTwoStepNotConfirmed)
	assert.False(t, al.Dismissed)

	err = al.DismissCritical(Dismissal{Reason: "addressed", TwoStepConfirmed: true})
	require.NoError(t, err)
	assert.True(t, al.Dismissed)
	require.NotNil(t, al.Dismissal)
	assert.True(t, al.Dismissal.TwoStepConfirmed)
	assert.Equal(t, ActorPatient, al.Dismissal.Actor)
}

func TestDismissCritical_RejectsNonCriticalAlert(t *testing.T) {
	al, err := New(GapDetail{}, []uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()}, "msg", time.Now())
	require.NoError(t, err)

	err = al.DismissCritical(Dismissal{TwoStepConfirmed: true})
	assert.ErrorIs(t, err, ErrNotCriticalAlert)
}

func TestSortedEntityIDSet_DeduplicatesAndSorts(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	al, err := New(ConflictDetail{}, []uuid.UUID{b, a, a}, []uuid.UUID{uuid.New()}, "msg", time.Now())
	require.NoError(t, err)

	set := al.SortedEntityIDSet()
	assert.Len(t, set, 2)
	assert.True(t, set[0] < set[1])
}

func TestDismissalKey_OrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	k1 := DismissalKey(KindAllergy, []uuid.UUID{a, b})
	k2 := DismissalKey(KindAllergy, []uuid.UUID{b, a})
	assert.Equal(t, k1, k2)
}

func TestCounts_Total(t *testing.T) {
	var c Counts
	c.Add(KindConflict)
	c.Add(KindConflict)
	c.Add(KindAllergy)
	c.Add(KindCritical)
	assert.Equal(t, 2, c.Conflict)
	assert.Equal(t, 1, c.Allergy)
	assert.Equal(t, 4, c.Total())
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
)

// Filter restricts a list query to a single triggering document. A nil
// DocumentID means "full scan" — every detector accepts this shape so the
// façade can dispatch the same call for analyze_new_document and
// analyze_full (spec.md §4, §6).
type Filter struct {
	DocumentID *uuid.UUID
}

// ForDocument builds a Filter scoped to a single document.
func ForDocument(id uuid.UUID) Filter { return Filter{DocumentID: &id} }

// MedicationRepository reads medication records and dose-change/compound
// sub-records (spec.md §6).
type MedicationRepository interface {
	ListActive(ctx context.Context) ([]Medication, error)
	List(ctx context.Context, filter Filter) ([]Medication, error)
	DoseHistory(ctx context.Context, medicationID uuid.UUID) ([]DoseChangeEntry, error)
	CompoundIngredients(ctx context.Context, medicationID uuid.UUID) ([]CompoundIngredient, error)
}

// LabResultRepository reads lab results, filterable to new items per
// document (spec.md §6).
type LabResultRepository interface {
	List(ctx context.Context, filter Filter) ([]LabResult, error)
}

// DiagnosisRepository reads diagnosis records.
type DiagnosisRepository interface {
	ListActive(ctx context.Context) ([]Diagnosis, error)
	List(ctx context.Context, filter Filter) ([]Diagnosis, error)
}

// AllergyRepository reads allergy records.
type AllergyRepository interface {
	ListActive(ctx context.Context) ([]Allergy, error)
}

// ProcedureRepository reads procedure records.
type ProcedureRepository interface {
	List(ctx context.Context, filter Filter) ([]Procedure, error)
}

// SymptomRepository reads symptom records, additionally queryable by date
// range (spec.md §6).
type SymptomRepository interface {
	List(ctx context.Context, filter Filter) ([]Symptom, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Symptom, error)
}

// ProfessionalRepository fetches prescriber/clinician records by id.
type ProfessionalRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*Professional, error)
}

// AlertRepository is the persistence half of the alert store: the
// dismissal log. is_dismissed/dismiss key on (kind, entity-id set), never on
// a specific Alert instance (spec.md §3, §4.11).
type AlertRepository interface {
	IsDismissed(ctx context.Context, kind alert.Kind, entityIDs []uuid.UUID) (bool, error)
	Dismiss(ctx context.Context, record alert.DismissedRecord) error
}

// Set bundles every repository the engine consumes. Detectors and the
// façade take a Set rather than eight separate parameters.
type Set struct {
	Medications   MedicationRepository
	Labs          LabResultRepository
	Diagnoses     DiagnosisRepository
	Allergies     AllergyRepository
	Procedures    ProcedureRepository
	Symptoms      SymptomRepository
	Professionals ProfessionalRepository
	Alerts        AlertRepository
}

// Package memory provides an in-memory fake of every repository.* interface,
// for use in detector, store, and façade tests in place of the externally
// owned encrypted store (spec.md §1). It is the engine's analogue of the
// teacher repo's database test helpers, minus any real database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/repository"
)

// data is the shared, mutex-guarded backing store. Each repository.*
// interface is implemented by a distinct thin wrapper type below (Go gives
// one method set per named type, so one wrapper per interface keeps
// "List"/"ListActive" from colliding across entities on a single receiver).
type data struct {
	mu sync.RWMutex

	medications   []repository.Medication
	doseHistory   map[uuid.UUID][]repository.DoseChangeEntry
	compounds     map[uuid.UUID][]repository.CompoundIngredient
	labs          []repository.LabResult
	diagnoses     []repository.Diagnosis
	allergies     []repository.Allergy
	procedures    []repository.Procedure
	symptoms      []repository.Symptom
	professionals map[uuid.UUID]repository.Professional
	dismissed     map[string]alert.DismissedRecord
}

// Store is the in-memory fixture builder and repository.Set factory.
type Store struct{ d *data }

// New returns an empty Store.
func New() *Store {
	return &Store{d: &data{
		doseHistory:   make(map[uuid.UUID][]repository.DoseChangeEntry),
		compounds:     make(map[uuid.UUID][]repository.CompoundIngredient),
		professionals: make(map[uuid.UUID]repository.Professional),
		dismissed:     make(map[string]alert.DismissedRecord),
	}}
}

// Set returns a repository.Set backed by this Store's data.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Medications:   medicationRepo{s.d},
		Labs:          labRepo{s.d},
		Diagnoses:     diagnosisRepo{s.d},
		Allergies:     allergyRepo{s.d},
		Procedures:    procedureRepo{s.d},
		Symptoms:      symptomRepo{s.d},
		Professionals: professionalRepo{s.d},
		Alerts:        alertRepo{s.d},
	}
}

// --- fixture builders (test setup only) ------------------------------------

func (s *Store) AddMedication(m repository.Medication) repository.Medication {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.d.medications = append(s.d.medications, m)
	return m
}

func (s *Store) AddDoseHistory(medicationID uuid.UUID, entries ...repository.DoseChangeEntry) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.d.doseHistory[medicationID] = append(s.d.doseHistory[medicationID], entries...)
}

func (s *Store) AddCompoundIngredients(medicationID uuid.UUID, ingredients ...repository.CompoundIngredient) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.d.compounds[medicationID] = append(s.d.compounds[medicationID], ingredients...)
}

func (s *Store) AddLabResult(l repository.LabResult) repository.LabResult {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	s.d.labs = append(s.d.labs, l)
	return l
}

func (s *Store) AddDiagnosis(dg repository.Diagnosis) repository.Diagnosis {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if dg.ID == uuid.Nil {
		dg.ID = uuid.New()
	}
	s.d.diagnoses = append(s.d.diagnoses, dg)
	return dg
}

func (s *Store) AddAllergy(a repository.Allergy) repository.Allergy {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.d.allergies = append(s.d.allergies, a)
	return a
}

func (s *Store) AddProcedure(p repository.Procedure) repository.Procedure {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.d.procedures = append(s.d.procedures, p)
	return p
}

func (s *Store) AddSymptom(sy repository.Symptom) repository.Symptom {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if sy.ID == uuid.Nil {
		sy.ID = uuid.New()
	}
	s.d.symptoms = append(s.d.symptoms, sy)
	return sy
}

func (s *Store) AddProfessional(p repository.Professional) repository.Professional {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.d.professionals[p.ID] = p
	return p
}

// PreDismiss seeds the dismissal log directly, for tests that assert
// suppression of an already-dismissed (kind, entity set) pair without
// going through a full Dismiss/DismissCritical call (spec.md §4.11 step a).
func (s *Store) PreDismiss(record alert.DismissedRecord) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.d.dismissed[record.Key()] = record
}

// --- medicationRepo: repository.MedicationRepository ------------------------

type medicationRepo struct{ d *data }

func (r medicationRepo) ListActive(ctx context.Context) ([]repository.Medication, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]repository.Medication, 0, len(r.d.medications))
	for _, m := range r.d.medications {
		if m.Status == "active" {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r medicationRepo) List(ctx context.Context, filter repository.Filter) ([]repository.Medication, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]repository.Medication, 0, len(r.d.medications))
	for _, m := range r.d.medications {
		if filter.DocumentID != nil && m.DocumentID != *filter.DocumentID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r medicationRepo) DoseHistory(ctx context.Context, medicationID uuid.UUID) ([]repository.DoseChangeEntry, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return append([]repository.DoseChangeEntry(nil), r.d.doseHistory[medicationID]...), nil
}

func (r medicationRepo) CompoundIngredients(ctx context.Context, medicationID uuid.UUID) ([]repository.CompoundIngredient, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return append([]repository.CompoundIngredient(nil), r.d.compounds[medicationID]...), nil
}

// --- labRepo: repository.LabResultRepository --------------------------------

type labRepo struct{ d *data }

func (r labRepo) List(ctx context.Context, filter repository.Filter) ([]repository.LabResult, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]repository.LabResult, 0, len(r.d.labs))
	for _, l := range r.d.labs {
		if filter.DocumentID != nil && l.DocumentID != *filter.DocumentID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// --- diagnosisRepo: repository.DiagnosisRepository --------------------------

type diagnosisRepo struct{ d *data }

func (r diagnosisRepo) ListActive(ctx context.Context) ([]repository.Diagnosis, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]repository.Diagnosis, 0, len(r.d.diagnoses))
	for _, dg := range r.d.diagnoses {
		if dg.Status == "active" {
			out = append(out, dg)
		}
	}
	return out, nil
}

func (r diagnosisRepo) List(ctx context.Context, filter repository.Filter) ([]repository.Diagnosis, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]repository.Diagnosis, 0, len(r.d.diagnoses))
	for _, dg := range r.d.diagnoses {
		if filter.DocumentID != nil && dg.DocumentID != *filter.DocumentID {
			continue
		}
		out = append(out, dg)
	}
	return out, nil
}

// --- allergyRepo: repository.AllergyRepository ------------------------------

type allergyRepo struct{ d *data }

func (r allergyRepo) ListActive(ctx context.Context) ([]repository.Allergy, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]repository.Allergy, 0, len(r.d.allergies))
	for _, a := range r.d.allergies {
		if a.Status == "" || a.Status == "active" {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- procedureRepo: repository.ProcedureRepository --------------------------

type procedureRepo struct{ d *data }

func (r procedureRepo) List(ctx context.Context, filter repository.Filter) ([]repository.Procedure, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]repository.Procedure, 0, len(r.d.procedures))
	for _, p := range r.d.procedures {
		if filter.DocumentID != nil && p.DocumentID != *filter.DocumentID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// --- symptomRepo: repository.SymptomRepository -------------------------------

type symptomRepo struct{ d *data }

func (r symptomRepo) List(ctx context.Context, filter repository.Filter) ([]repository.Symptom, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]repository.Symptom, 0, len(r.d.symptoms))
	for _, sy := range r.d.symptoms {
		if filter.DocumentID != nil && sy.DocumentID != *filter.DocumentID {
			continue
		}
		out = append(out, sy)
	}
	return out, nil
}

func (r symptomRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]repository.Symptom, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]repository.Symptom, 0, len(r.d.symptoms))
	for _, sy := range r.d.symptoms {
		t, err := time.Parse("2006-01-02", sy.OnsetDateRaw)
		if err != nil {
			continue
		}
		if t.Before(from) || t.After(to) {
			continue
		}
		out = append(out, sy)
	}
	return out, nil
}

// --- professionalRepo: repository.ProfessionalRepository ---------------------

type professionalRepo struct{ d *data }

func (r professionalRepo) Get(ctx context.Context, id uuid.UUID) (*repository.Professional, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	p, ok := r.d.professionals[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// --- alertRepo: repository.AlertRepository -----------------------------------

type alertRepo struct{ d *data }

func (r alertRepo) IsDismissed(ctx context.Context, kind alert.Kind, entityIDs []uuid.UUID) (bool, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	_, ok := r.d.dismissed[alert.DismissalKey(kind, entityIDs)]
	return ok, nil
}

func (r alertRepo) Dismiss(ctx context.Context, record alert.DismissedRecord) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.dismissed[record.Key()] = record
	return nil
}

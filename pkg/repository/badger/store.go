package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/repository"
)

// Store implements every repository.*Repository interface over a badger
// DB: each entity kind lives under its own key prefix as a JSON blob, and
// the dismissal log is a set of keys under "dismissal/". Seeding uses the
// Put* methods directly (this is a reference/example double for the host's
// encrypted store, not a production ingestion path).
type Store struct {
	db *DB
}

// New wraps db as a Store. db must already be open.
func New(db *DB) *Store {
	return &Store{db: db}
}

const (
	prefixMedication   = "medication/"
	prefixDoseHistory  = "dose_history/"
	prefixCompound     = "compound/"
	prefixLab          = "lab/"
	prefixDiagnosis    = "diagnosis/"
	prefixAllergy      = "allergy/"
	prefixProcedure    = "procedure/"
	prefixSymptom      = "symptom/"
	prefixProfessional = "professional/"
	prefixDismissal    = "dismissal/"
)

func putJSON(db *DB, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("badger: marshal %s: %w", key, err)
	}
	return db.WithTxn(context.Background(), func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), raw)
	})
}

func scanPrefix(ctx context.Context, db *DB, prefix string, visit func(val []byte) error) error {
	return db.WithReadTxn(ctx, func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			if err := item.Value(visit); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutMedication seeds a medication record.
func (s *Store) PutMedication(m repository.Medication) error {
	return putJSON(s.db, prefixMedication+m.ID.String(), m)
}

// PutDoseHistory seeds a medication's dose-change history.
func (s *Store) PutDoseHistory(medicationID uuid.UUID, entries ...repository.DoseChangeEntry) error {
	for i, e := range entries {
		key := fmt.Sprintf("%s%s/%d", prefixDoseHistory, medicationID, i)
		if err := putJSON(s.db, key, e); err != nil {
			return err
		}
	}
	return nil
}

// PutCompoundIngredients seeds a compound medication's ingredients.
func (s *Store) PutCompoundIngredients(medicationID uuid.UUID, ingredients ...repository.CompoundIngredient) error {
	for i, c := range ingredients {
		key := fmt.Sprintf("%s%s/%d", prefixCompound, medicationID, i)
		if err := putJSON(s.db, key, c); err != nil {
			return err
		}
	}
	return nil
}

// PutLabResult seeds a lab result.
func (s *Store) PutLabResult(l repository.LabResult) error {
	return putJSON(s.db, prefixLab+l.ID.String(), l)
}

// PutDiagnosis seeds a diagnosis.
func (s *Store) PutDiagnosis(d repository.Diagnosis) error {
	return putJSON(s.db, prefixDiagnosis+d.ID.String(), d)
}

// PutAllergy seeds an allergy.
func (s *Store) PutAllergy(a repository.Allergy) error {
	return putJSON(s.db, prefixAllergy+a.ID.String(), a)
}

// PutProcedure seeds a procedure.
func (s *Store) PutProcedure(p repository.Procedure) error {
	return putJSON(s.db, prefixProcedure+p.ID.String(), p)
}

// PutSymptom seeds a symptom.
func (s *Store) PutSymptom(sy repository.Symptom) error {
	return putJSON(s.db, prefixSymptom+sy.ID.String(), sy)
}

// PutProfessional seeds a professional.
func (s *Store) PutProfessional(p repository.Professional) error {
	return putJSON(s.db, prefixProfessional+p.ID.String(), p)
}

// Set returns a repository.Set of wrapper types reading/writing through
// this Store's badger DB.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Medications:   medicationRepo{s},
		Labs:          labRepo{s},
		Diagnoses:     diagnosisRepo{s},
		Allergies:     allergyRepo{s},
		Procedures:    procedureRepo{s},
		Symptoms:      symptomRepo{s},
		Professionals: professionalRepo{s},
		Alerts:        alertRepo{s},
	}
}

type medicationRepo struct{ s *Store }

func (r medicationRepo) ListActive(ctx context.Context) ([]repository.Medication, error) {
	all, err := r.List(ctx, repository.Filter{})
	if err != nil {
		return nil, err
	}
	out := make([]repository.Medication, 0, len(all))
	for _, m := range all {
		if m.Status == "active" {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r medicationRepo) List(ctx context.Context, filter repository.Filter) ([]repository.Medication, error) {
	var out []repository.Medication
	err := scanPrefix(ctx, r.s.db, prefixMedication, func(val []byte) error {
		var m repository.Medication
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		if filter.DocumentID != nil && m.DocumentID != *filter.DocumentID {
			return nil
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (r medicationRepo) DoseHistory(ctx context.Context, medicationID uuid.UUID) ([]repository.DoseChangeEntry, error) {
	var out []repository.DoseChangeEntry
	err := scanPrefix(ctx, r.s.db, prefixDoseHistory+medicationID.String()+"/", func(val []byte) error {
		var e repository.DoseChangeEntry
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (r medicationRepo) CompoundIngredients(ctx context.Context, medicationID uuid.UUID) ([]repository.CompoundIngredient, error) {
	var out []repository.CompoundIngredient
	err := scanPrefix(ctx, r.s.db, prefixCompound+medicationID.String()+"/", func(val []byte) error {
		var c repository.CompoundIngredient
		if err := json.Unmarshal(val, &c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

type labRepo struct{ s *Store }

func (r labRepo) List(ctx context.Context, filter repository.Filter) ([]repository.LabResult, error) {
	var out []repository.LabResult
	err := scanPrefix(ctx, r.s.db, prefixLab, func(val []byte) error {
		var l repository.LabResult
		if err := json.Unmarshal(val, &l); err != nil {
			return err
		}
		if filter.DocumentID != nil && l.DocumentID != *filter.DocumentID {
			return nil
		}
		out = append(out, l)
		return nil
	})
	return out, err
}

type diagnosisRepo struct{ s *Store }

func (r diagnosisRepo) ListActive(ctx context.Context) ([]repository.Diagnosis, error) {
	all, err := r.List(ctx, repository.Filter{})
	if err != nil {
		return nil, err
	}
	out := make([]repository.Diagnosis, 0, len(all))
	for _, d := range all {
		if d.Status == "active" {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r diagnosisRepo) List(ctx context.Context, filter repository.Filter) ([]repository.Diagnosis, error) {
	var out []repository.Diagnosis
	err := scanPrefix(ctx, r.s.db, prefixDiagnosis, func(val []byte) error {
		var d repository.Diagnosis
		if err := json.Unmarshal(val, &d); err != nil {
			return err
		}
		if filter.DocumentID != nil && d.DocumentID != *filter.DocumentID {
			return nil
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

type allergyRepo struct{ s *Store }

func (r allergyRepo) ListActive(ctx context.Context) ([]repository.Allergy, error) {
	var out []repository.Allergy
	err := scanPrefix(ctx, r.s.db, prefixAllergy, func(val []byte) error {
		var a repository.Allergy
		if err := json.Unmarshal(val, &a); err != nil {
			return err
		}
		if a.Status == "active" {
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

type procedureRepo struct{ s *Store }

func (r procedureRepo) List(ctx context.Context, filter repository.Filter) ([]repository.Procedure, error) {
	var out []repository.Procedure
	err := scanPrefix(ctx, r.s.db, prefixProcedure, func(val []byte) error {
		var p repository.Procedure
		if err := json.Unmarshal(val, &p); err != nil {
			return err
		}
		if filter.DocumentID != nil && p.DocumentID != *filter.DocumentID {
			return nil
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

type symptomRepo struct{ s *Store }

func (r symptomRepo) List(ctx context.Context, filter repository.Filter) ([]repository.Symptom, error) {
	var out []repository.Symptom
	err := scanPrefix(ctx, r.s.db, prefixSymptom, func(val []byte) error {
		var sy repository.Symptom
		if err := json.Unmarshal(val, &sy); err != nil {
			return err
		}
		if filter.DocumentID != nil && sy.DocumentID != *filter.DocumentID {
			return nil
		}
		out = append(out, sy)
		return nil
	})
	return out, err
}

func (r symptomRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]repository.Symptom, error) {
	var out []repository.Symptom
	err := scanPrefix(ctx, r.s.db, prefixSymptom, func(val []byte) error {
		var sy repository.Symptom
		if err := json.Unmarshal(val, &sy); err != nil {
			return err
		}
		onset, err := time.Parse("2006-01-02", sy.OnsetDateRaw)
		if err != nil {
			return nil
		}
		if onset.Before(from) || onset.After(to) {
			return nil
		}
		out = append(out, sy)
		return nil
	})
	return out, err
}

type professionalRepo struct{ s *Store }

func (r professionalRepo) Get(ctx context.Context, id uuid.UUID) (*repository.Professional, error) {
	var out *repository.Professional
	err := r.s.db.WithReadTxn(ctx, func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(prefixProfessional + id.String()))
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var p repository.Professional
			if err := json.Unmarshal(val, &p); err != nil {
				return err
			}
			out = &p
			return nil
		})
	})
	return out, err
}

type alertRepo struct{ s *Store }

func dismissalKey(kind alert.Kind, entityIDs []uuid.UUID) string {
	return prefixDismissal + alert.DismissalKey(kind, entityIDs)
}

func (r alertRepo) IsDismissed(ctx context.Context, kind alert.Kind, entityIDs []uuid.UUID) (bool, error) {
	found := false
	err := r.s.db.WithReadTxn(ctx, func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(dismissalKey(kind, entityIDs)))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (r alertRepo) Dismiss(ctx context.Context, record alert.DismissedRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("badger: marshal dismissal record: %w", err)
	}
	return r.s.db.WithTxn(ctx, func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(dismissalKey(record.Kind, record.EntityIDs)), raw)
	})
}

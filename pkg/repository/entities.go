// Package repository declares the read (and, for dismissals, write) contract
// the coherence engine consumes from the encrypted at-rest store. The store
// itself — and everything about how these records are persisted — is an
// external collaborator out of scope for this module (spec.md §1); this
// package only names the shape of what it hands back.
package repository

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a single prescription record as read from the store.
// Generic is the explicit generic-name field from the source document, if
// the document supplied one; it may be empty, in which case BrandName must
// be resolved against the alias table (spec.md §4.2).
type Medication struct {
	ID               uuid.UUID
	DocumentID       uuid.UUID
	BrandName        string
	Generic          string
	Dose             string
	Frequency        string
	Route            string
	Status           string // "active" | "stopped" | ...
	Prescriber       string // empty means unknown
	Condition        string
	ReasonStart      string
	ReasonStop       string
	StartDate        time.Time
	IsOverTheCounter bool
	AsNeeded         bool // PRN
	IsNarcotic       bool // controlled substance, supplements a DOSE alert's message
	Schedule         string // DEA schedule ("II", "III", ...) when IsNarcotic; empty otherwise
}

// DisplayName is the name a patient would recognize this medication by:
// the brand name when present, otherwise the generic (spec.md §4.4).
func (m Medication) DisplayName() string {
	if m.BrandName != "" {
		return m.BrandName
	}
	return m.Generic
}

// DoseChangeEntry is one entry in a medication's dose-change history
// (spec.md §4.6 DRIFT, §4.7 TEMPORAL).
type DoseChangeEntry struct {
	ID             uuid.UUID
	MedicationID   uuid.UUID
	ChangedAt      time.Time
	PreviousDoseMg float64
	NewDoseMg      float64
	Reason         string
}

// CompoundIngredient is one ingredient of a compound medication (spec.md
// §4.8, Glossary "Compound medication").
type CompoundIngredient struct {
	ID             uuid.UUID
	MedicationID   uuid.UUID
	IngredientName string
	MapsToGeneric  string
}

// Resolved returns MapsToGeneric when set, otherwise falls back to the raw
// ingredient name (spec.md §4.8: "falling back to its ingredient name").
func (c CompoundIngredient) Resolved() string {
	if c.MapsToGeneric != "" {
		return c.MapsToGeneric
	}
	return c.IngredientName
}

// LabResult is a single lab value as read from the store.
type LabResult struct {
	ID                 uuid.UUID
	DocumentID         uuid.UUID
	TestName           string
	Value              float64
	Unit               string
	AbnormalFlag       string // "", "low", "high", "critical_low", "critical_high"
	ReferenceRangeLow  float64
	ReferenceRangeHigh float64
	CollectionDate     time.Time
}

// Critical reports whether the lab's authoritative flag marks it as
// critical (spec.md §4.10 — "No inference, the flag is authoritative").
func (l LabResult) Critical() bool {
	return l.AbnormalFlag == "critical_low" || l.AbnormalFlag == "critical_high"
}

// Diagnosis is a single diagnosis record as read from the store.
type Diagnosis struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Name       string
	Status     string // "active" | "resolved" | "monitoring" | ...
}

// Allergy is a single allergy record as read from the store.
type Allergy struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Allergen   string
	Severity   string
	Status     string
}

// Procedure is a single procedure record as read from the store.
type Procedure struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Name       string
	Date       time.Time
}

// Symptom is a single symptom record as read from the store. OnsetDateRaw
// holds whatever date text the source document supplied; it is not
// guaranteed parseable, so TEMPORAL must skip symptoms it cannot parse
// (spec.md §7 "data-quality skips").
type Symptom struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	Name         string
	OnsetDateRaw string
}

// Professional is a prescriber/clinician record.
type Professional struct {
	ID   uuid.UUID
	Name string
}

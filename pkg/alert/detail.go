package alert

import "github.com/google/uuid"

// Detail is the sum type over the eight detection variants. Every concrete
// detail type lives in this package and carries an unexported sealed method,
// so the interface is closed: adding a ninth kind means adding a case to the
// kind switches (Kind.Valid, Counts.Add here; message.Build in pkg/message)
// and the compiler will not silently accept an external type masquerading
// as a Detail.
type Detail interface {
	Kind() Kind
	Severity() Severity

	sealed()
}

// --- CONFLICT -------------------------------------------------------------

// ConflictField names which field differed between two active prescriptions
// of the same generic from different prescribers (spec.md §4.3).
type ConflictField string

const (
	ConflictFieldDose      ConflictField = "dose"
	ConflictFieldFrequency ConflictField = "frequency"
	ConflictFieldRoute     ConflictField = "route"
)

// ConflictDetail is the payload for a CONFLICT alert: two active medications
// resolving to the same generic, prescribed by different (or unknown vs.
// known) prescribers, differing on Field.
type ConflictDetail struct {
	Generic       string
	Field         ConflictField
	MedicationA   MedicationRef
	MedicationB   MedicationRef
	PrescriberA   string // empty means "unknown"
	PrescriberB   string
}

func (ConflictDetail) Kind() Kind         { return KindConflict }
func (ConflictDetail) Severity() Severity { return SeverityStandard }
func (ConflictDetail) sealed()            {}

// MedicationRef is the minimal identity+display info an alert detail carries
// about a medication — alerts reference entities by id, never by pointer
// into repository-owned memory (spec.md §9 "Entity graph by ID").
type MedicationRef struct {
	ID          uuid.UUID
	DisplayName string // brand name if present, else generic
	Dose        string
	Frequency   string
	Route       string
}

// --- DUPLICATE --------------------------------------------------------------

// DuplicateDetail is the payload for a DUPLICATE alert: two active
// medications resolving to the same generic, presented under different
// display names (spec.md §4.4).
type DuplicateDetail struct {
	Generic     string
	MedicationA MedicationRef
	MedicationB MedicationRef
}

func (DuplicateDetail) Kind() Kind         { return KindDuplicate }
func (DuplicateDetail) Severity() Severity { return SeverityStandard }
func (DuplicateDetail) sealed()            {}

// --- GAP --------------------------------------------------------------------

// GapVariant distinguishes the two GAP sub-rules (spec.md §4.5).
type GapVariant string

const (
	GapDiagnosisWithoutTreatment GapVariant = "diagnosis_without_treatment"
	GapMedicationWithoutDiagnosis GapVariant = "medication_without_diagnosis"
)

// GapDetail is the payload for a GAP alert. Exactly one of DiagnosisName or
// MedicationName is the subject of the gap; the other, when present,
// documents what was searched for a relation and not found.
type GapDetail struct {
	Variant        GapVariant
	DiagnosisID    uuid.UUID
	DiagnosisName  string
	MedicationID   uuid.UUID
	MedicationName string
}

func (GapDetail) Kind() Kind         { return KindGap }
func (GapDetail) Severity() Severity { return SeverityInfo }
func (GapDetail) sealed()            {}

// --- DRIFT --------------------------------------------------------------------

// DriftVariant distinguishes the three DRIFT sub-rules (spec.md §4.6). Only
// DriftDiagnosisStatus is Info severity; the two medication variants are
// Standard.
type DriftVariant string

const (
	DriftMedicationStatus  DriftVariant = "medication_status"
	DriftMedicationDose    DriftVariant = "medication_dose"
	DriftDiagnosisStatus   DriftVariant = "diagnosis_status"
)

// DriftDetail is the payload for a DRIFT alert.
type DriftDetail struct {
	Variant DriftVariant

	// Medication variants
	MedicationID uuid.UUID
	Generic      string
	PriorStatus  string
	NewStatus    string
	PriorDoseMg  float64
	NewDoseMg    float64

	// Diagnosis variant
	DiagnosisID   uuid.UUID
	DiagnosisName string
}

func (DriftDetail) Kind() Kind { return KindDrift }

func (d DriftDetail) Severity() Severity {
	if d.Variant == DriftDiagnosisStatus {
		return SeverityInfo
	}
	return SeverityStandard
}
func (DriftDetail) sealed() {}

// --- TEMPORAL -----------------------------------------------------------------

// TemporalVariant names which kind of event correlated with the symptom
// onset (spec.md §4.7).
type TemporalVariant string

const (
	TemporalMedicationStarted  TemporalVariant = "medication_started"
	TemporalDoseChanged        TemporalVariant = "dose_changed"
	TemporalProcedurePerformed TemporalVariant = "procedure_performed"
)

// TemporalDetail is the payload for a TEMPORAL alert: a symptom whose onset
// falls within the correlation window after a medication start, dose
// change, or procedure.
type TemporalDetail struct {
	Variant           TemporalVariant
	SymptomID         uuid.UUID
	SymptomName       string
	RelatedEntityID   uuid.UUID
	RelatedEntityName string
	DaysBetween       int
}

func (TemporalDetail) Kind() Kind         { return KindTemporal }
func (TemporalDetail) Severity() Severity { return SeverityStandard }
func (TemporalDetail) sealed()            {}

// --- ALLERGY ------------------------------------------------------------------

// AllergyMatchType names how an ingredient was matched against an allergen
// (spec.md §4.8).
type AllergyMatchType string

const (
	AllergyMatchExact      AllergyMatchType = "exact"
	AllergyMatchDrugFamily AllergyMatchType = "drug_family"
)

// AllergyDetail is the payload for an ALLERGY alert (always Critical).
type AllergyDetail struct {
	AllergyID    uuid.UUID
	Allergen     string
	MedicationID uuid.UUID
	Ingredient   string
	MatchType    AllergyMatchType
}

func (AllergyDetail) Kind() Kind         { return KindAllergy }
func (AllergyDetail) Severity() Severity { return SeverityCritical }
func (AllergyDetail) sealed()            {}

// --- DOSE ---------------------------------------------------------------------

// DoseDetail is the payload for a DOSE alert: an extracted dose outside the
// reference range for its generic (spec.md §4.9).
type DoseDetail struct {
	MedicationID    uuid.UUID
	Generic         string
	ExtractedDoseMg float64
	MinSingleDoseMg float64
	MaxSingleDoseMg float64
	MaxDailyDoseMg  float64
	Route           string
	// IsNarcotic and Schedule supplement the message with a controlled-
	// substance note when the source medication is a scheduled drug
	// (spec.md §3 data model, supplemented per SPEC_FULL.md).
	IsNarcotic bool
	Schedule   string
}

func (DoseDetail) Kind() Kind         { return KindDose }
func (DoseDetail) Severity() Severity { return SeverityStandard }
func (DoseDetail) sealed()            {}

// --- CRITICAL -----------------------------------------------------------------

// CriticalDetail is the payload for a CRITICAL (lab) alert (spec.md §4.10).
type CriticalDetail struct {
	LabResultID         uuid.UUID
	TestName            string
	Value               float64
	Unit                string
	ReferenceRangeLow   float64
	ReferenceRangeHigh  float64
	AbnormalFlag        string // "critical_low" | "critical_high"
	SourceDocumentID    uuid.UUID
}

func (CriticalDetail) Kind() Kind         { return KindCritical }
func (CriticalDetail) Severity() Severity { return SeverityCritical }
func (CriticalDetail) sealed()            {}

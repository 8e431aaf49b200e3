// Package normalize holds the small set of pure string-normalization
// routines every detector shares: dose parsing/equality, frequency
// canonicalization, and generic-name resolution (spec.md §4.2). None of it
// touches the repository or alert packages — it's kept dependency-free so
// detectors can call it without constructing anything.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// doseUnitPattern matches a lowercased, space-stripped dose string that is
// exactly one numeric literal optionally followed by one unit tag; used by
// NormalizeDose. Compiled once at package init, the way the teacher
// pre-compiles its masking regexes.
var doseUnitPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)(mg|milligrams?|g|grams?|mcg|micrograms?|ug|µg)?$`)

// doseLeadingPattern finds the first numeric literal, and the unit tag
// directly after it if any, anywhere in a lowercased, space-stripped dose
// string; used by ParseDoseToMg.
var doseLeadingPattern = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)(mg|milligrams?|g|grams?|mcg|micrograms?|ug|µg)?`)

// unitToMgFactor converts a recognized unit's quantity into milligrams.
// A missing unit is treated as mg (spec.md §4.2 "a bare number is treated
// as mg").
var unitToMgFactor = map[string]float64{
	"":            1,
	"mg":          1,
	"milligram":   1,
	"milligrams":  1,
	"g":           1000,
	"gram":        1000,
	"grams":       1000,
	"mcg":         0.001,
	"microgram":   0.001,
	"micrograms":  0.001,
	"ug":          0.001,
	"µg":          0.001,
}

// ParseDoseToMg extracts the first numeric literal and unit from a dose
// string and converts it to milligrams. The bool is false when the string
// cannot be parsed (spec.md §4.2: "Unparseable input returns none").
func ParseDoseToMg(dose string) (float64, bool) {
	compact := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(dose)), " ", "")
	m := doseLeadingPattern.FindStringSubmatch(compact)
	if m == nil {
		return 0, false
	}
	qty, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	factor, ok := unitToMgFactor[m[2]]
	if !ok {
		return 0, false
	}
	return qty * factor, true
}

// unitSynonyms folds every recognized unit spelling to a single canonical
// token, used by NormalizeDose for equality comparison (spec.md §4.2
// "fold unit synonyms").
var unitSynonyms = map[string]string{
	"milligram":  "mg",
	"milligrams": "mg",
	"gram":       "g",
	"grams":      "g",
	"microgram":  "mcg",
	"micrograms": "mcg",
	"ug":         "mcg",
	"µg":         "mcg",
}

// NormalizeDose lowercases, strips spaces, and folds unit synonyms so two
// doses written differently compare equal by byte-equality (spec.md §4.2
// "Two doses compare equal iff their normalized forms are byte-equal").
func NormalizeDose(dose string) string {
	compact := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(dose)), " ", "")
	m := doseUnitPattern.FindStringSubmatch(compact)
	if m == nil {
		return compact
	}
	unit := m[2]
	if canon, ok := unitSynonyms[unit]; ok {
		unit = canon
	}
	return m[1] + unit
}

// DosesEqual reports whether two dose strings are equal after normalization.
func DosesEqual(a, b string) bool {
	return NormalizeDose(a) == NormalizeDose(b)
}

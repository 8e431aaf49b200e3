// Package refdata loads the engine's bundled static reference data —
// brand→generic aliases, per-generic dose ranges, and drug-family
// clusters — and indexes it for O(1) lowercased lookups (spec.md §4.1).
// It is read-only after Load returns; nothing in this package mutates a
// *Data once constructed.
package refdata

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DoseRange is a single generic's safe single/daily dose bounds (spec.md
// §3 Reference Data).
type DoseRange struct {
	Generic      string  `json:"generic" validate:"required"`
	MinSingleMg  float64 `json:"min_single_mg" validate:"min=0"`
	MaxSingleMg  float64 `json:"max_single_mg" validate:"min=0"`
	MaxDailyMg   float64 `json:"max_daily_mg" validate:"min=0"`
	Route        string  `json:"route"`
}

type aliasRecord struct {
	Brand   string `json:"brand" validate:"required"`
	Generic string `json:"generic" validate:"required"`
}

// Data is the loaded, validated, read-only reference data set.
type Data struct {
	aliases    map[string]string      // lowercased brand -> lowercased generic
	doseRanges map[string]DoseRange   // lowercased generic -> range
	families   [][]string             // lowercased canonical names, one slice per cluster
}

var validate = validator.New()

// Load reads alias.json and dose_ranges.json from resourcesDir (required),
// plus drug_families.json (optional — falls back to the hardcoded cluster
// list when absent), validates every record, and indexes the result.
// Any load or parse failure aborts immediately: spec.md §4.1 "the engine
// never starts with partial reference data".
func Load(resourcesDir string) (*Data, error) {
	log := slog.With("resources_dir", resourcesDir)

	aliases, err := loadAliases(filepath.Join(resourcesDir, "alias.json"))
	if err != nil {
		return nil, err
	}
	doseRanges, err := loadDoseRanges(filepath.Join(resourcesDir, "dose_ranges.json"))
	if err != nil {
		return nil, err
	}
	families, err := loadFamilies(filepath.Join(resourcesDir, "drug_families.json"), log)
	if err != nil {
		return nil, err
	}

	log.Info("reference data loaded",
		"aliases", len(aliases), "dose_ranges", len(doseRanges), "families", len(families))

	return &Data{aliases: aliases, doseRanges: doseRanges, families: families}, nil
}

func loadAliases(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReferenceDataLoad, path, err)
	}
	var records []aliasRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReferenceDataParse, path, err)
	}
	out := make(map[string]string, len(records))
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("%w: %s: record %d: %v", ErrReferenceDataParse, path, i, err)
		}
		out[strings.ToLower(r.Brand)] = strings.ToLower(r.Generic)
	}
	return out, nil
}

func loadDoseRanges(path string) (map[string]DoseRange, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReferenceDataLoad, path, err)
	}
	var records []DoseRange
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReferenceDataParse, path, err)
	}
	out := make(map[string]DoseRange, len(records))
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("%w: %s: record %d: %v", ErrReferenceDataParse, path, i, err)
		}
		if r.MinSingleMg > r.MaxSingleMg || r.MaxSingleMg > r.MaxDailyMg {
			return nil, fmt.Errorf("%w: %s: record %d: dose bounds out of order for %q", ErrReferenceDataParse, path, i, r.Generic)
		}
		out[strings.ToLower(r.Generic)] = r
	}
	return out, nil
}

// loadFamilies reads drug_families.json if present; a missing file is not
// an error here (it's optional per spec.md §9), but a malformed one is.
func loadFamilies(path string, log *slog.Logger) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("drug_families.json not found, using builtin clusters")
			return builtinFamilies, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrReferenceDataLoad, path, err)
	}
	var clusters [][]string
	if err := json.Unmarshal(raw, &clusters); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReferenceDataParse, path, err)
	}
	out := make([][]string, 0, len(clusters))
	for _, cluster := range clusters {
		lowered := make([]string, 0, len(cluster))
		for _, name := range cluster {
			lowered = append(lowered, strings.ToLower(name))
		}
		out = append(out, lowered)
	}
	return out, nil
}

// ResolveGeneric looks up a brand name's generic (spec.md §4.1
// resolve_generic). Matches normalize.AliasLookup's signature so it can be
// passed directly as a callback.
func (d *Data) ResolveGeneric(brand string) (string, bool) {
	g, ok := d.aliases[strings.ToLower(brand)]
	return g, ok
}

// GetDoseRange looks up a generic's dose range (spec.md §4.1
// get_dose_range).
func (d *Data) GetDoseRange(generic string) (DoseRange, bool) {
	r, ok := d.doseRanges[strings.ToLower(generic)]
	return r, ok
}

// IsSameFamily reports whether a and b both substring-match (in either
// direction) some member of a common drug-family cluster (spec.md §4.1).
// Deliberately loose: false positives are preferred to false negatives.
func (d *Data) IsSameFamily(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == "" || lb == "" {
		return false
	}
	for _, cluster := range d.families {
		matchA, matchB := false, false
		for _, name := range cluster {
			if substringBothWays(name, la) {
				matchA = true
			}
			if substringBothWays(name, lb) {
				matchB = true
			}
		}
		if matchA && matchB {
			return true
		}
	}
	return false
}

func substringBothWays(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

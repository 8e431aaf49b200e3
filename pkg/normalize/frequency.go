package normalize

import "strings"

// frequencySynonyms maps every recognized phrasing to its canonical
// per-day form (spec.md §4.2). Longer phrases are matched before their
// abbreviations lose ambiguity, so the map is walked via frequencyOrder
// rather than Go's undefined map iteration order.
var frequencySynonyms = map[string]string{
	"twice daily":       "2x/day",
	"two times a day":   "2x/day",
	"bid":               "2x/day",
	"once daily":        "1x/day",
	"once a day":        "1x/day",
	"qd":                "1x/day",
	"three times daily": "3x/day",
	"tid":               "3x/day",
	"four times daily":  "4x/day",
	"qid":               "4x/day",
}

// frequencyOrder lists frequencySynonyms keys longest-first so multi-word
// phrases are replaced before a shorter abbreviation embedded in them could
// match spuriously.
var frequencyOrder = []string{
	"three times daily", "four times daily",
	"two times a day",
	"twice daily", "once daily", "once a day",
	"bid", "qd", "tid", "qid",
}

// NormalizeFrequency lowercases a frequency string and replaces any
// recognized synonym with its canonical per-day form (spec.md §4.2).
func NormalizeFrequency(freq string) string {
	out := strings.ToLower(strings.TrimSpace(freq))
	for _, key := range frequencyOrder {
		if strings.Contains(out, key) {
			out = strings.ReplaceAll(out, key, frequencySynonyms[key])
			break
		}
	}
	return strings.TrimSpace(out)
}

// FrequenciesEqual reports whether two frequency strings are equal after
// normalization.
func FrequenciesEqual(a, b string) bool {
	return NormalizeFrequency(a) == NormalizeFrequency(b)
}

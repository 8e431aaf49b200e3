package detect

import (
	"sort"

	"github.com/localhealth/coherence-engine/pkg/alert"
)

// dedupSymmetricPairs implements spec.md §4.11's pair-based post-processing
// for symmetric detectors (Duplicate, Allergy): key each candidate by the
// sorted pair of its first two entity ids, keep only the first occurrence
// (testable property 7). Candidates with fewer than two entity ids pass
// through unchanged.
func dedupSymmetricPairs(candidates []*alert.Alert) []*alert.Alert {
	seen := make(map[[2]string]struct{}, len(candidates))
	out := make([]*alert.Alert, 0, len(candidates))
	for _, c := range candidates {
		if len(c.EntityIDs) < 2 {
			out = append(out, c)
			continue
		}
		pair := [2]string{c.EntityIDs[0].String(), c.EntityIDs[1].String()}
		sort.Strings(pair[:])
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		out = append(out, c)
	}
	return out
}

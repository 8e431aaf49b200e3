package message

import (
	"fmt"
	"strings"
)

// forbiddenWords is the calm-language contract's closed denylist (spec.md
// §4.13, §8 property 1): no patient message may contain any of these,
// case-insensitive.
var forbiddenWords = []string{"immediately", "urgently", "emergency", "danger", "warning"}

// calmFramingPhrases lists the "calm preparatory framing" phrases spec.md
// §4.13 recommends every message include at least one of.
var calmFramingPhrases = []string{"you may want to", "might be worth", "please verify", "please contact"}

// Validate checks a rendered message against the calm-language contract.
// isCriticalLab additionally requires both "prompt attention" and "soon"
// (spec.md §8 property 2). Detectors never need to call this directly —
// it exists so templates can be tested exhaustively and so a host embedding
// the engine can re-verify third-party or localized message text.
func Validate(msg string, isCriticalLab bool) error {
	lower := strings.ToLower(msg)

	for _, word := range forbiddenWords {
		if strings.Contains(lower, word) {
			return fmt.Errorf("message: contains forbidden word %q", word)
		}
	}

	if isCriticalLab {
		if !strings.Contains(lower, "prompt attention") {
			return fmt.Errorf("message: critical-lab message missing %q", "prompt attention")
		}
		if !strings.Contains(lower, "soon") {
			return fmt.Errorf("message: critical-lab message missing %q", "soon")
		}
	}

	hasFraming := false
	for _, phrase := range calmFramingPhrases {
		if strings.Contains(lower, phrase) {
			hasFraming = true
			break
		}
	}
	if !hasFraming {
		return fmt.Errorf("message: missing calm preparatory framing phrase")
	}

	return nil
}

package coherence

import (
	"github.com/localhealth/coherence-engine/internal/store"
	"github.com/localhealth/coherence-engine/pkg/alert"
)

// ErrInvalidKind re-exports alert.ErrInvalidKind, which alert.New returns
// when a Detail reports a kind outside the eight known kinds (spec.md
// §4.14). No façade method returns it.
var ErrInvalidKind = alert.ErrInvalidKind

// The remaining façade-level sentinel errors are re-exported from the
// packages that actually enforce them, so callers only need to import
// pkg/coherence to errors.Is against the full dismissal error taxonomy
// (spec.md §4.11, §4.14).
var (
	ErrAlertNotFound           = store.ErrAlertNotFound
	ErrCriticalRequiresTwoStep = alert.ErrCriticalRequiresTwoStep
	ErrTwoStepNotConfirmed     = alert.ErrTwoStepNotConfirmed
	ErrNotCriticalAlert        = alert.ErrNotCriticalAlert
)

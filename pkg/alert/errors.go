package alert

import "errors"

// Sentinel errors for the alert-model invariants (spec.md §4.14, "Programmer-
// intent violations" — returned to the caller unchanged, never swallowed).
var (
	// ErrInvalidKind is returned when a Detail reports a Kind outside the
	// eight known detection kinds.
	ErrInvalidKind = errors.New("invalid alert kind")

	// ErrCriticalRequiresTwoStep is returned by Dismiss when called on a
	// Critical-severity alert; callers must use DismissCritical instead.
	ErrCriticalRequiresTwoStep = errors.New("critical alerts require two-step dismissal")

	// ErrTwoStepNotConfirmed is returned by DismissCritical when the
	// two-step confirmation flag is false.
	ErrTwoStepNotConfirmed = errors.New("two-step confirmation not provided")

	// ErrNotCriticalAlert is returned by DismissCritical when the target
	// alert's severity is not Critical.
	ErrNotCriticalAlert = errors.New("alert is not critical severity")
)

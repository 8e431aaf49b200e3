package coherence

import "github.com/localhealth/coherence-engine/pkg/alert"

// EmergencyAction is the lifecycle controller's projection of a Critical
// alert for a host's ingestion-review surface and home banner (spec.md
// §4.12). It never auto-dismisses — the two prompts exist to route the
// patient toward confirming clinical review, not to resolve the alert.
type EmergencyAction struct {
	AlertID                string
	IngestionReviewMessage string
	HomeBannerMessage      string
	AppointmentPriority    bool
	RequiredDismissalSteps int
	Prompt1                string
	Prompt2                string
}

// BuildEmergencyActions projects an EmergencyAction for every Critical
// alert in alerts, preserving input order. Non-Critical alerts are
// ignored — the lifecycle controller only ever acts on Critical findings
// (spec.md §4.12).
func BuildEmergencyActions(alerts []*alert.Alert) []EmergencyAction {
	var out []EmergencyAction
	for _, a := range alerts {
		if !a.Severity.Critical() {
			continue
		}
		out = append(out, buildEmergencyAction(a))
	}
	return out
}

func buildEmergencyAction(a *alert.Alert) EmergencyAction {
	action := EmergencyAction{
		AlertID:                a.ID.String(),
		AppointmentPriority:    true,
		RequiredDismissalSteps: 2,
	}

	switch detail := a.Detail.(type) {
	case alert.CriticalDetail:
		action.IngestionReviewMessage = "A critical lab result was detected: " + a.Message
		action.HomeBannerMessage = "A critical lab result needs your attention — please review soon."
		action.Prompt1 = "Has your doctor addressed this?"
		action.Prompt2 = "Yes, my doctor has seen this result"
	case alert.AllergyDetail:
		action.IngestionReviewMessage = "A possible allergy conflict was detected: " + a.Message
		action.HomeBannerMessage = "A possible allergy conflict needs your attention — please review soon."
		action.Prompt1 = "Have you discussed this with your doctor or pharmacist?"
		action.Prompt2 = "Yes, a healthcare provider has reviewed this"
	default:
		action.IngestionReviewMessage = a.Message
		action.HomeBannerMessage = "An alert needs your attention — please review soon."
		action.Prompt1 = "Has this been reviewed?"
		action.Prompt2 = "Yes, this has been reviewed"
	}

	return action
}

// internal/pipeline/messages.go
package pipeline

import (
	"talent-pipeline/internal/models"
)

// NextStepsMessage derives the guidance line sent to candidates from the
// overall status and current stage. The mapping is total: unmapped
// combinations fall through to a generic line.
func NextStepsMessage(status models.OverallStatus, stage models.Stage) string {
	switch status {
	case models.StatusActive:
		switch stage {
		case models.StageWrittenTest:
			return "Please complete your written test when ready."
		case models.StageVideoTest:
			return "Please complete your video interview when ready."
		case models.StageInterview:
			return "Your interview will be scheduled soon."
		}
		return "We are reviewing your application."
	case models.StatusRejected:
		return "Thank you for your interest. We will keep your profile for future opportunities."
	case models.StatusHired:
		return "Congratulations! Welcome to the team. You will receive onboarding information soon."
	case models.StatusWithdrawn:
		return "Your application has been withdrawn. You are welcome to apply again in the future."
	}
	return "We will update you on the next steps soon."
}

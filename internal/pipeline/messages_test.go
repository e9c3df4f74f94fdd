// internal/pipeline/messages_test.go
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"talent-pipeline/internal/models"
)

func TestNextStepsMessage_ActiveStages(t *testing.T) {
	tests := []struct {
		name  string
		stage models.Stage
		want  string
	}{
		{"review", models.StageApplicationReview, "We are reviewing your application."},
		{"written test", models.StageWrittenTest, "Please complete your written test when ready."},
		{"video test", models.StageVideoTest, "Please complete your video interview when ready."},
		{"interview", models.StageInterview, "Your interview will be scheduled soon."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStepsMessage(models.StatusActive, tt.stage))
		})
	}
}

func TestNextStepsMessage_TerminalStatuses(t *testing.T) {
	assert.Equal(t,
		"Thank you for your interest. We will keep your profile for future opportunities.",
		NextStepsMessage(models.StatusRejected, models.StageVideoTest))
	assert.Equal(t,
		"Congratulations! Welcome to the team. You will receive onboarding information soon.",
		NextStepsMessage(models.StatusHired, models.StageInterview))
	assert.Equal(t,
		"Your application has been withdrawn. You are welcome to apply again in the future.",
		NextStepsMessage(models.StatusWithdrawn, models.StageWrittenTest))
}

func TestNextStepsMessage_TotalMapping(t *testing.T) {
	// Unknown combinations still produce a usable line.
	assert.NotEmpty(t, NextStepsMessage(models.OverallStatus("UNKNOWN"), models.Stage(9)))
	assert.NotEmpty(t, NextStepsMessage(models.StatusActive, models.Stage(0)))
}

// internal/pipeline/engine_test.go
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	commonerrors "talent-pipeline/internal/common/errors"
	"talent-pipeline/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

// testApplication builds an ACTIVE application sitting at the given stage with
// the given active-stage status. Earlier stages are marked COMPLETED.
func testApplication(stage models.Stage, status models.StageStatus) models.Application {
	app := models.Application{
		ID:                "app-001",
		CandidateID:       "cand-001",
		JobID:             "job-001",
		AppliedAt:         "2025-01-15T10:00:00Z",
		CurrentStage:      models.StageApplicationReview,
		OverallStatus:     models.StatusActive,
		ApplicationStatus: models.StageCompleted,
		WrittenTestStatus: models.StageNotStarted,
		VideoTestStatus:   models.StageNotStarted,
		InterviewStatus:   models.StageNotStarted,
		Version:           1,
	}
	for s := models.MinStage; s < stage; s++ {
		app.SetStageStatus(s, models.StageCompleted)
	}
	app.CurrentStage = stage
	app.SetStageStatus(stage, status)
	return app
}

// ==========================
// Advance
// ==========================

func TestAdvance_Stage1ToStage2(t *testing.T) {
	app := testApplication(models.StageApplicationReview, models.StageCompleted)

	next, err := Advance(app)

	assert.NoError(t, err)
	assert.Equal(t, models.StageWrittenTest, next.CurrentStage)
	assert.Equal(t, models.StagePending, next.WrittenTestStatus)
	assert.Equal(t, models.StatusActive, next.OverallStatus)
	// The completed stage keeps its status.
	assert.Equal(t, models.StageCompleted, next.ApplicationStatus)
}

func TestAdvance_EachIntermediateStage(t *testing.T) {
	tests := []struct {
		name      string
		from      models.Stage
		wantStage models.Stage
	}{
		{"review to written test", models.StageApplicationReview, models.StageWrittenTest},
		{"written test to video test", models.StageWrittenTest, models.StageVideoTest},
		{"video test to interview", models.StageVideoTest, models.StageInterview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApplication(tt.from, models.StageCompleted)

			next, err := Advance(app)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStage, next.CurrentStage)
			assert.Equal(t, models.StagePending, next.ActiveStatus())
			assert.Equal(t, models.StatusActive, next.OverallStatus)
		})
	}
}

func TestAdvance_Stage4CompletedYieldsHired(t *testing.T) {
	app := testApplication(models.StageInterview, models.StageCompleted)

	next, err := Advance(app)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusHired, next.OverallStatus)
	// currentStage never increments past the interview stage.
	assert.Equal(t, models.StageInterview, next.CurrentStage)
	assert.Equal(t, models.StageCompleted, next.InterviewStatus)
}

func TestAdvance_ActiveStageNotCompleted(t *testing.T) {
	for _, status := range []models.StageStatus{
		models.StageNotStarted,
		models.StagePending,
		models.StageScheduled,
		models.StageInProgress,
	} {
		t.Run(string(status), func(t *testing.T) {
			app := testApplication(models.StageWrittenTest, status)

			_, err := Advance(app)

			assert.Error(t, err)
			assert.True(t, commonerrors.IsInvalidTransition(err))
		})
	}
}

func TestAdvance_DoubleAdvanceRejected(t *testing.T) {
	app := testApplication(models.StageApplicationReview, models.StageCompleted)

	next, err := Advance(app)
	assert.NoError(t, err)

	// The new stage is PENDING, not COMPLETED, so a second advance must fail.
	_, err = Advance(next)
	assert.Error(t, err)
	assert.True(t, commonerrors.IsInvalidTransition(err))
}

func TestAdvance_TerminalStatusRejected(t *testing.T) {
	for _, status := range []models.OverallStatus{
		models.StatusHired,
		models.StatusRejected,
		models.StatusWithdrawn,
	} {
		t.Run(string(status), func(t *testing.T) {
			app := testApplication(models.StageInterview, models.StageCompleted)
			app.OverallStatus = status

			_, err := Advance(app)

			assert.Error(t, err)
			assert.True(t, commonerrors.IsInvalidTransition(err))
		})
	}
}

// ==========================
// Stage Outcomes
// ==========================

func TestMarkStageCompleted_FromInProgress(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StageInProgress)

	next, err := MarkStageCompleted(app, models.StageWrittenTest)

	assert.NoError(t, err)
	assert.Equal(t, models.StageCompleted, next.WrittenTestStatus)
	// Completion never advances the stage on its own.
	assert.Equal(t, models.StageWrittenTest, next.CurrentStage)
	assert.Equal(t, models.StatusActive, next.OverallStatus)
}

func TestMarkStageCompleted_FromScheduled(t *testing.T) {
	app := testApplication(models.StageInterview, models.StageScheduled)

	next, err := MarkStageCompleted(app, models.StageInterview)

	assert.NoError(t, err)
	assert.Equal(t, models.StageCompleted, next.InterviewStatus)
	assert.Equal(t, models.StatusActive, next.OverallStatus)
}

func TestMarkStageCompleted_FromPendingRejected(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StagePending)

	_, err := MarkStageCompleted(app, models.StageWrittenTest)

	assert.Error(t, err)
	assert.True(t, commonerrors.IsInvalidTransition(err))
}

func TestMarkStageCompleted_WrongStage(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StageInProgress)

	_, err := MarkStageCompleted(app, models.StageVideoTest)

	assert.Error(t, err)
	assert.True(t, commonerrors.IsInvalidTransition(err))
}

func TestMarkStageCompleted_StageOutOfRange(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StageInProgress)

	for _, stage := range []models.Stage{0, 5, -1} {
		_, err := MarkStageCompleted(app, stage)
		assert.Error(t, err)
		assert.True(t, commonerrors.IsInvalidTransition(err))
	}
}

func TestMarkStageFailed_RejectsApplication(t *testing.T) {
	app := testApplication(models.StageVideoTest, models.StageInProgress)

	next, err := MarkStageFailed(app, models.StageVideoTest, "failed stage 3")

	assert.NoError(t, err)
	assert.Equal(t, models.StageFailed, next.VideoTestStatus)
	assert.Equal(t, models.StatusRejected, next.OverallStatus)
	assert.Equal(t, models.StageVideoTest, next.CurrentStage)
	assert.Contains(t, next.Feedback, "failed stage 3")
}

// ==========================
// Scheduling
// ==========================

func TestScheduleStage_FromPending(t *testing.T) {
	app := testApplication(models.StageInterview, models.StagePending)

	next, err := ScheduleStage(app, models.StageInterview)

	assert.NoError(t, err)
	assert.Equal(t, models.StageScheduled, next.InterviewStatus)
}

func TestScheduleStage_FromNotStarted(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StageNotStarted)

	next, err := ScheduleStage(app, models.StageWrittenTest)

	assert.NoError(t, err)
	assert.Equal(t, models.StageScheduled, next.WrittenTestStatus)
}

func TestScheduleStage_FromInProgressRejected(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StageInProgress)

	_, err := ScheduleStage(app, models.StageWrittenTest)

	assert.Error(t, err)
	assert.True(t, commonerrors.IsInvalidTransition(err))
}

func TestStartStage_FromPending(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StagePending)

	next, err := StartStage(app, models.StageWrittenTest)

	assert.NoError(t, err)
	assert.Equal(t, models.StageInProgress, next.WrittenTestStatus)
}

func TestStartStage_FromScheduled(t *testing.T) {
	app := testApplication(models.StageVideoTest, models.StageScheduled)

	next, err := StartStage(app, models.StageVideoTest)

	assert.NoError(t, err)
	assert.Equal(t, models.StageInProgress, next.VideoTestStatus)
}

func TestStartStage_FromCompletedRejected(t *testing.T) {
	app := testApplication(models.StageVideoTest, models.StageCompleted)

	_, err := StartStage(app, models.StageVideoTest)

	assert.Error(t, err)
	assert.True(t, commonerrors.IsInvalidTransition(err))
}

// ==========================
// Terminal Decisions
// ==========================

func TestReject_FreezesStageState(t *testing.T) {
	app := testApplication(models.StageVideoTest, models.StageInProgress)

	next, err := Reject(app, "Did not meet the bar")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusRejected, next.OverallStatus)
	assert.Equal(t, models.StageVideoTest, next.CurrentStage)
	assert.Equal(t, models.StageInProgress, next.VideoTestStatus)
	assert.Equal(t, "Did not meet the bar", next.Feedback)
}

func TestReject_AppendsToExistingFeedback(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StagePending)
	app.Feedback = "Cover Letter: I am excited to apply."

	next, err := Reject(app, "Position filled")

	assert.NoError(t, err)
	assert.Equal(t, "Cover Letter: I am excited to apply.\nPosition filled", next.Feedback)
}

func TestReject_EmptyReasonLeavesFeedback(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StagePending)
	app.Feedback = "existing note"

	next, err := Reject(app, "")

	assert.NoError(t, err)
	assert.Equal(t, "existing note", next.Feedback)
}

func TestReject_AlreadyTerminal(t *testing.T) {
	app := testApplication(models.StageWrittenTest, models.StagePending)
	app.OverallStatus = models.StatusRejected

	_, err := Reject(app, "again")

	assert.Error(t, err)
	assert.True(t, commonerrors.IsInvalidTransition(err))
}

func TestWithdraw_FromActive(t *testing.T) {
	app := testApplication(models.StageInterview, models.StageScheduled)

	next, err := Withdraw(app)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusWithdrawn, next.OverallStatus)
	assert.Equal(t, models.StageScheduled, next.InterviewStatus)
}

func TestWithdraw_AlreadyTerminal(t *testing.T) {
	app := testApplication(models.StageInterview, models.StageCompleted)
	app.OverallStatus = models.StatusHired

	_, err := Withdraw(app)

	assert.Error(t, err)
	assert.True(t, commonerrors.IsInvalidTransition(err))
}

// ==========================
// Full Pipeline Walk
// ==========================

func TestEngine_FullPipelineToHired(t *testing.T) {
	app := testApplication(models.StageApplicationReview, models.StageCompleted)

	var err error
	for _, stage := range []models.Stage{models.StageWrittenTest, models.StageVideoTest, models.StageInterview} {
		app, err = Advance(app)
		assert.NoError(t, err)
		assert.Equal(t, stage, app.CurrentStage)
		assert.Equal(t, models.StagePending, app.ActiveStatus())

		app, err = StartStage(app, stage)
		assert.NoError(t, err)

		app, err = MarkStageCompleted(app, stage)
		assert.NoError(t, err)
	}

	app, err = Advance(app)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusHired, app.OverallStatus)

	// No action is legal after the terminal decision.
	_, err = Advance(app)
	assert.True(t, commonerrors.IsInvalidTransition(err))
	_, err = Reject(app, "too late")
	assert.True(t, commonerrors.IsInvalidTransition(err))
	_, err = Withdraw(app)
	assert.True(t, commonerrors.IsInvalidTransition(err))
}

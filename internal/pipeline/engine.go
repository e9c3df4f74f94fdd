// internal/pipeline/engine.go

// Package pipeline implements the application stage progression state machine
// for the four-stage hiring pipeline (Application Review, Written Test,
// Video Test, Interview) and the orchestrator that applies it against the
// repository and notification collaborators.
package pipeline

import (
	"fmt"

	commonerrors "talent-pipeline/internal/common/errors"
	"talent-pipeline/internal/models"
)

// The engine is pure: every function takes an Application by value and
// returns the next state without touching any collaborator. Actions on a
// terminal overall status always fail; there are no silent no-ops.

// Advance moves an application to the next stage. It is valid only when the
// active stage status is COMPLETED and the overall status is still ACTIVE.
// Completing stage 4 is the only path to HIRED; Advance never increments
// currentStage past 4.
func Advance(app models.Application) (models.Application, error) {
	if app.OverallStatus.Terminal() {
		return app, commonerrors.NewInvalidTransitionError(
			fmt.Sprintf("application %s already decided: %s", app.ID, app.OverallStatus))
	}
	if status := app.ActiveStatus(); status != models.StageCompleted {
		return app, commonerrors.NewInvalidTransitionError(
			fmt.Sprintf("cannot advance from stage %d: active status is %s, want %s",
				app.CurrentStage, status, models.StageCompleted))
	}

	if app.CurrentStage == models.MaxStage {
		app.OverallStatus = models.StatusHired
		return app, nil
	}

	app.CurrentStage++
	app.SetStageStatus(app.CurrentStage, models.StagePending)
	return app, nil
}

// MarkStageCompleted records a passed stage. The stage must be the current one
// and its status must be IN_PROGRESS or SCHEDULED. It never advances
// currentStage; advancing requires an explicit reviewer-triggered Advance.
func MarkStageCompleted(app models.Application, stage models.Stage) (models.Application, error) {
	if err := checkStageAction(app, stage); err != nil {
		return app, err
	}
	switch app.ActiveStatus() {
	case models.StageInProgress, models.StageScheduled:
		app.SetStageStatus(stage, models.StageCompleted)
		return app, nil
	}
	return app, commonerrors.NewInvalidTransitionError(
		fmt.Sprintf("cannot complete stage %d: status is %s, want %s or %s",
			stage, app.ActiveStatus(), models.StageInProgress, models.StageScheduled))
}

// MarkStageFailed records a failed stage outcome: the stage status becomes
// FAILED and the application is rejected in the same transition. The stage
// number freezes where it is.
func MarkStageFailed(app models.Application, stage models.Stage, reason string) (models.Application, error) {
	if err := checkStageAction(app, stage); err != nil {
		return app, err
	}
	app.SetStageStatus(stage, models.StageFailed)
	app.OverallStatus = models.StatusRejected
	app.Feedback = appendAnnotation(app.Feedback, reason)
	return app, nil
}

// ScheduleStage moves the current stage from NOT_STARTED or PENDING to
// SCHEDULED (interview and test scheduling).
func ScheduleStage(app models.Application, stage models.Stage) (models.Application, error) {
	if err := checkStageAction(app, stage); err != nil {
		return app, err
	}
	switch app.ActiveStatus() {
	case models.StageNotStarted, models.StagePending:
		app.SetStageStatus(stage, models.StageScheduled)
		return app, nil
	}
	return app, commonerrors.NewInvalidTransitionError(
		fmt.Sprintf("cannot schedule stage %d: status is %s", stage, app.ActiveStatus()))
}

// StartStage moves the current stage from PENDING or SCHEDULED to IN_PROGRESS
// (a candidate opening their written or video test).
func StartStage(app models.Application, stage models.Stage) (models.Application, error) {
	if err := checkStageAction(app, stage); err != nil {
		return app, err
	}
	switch app.ActiveStatus() {
	case models.StagePending, models.StageScheduled:
		app.SetStageStatus(stage, models.StageInProgress)
		return app, nil
	}
	return app, commonerrors.NewInvalidTransitionError(
		fmt.Sprintf("cannot start stage %d: status is %s", stage, app.ActiveStatus()))
}

// Reject decides the application. Valid from any non-terminal state; stage
// statuses and currentStage freeze as-is and the reason joins the feedback
// annotations.
func Reject(app models.Application, reason string) (models.Application, error) {
	if app.OverallStatus.Terminal() {
		return app, commonerrors.NewInvalidTransitionError(
			fmt.Sprintf("application %s already decided: %s", app.ID, app.OverallStatus))
	}
	app.OverallStatus = models.StatusRejected
	app.Feedback = appendAnnotation(app.Feedback, reason)
	return app, nil
}

// Withdraw is the candidate-initiated counterpart of Reject.
func Withdraw(app models.Application) (models.Application, error) {
	if app.OverallStatus.Terminal() {
		return app, commonerrors.NewInvalidTransitionError(
			fmt.Sprintf("application %s already decided: %s", app.ID, app.OverallStatus))
	}
	app.OverallStatus = models.StatusWithdrawn
	return app, nil
}

func checkStageAction(app models.Application, stage models.Stage) error {
	if app.OverallStatus.Terminal() {
		return commonerrors.NewInvalidTransitionError(
			fmt.Sprintf("application %s already decided: %s", app.ID, app.OverallStatus))
	}
	if stage < models.MinStage || stage > models.MaxStage {
		return commonerrors.NewInvalidTransitionError(
			fmt.Sprintf("stage %d out of range [1,4]", stage))
	}
	if stage != app.CurrentStage {
		return commonerrors.NewInvalidTransitionError(
			fmt.Sprintf("stage %d is not the current stage %d", stage, app.CurrentStage))
	}
	return nil
}

func appendAnnotation(existing, note string) string {
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

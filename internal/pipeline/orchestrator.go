// internal/pipeline/orchestrator.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	commonerrors "talent-pipeline/internal/common/errors"
	"talent-pipeline/internal/common/logger"
	"talent-pipeline/internal/common/metrics"
	"talent-pipeline/internal/common/observability"
	"talent-pipeline/internal/models"
	"talent-pipeline/internal/notify"
	"talent-pipeline/internal/repository"
)

// ApplicationIndexer mirrors the search indexer surface the orchestrator
// needs. Indexing happens after the durable persist; failures are logged and
// never fail the operation.
type ApplicationIndexer interface {
	IndexApplication(ctx context.Context, app models.Application) error
}

// Orchestrator is the service-level façade over the transition engine, the
// repository gateway and the notification dispatcher. It holds no state
// between calls; all state lives in the external store.
type Orchestrator struct {
	repo       repository.ApplicationRepository
	dispatcher notify.Dispatcher
	indexer    ApplicationIndexer
	obs        *observability.Observability
	logger     logger.Logger

	now   func() time.Time
	newID func() string
}

func NewOrchestrator(repo repository.ApplicationRepository, dispatcher notify.Dispatcher, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     log.WithFields(map[string]interface{}{"component": "pipeline-orchestrator"}),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// WithIndexer attaches the secondary search index.
func (o *Orchestrator) WithIndexer(ix ApplicationIndexer) *Orchestrator {
	o.indexer = ix
	return o
}

// WithObservability attaches operation metrics.
func (o *Orchestrator) WithObservability(obs *observability.Observability) *Orchestrator {
	o.obs = obs
	return o
}

// ApplyInput carries what a candidate submits when applying to a job.
type ApplyInput struct {
	CandidateID string
	JobID       string
	CoverLetter string
}

// Apply constructs the initial application: stage 1 with applicationStatus
// COMPLETED (the act of applying completes the review-intake stage), the
// remaining stages NOT_STARTED, overall status ACTIVE. Fails with
// DUPLICATE_APPLICATION when a non-terminal application already exists for
// the candidate/job pair; that uniqueness is enforced here even if the remote
// store does not enforce it natively.
func (o *Orchestrator) Apply(ctx context.Context, in ApplyInput) (models.Application, error) {
	start := o.now()

	if in.CandidateID == "" || in.JobID == "" {
		return models.Application{}, commonerrors.NewValidationError("candidateId and jobId are required")
	}

	exists, err := o.repo.ActiveExists(ctx, in.CandidateID, in.JobID)
	if err != nil {
		o.recordOperation(ctx, "apply", "error")
		return models.Application{}, err
	}
	if exists {
		o.recordOperation(ctx, "apply", "duplicate")
		return models.Application{}, commonerrors.NewDuplicateApplicationError(in.CandidateID, in.JobID)
	}

	app := models.Application{
		ID:                o.newID(),
		CandidateID:       in.CandidateID,
		JobID:             in.JobID,
		AppliedAt:         o.now().UTC().Format(time.RFC3339),
		CurrentStage:      models.StageApplicationReview,
		OverallStatus:     models.StatusActive,
		ApplicationStatus: models.StageCompleted,
		WrittenTestStatus: models.StageNotStarted,
		VideoTestStatus:   models.StageNotStarted,
		InterviewStatus:   models.StageNotStarted,
	}
	if in.CoverLetter != "" {
		app.Feedback = "Cover Letter: " + in.CoverLetter
	}
	if err := app.Validate(); err != nil {
		return models.Application{}, commonerrors.NewValidationError(err.Error())
	}

	created, err := o.repo.Create(ctx, app)
	if err != nil {
		o.recordOperation(ctx, "apply", "error")
		return models.Application{}, err
	}

	o.dispatch(ctx, created, "", "Your application has been submitted successfully. We will review it and get back to you soon.")
	o.index(ctx, created)

	o.logger.Info("application created", map[string]interface{}{
		"applicationId": created.ID,
		"candidateId":   created.CandidateID,
		"jobId":         created.JobID,
	})
	o.recordOperation(ctx, "apply", "success")
	o.recordDuration(ctx, "apply", o.now().Sub(start))
	return created, nil
}

// AdvanceStage applies the reviewer-triggered Advance action: the active
// stage must be COMPLETED; completing stage 4 yields HIRED.
func (o *Orchestrator) AdvanceStage(ctx context.Context, applicationID string) (models.Application, error) {
	return o.transition(ctx, "advance", applicationID, Advance)
}

// Reject decides the application with a reviewer-supplied reason.
func (o *Orchestrator) Reject(ctx context.Context, applicationID, reason string) (models.Application, error) {
	return o.transition(ctx, "reject", applicationID, func(app models.Application) (models.Application, error) {
		return Reject(app, reason)
	})
}

// Withdraw is the candidate-initiated terminal transition.
func (o *Orchestrator) Withdraw(ctx context.Context, applicationID string) (models.Application, error) {
	return o.transition(ctx, "withdraw", applicationID, Withdraw)
}

// RecordStageOutcome marks the stage COMPLETED when passed, or fails the
// stage and rejects the application when not.
func (o *Orchestrator) RecordStageOutcome(ctx context.Context, applicationID string, stage models.Stage, passed bool) (models.Application, error) {
	if passed {
		return o.transition(ctx, "stage-outcome", applicationID, func(app models.Application) (models.Application, error) {
			return MarkStageCompleted(app, stage)
		})
	}
	return o.transition(ctx, "stage-outcome", applicationID, func(app models.Application) (models.Application, error) {
		return MarkStageFailed(app, stage, fmt.Sprintf("failed stage %d", stage))
	})
}

// ScheduleStage moves the current stage to SCHEDULED.
func (o *Orchestrator) ScheduleStage(ctx context.Context, applicationID string, stage models.Stage) (models.Application, error) {
	return o.transition(ctx, "schedule", applicationID, func(app models.Application) (models.Application, error) {
		return ScheduleStage(app, stage)
	})
}

// StartStage moves the current stage to IN_PROGRESS.
func (o *Orchestrator) StartStage(ctx context.Context, applicationID string, stage models.Stage) (models.Application, error) {
	return o.transition(ctx, "start", applicationID, func(app models.Application) (models.Application, error) {
		return StartStage(app, stage)
	})
}

// NotesPatch updates the free-text annotations. Nil fields are left as-is.
type NotesPatch struct {
	Feedback      *string
	InternalNotes *string
}

// UpdateNotes writes reviewer annotations. Annotations are not state-bearing,
// so this is permitted in any state, terminal included.
func (o *Orchestrator) UpdateNotes(ctx context.Context, applicationID string, patch NotesPatch) (models.Application, error) {
	app, err := o.repo.GetByID(ctx, applicationID)
	if err != nil {
		return models.Application{}, err
	}
	if patch.Feedback != nil {
		app.Feedback = *patch.Feedback
	}
	if patch.InternalNotes != nil {
		app.InternalNotes = *patch.InternalNotes
	}
	updated, err := o.repo.Update(ctx, app)
	if err != nil {
		return models.Application{}, err
	}
	o.index(ctx, updated)
	return updated, nil
}

// GetApplication loads one application.
func (o *Orchestrator) GetApplication(ctx context.Context, applicationID string) (models.Application, error) {
	return o.repo.GetByID(ctx, applicationID)
}

// ListByCandidate returns the candidate's applications; ordering unspecified.
func (o *Orchestrator) ListByCandidate(ctx context.Context, candidateID string) ([]models.Application, error) {
	return o.repo.List(ctx, repository.Filter{CandidateID: candidateID})
}

// ListByJob returns the job's applications; ordering unspecified.
func (o *Orchestrator) ListByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	return o.repo.List(ctx, repository.Filter{JobID: jobID})
}

// List returns applications matching the filter.
func (o *Orchestrator) List(ctx context.Context, filter repository.Filter) ([]models.Application, error) {
	return o.repo.List(ctx, filter)
}

// transition runs the atomic load → engine → persist → notify sequence.
// Repository failures abort the whole operation with the persisted state
// unchanged; dispatcher and indexer failures are swallowed because the
// transition is already durable by then.
func (o *Orchestrator) transition(ctx context.Context, operation, applicationID string, fn func(models.Application) (models.Application, error)) (models.Application, error) {
	start := o.now()

	current, err := o.repo.GetByID(ctx, applicationID)
	if err != nil {
		o.recordOperation(ctx, operation, "error")
		return models.Application{}, err
	}

	next, err := fn(current)
	if err != nil {
		o.recordOperation(ctx, operation, "invalid")
		return models.Application{}, err
	}

	updated, err := o.repo.Update(ctx, next)
	if err != nil {
		o.recordOperation(ctx, operation, "error")
		return models.Application{}, err
	}

	statusChanged := updated.OverallStatus != current.OverallStatus
	stageChanged := updated.CurrentStage != current.CurrentStage
	if statusChanged || stageChanged {
		message := NextStepsMessage(updated.OverallStatus, updated.CurrentStage)
		o.dispatch(ctx, updated, current.OverallStatus, message)
	}
	o.index(ctx, updated)

	o.logger.Info("transition applied", map[string]interface{}{
		"operation":     operation,
		"applicationId": updated.ID,
		"currentStage":  int(updated.CurrentStage),
		"overallStatus": string(updated.OverallStatus),
	})
	o.recordOperation(ctx, operation, "success")
	o.recordDuration(ctx, operation, o.now().Sub(start))
	return updated, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, app models.Application, oldStatus models.OverallStatus, message string) {
	if o.dispatcher == nil {
		return
	}
	change := notify.StatusChange{
		CandidateID:   app.CandidateID,
		ApplicationID: app.ID,
		OldStatus:     oldStatus,
		NewStatus:     app.OverallStatus,
		Message:       message,
	}
	if err := o.dispatcher.NotifyStatusChange(ctx, change); err != nil {
		o.logger.Warn("notification dispatch failed", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
			"newStatus":     string(app.OverallStatus),
		})
	}
}

func (o *Orchestrator) index(ctx context.Context, app models.Application) {
	if o.indexer == nil {
		return
	}
	if err := o.indexer.IndexApplication(ctx, app); err != nil {
		o.logger.Warn("search indexing failed", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}
}

func (o *Orchestrator) recordOperation(ctx context.Context, operation, outcome string) {
	metrics.TransitionsApplied.WithLabelValues(operation, outcome).Inc()
	if o.obs != nil {
		o.obs.RecordOperation(ctx, operation, outcome)
	}
}

func (o *Orchestrator) recordDuration(ctx context.Context, operation string, d time.Duration) {
	if o.obs != nil {
		o.obs.RecordOperationDuration(ctx, operation, d)
	}
}

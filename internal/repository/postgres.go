// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	commonerrors "talent-pipeline/internal/common/errors"
	"talent-pipeline/internal/common/logger"
	"talent-pipeline/internal/models"
)

const applicationColumns = `id, candidate_id, job_id, applied_at, current_stage,
	overall_status, application_status, written_test_status, video_test_status,
	interview_status, feedback, internal_notes, version, created_at, updated_at`

// PostgresRepository is the production ApplicationRepository backed by the
// applications table. Concurrent writers are detected through the version
// column: every UPDATE is conditioned on the version read with the row.
type PostgresRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresRepository(db *sql.DB, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-repository"}),
	}
}

func (r *PostgresRepository) Create(ctx context.Context, app models.Application) (models.Application, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	app.Version = 1
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, candidate_id, job_id, applied_at, current_stage,
			overall_status, application_status, written_test_status,
			video_test_status, interview_status, feedback, internal_notes,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`,
		app.ID,
		app.CandidateID,
		app.JobID,
		app.AppliedAt,
		int(app.CurrentStage),
		string(app.OverallStatus),
		string(app.ApplicationStatus),
		string(app.WrittenTestStatus),
		string(app.VideoTestStatus),
		string(app.InterviewStatus),
		app.Feedback,
		app.InternalNotes,
		app.Version,
		now,
	)
	if err != nil {
		return models.Application{}, commonerrors.NewRemoteUnavailableError(err)
	}

	r.writeAuditLog(ctx, "application_created", app.ID, map[string]interface{}{
		"candidateId": app.CandidateID,
		"jobId":       app.JobID,
	})

	return app, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (models.Application, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE id = $1`, id)

	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Application{}, commonerrors.NewNotFoundError(id)
	}
	if err != nil {
		return models.Application{}, commonerrors.NewRemoteUnavailableError(err)
	}
	return app, nil
}

func (r *PostgresRepository) Update(ctx context.Context, app models.Application) (models.Application, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := r.db.ExecContext(ctx, `
		UPDATE applications SET
			current_stage = $3,
			overall_status = $4,
			application_status = $5,
			written_test_status = $6,
			video_test_status = $7,
			interview_status = $8,
			feedback = $9,
			internal_notes = $10,
			version = version + 1,
			updated_at = $11
		WHERE id = $1 AND version = $2`,
		app.ID,
		app.Version,
		int(app.CurrentStage),
		string(app.OverallStatus),
		string(app.ApplicationStatus),
		string(app.WrittenTestStatus),
		string(app.VideoTestStatus),
		string(app.InterviewStatus),
		app.Feedback,
		app.InternalNotes,
		now,
	)
	if err != nil {
		return models.Application{}, commonerrors.NewRemoteUnavailableError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.Application{}, commonerrors.NewRemoteUnavailableError(err)
	}
	if affected == 0 {
		// Row is either missing or was updated by a concurrent writer.
		var exists bool
		err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, app.ID).Scan(&exists)
		if err != nil {
			return models.Application{}, commonerrors.NewRemoteUnavailableError(err)
		}
		if !exists {
			return models.Application{}, commonerrors.NewNotFoundError(app.ID)
		}
		return models.Application{}, commonerrors.NewConflictError(app.ID)
	}

	app.Version++
	app.UpdatedAt = now

	r.writeAuditLog(ctx, "application_updated", app.ID, map[string]interface{}{
		"currentStage":  int(app.CurrentStage),
		"overallStatus": string(app.OverallStatus),
		"version":       app.Version,
	})

	return app, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications`
	var args []interface{}
	var where []string

	if filter.CandidateID != "" {
		args = append(args, filter.CandidateID)
		where = append(where, "candidate_id = $"+strconv.Itoa(len(args)))
	}
	if filter.JobID != "" {
		args = append(args, filter.JobID)
		where = append(where, "job_id = $"+strconv.Itoa(len(args)))
	}
	if filter.OverallStatus != "" {
		args = append(args, string(filter.OverallStatus))
		where = append(where, "overall_status = $"+strconv.Itoa(len(args)))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, commonerrors.NewRemoteUnavailableError(err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, commonerrors.NewRemoteUnavailableError(err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewRemoteUnavailableError(err)
	}
	return apps, nil
}

func (r *PostgresRepository) ActiveExists(ctx context.Context, candidateID, jobID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE candidate_id = $1 AND job_id = $2 AND overall_status = $3
		)`, candidateID, jobID, string(models.StatusActive)).Scan(&exists)
	if err != nil {
		return false, commonerrors.NewRemoteUnavailableError(err)
	}
	return exists, nil
}

// writeAuditLog records a pipeline event. Non-critical: failures are logged,
// never surfaced.
func (r *PostgresRepository) writeAuditLog(ctx context.Context, eventType, applicationID string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType,
		"application",
		applicationID,
		detailsJSON,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		r.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": applicationID,
			"eventType":     eventType,
		})
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (models.Application, error) {
	var app models.Application
	var stage int
	var overall, appStatus, writtenStatus, videoStatus, interviewStatus string

	err := row.Scan(
		&app.ID,
		&app.CandidateID,
		&app.JobID,
		&app.AppliedAt,
		&stage,
		&overall,
		&appStatus,
		&writtenStatus,
		&videoStatus,
		&interviewStatus,
		&app.Feedback,
		&app.InternalNotes,
		&app.Version,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return models.Application{}, err
	}

	app.CurrentStage = models.Stage(stage)
	app.OverallStatus = models.OverallStatus(overall)
	app.ApplicationStatus = models.StageStatus(appStatus)
	app.WrittenTestStatus = models.StageStatus(writtenStatus)
	app.VideoTestStatus = models.StageStatus(videoStatus)
	app.InterviewStatus = models.StageStatus(interviewStatus)
	return app, nil
}

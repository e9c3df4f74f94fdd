// internal/repository/repository.go

// Package repository abstracts create/read/update access to the application
// store so the transition engine and orchestrator stay independently testable.
package repository

import (
	"context"

	"talent-pipeline/internal/models"
)

// Filter narrows List results. Zero-value fields are ignored. Result ordering
// is unspecified; callers must not rely on it.
type Filter struct {
	CandidateID   string
	JobID         string
	OverallStatus models.OverallStatus
}

// ApplicationRepository is the gateway to the remote application store.
//
// Update is conditioned on the Version read in the same operation: a
// concurrent writer that updated first causes Update to fail with a conflict
// error rather than overwrite. Implementations return the typed errors from
// internal/common/errors (APPLICATION_NOT_FOUND, CONCURRENT_MODIFICATION,
// REMOTE_UNAVAILABLE).
type ApplicationRepository interface {
	Create(ctx context.Context, app models.Application) (models.Application, error)
	GetByID(ctx context.Context, id string) (models.Application, error)
	Update(ctx context.Context, app models.Application) (models.Application, error)
	List(ctx context.Context, filter Filter) ([]models.Application, error)

	// ActiveExists reports whether a non-terminal application already exists
	// for the candidate/job pair. The orchestrator enforces this uniqueness
	// even when the remote store does not.
	ActiveExists(ctx context.Context, candidateID, jobID string) (bool, error)
}

// Matches reports whether an application satisfies the filter.
func (f Filter) Matches(app models.Application) bool {
	if f.CandidateID != "" && app.CandidateID != f.CandidateID {
		return false
	}
	if f.JobID != "" && app.JobID != f.JobID {
		return false
	}
	if f.OverallStatus != "" && app.OverallStatus != f.OverallStatus {
		return false
	}
	return true
}

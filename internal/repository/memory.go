// internal/repository/memory.go
package repository

import (
	"context"
	"sync"
	"time"

	commonerrors "talent-pipeline/internal/common/errors"
	"talent-pipeline/internal/models"
)

// MemoryRepository is an in-memory ApplicationRepository implementing the same
// contract as the Postgres gateway, version checks included. It backs the
// orchestrator tests and local development.
type MemoryRepository struct {
	mu   sync.RWMutex
	apps map[string]models.Application
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		apps: make(map[string]models.Application),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, app models.Application) (models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	app.Version = 1
	app.CreatedAt = now
	app.UpdatedAt = now
	r.apps[app.ID] = app
	return app, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.apps[id]
	if !ok {
		return models.Application{}, commonerrors.NewNotFoundError(id)
	}
	return app, nil
}

func (r *MemoryRepository) Update(ctx context.Context, app models.Application) (models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.apps[app.ID]
	if !ok {
		return models.Application{}, commonerrors.NewNotFoundError(app.ID)
	}
	if stored.Version != app.Version {
		return models.Application{}, commonerrors.NewConflictError(app.ID)
	}

	app.Version++
	app.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	r.apps[app.ID] = app
	return app, nil
}

func (r *MemoryRepository) List(ctx context.Context, filter Filter) ([]models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Application
	for _, app := range r.apps {
		if filter.Matches(app) {
			out = append(out, app)
		}
	}
	return out, nil
}

func (r *MemoryRepository) ActiveExists(ctx context.Context, candidateID, jobID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, app := range r.apps {
		if app.CandidateID == candidateID && app.JobID == jobID && app.OverallStatus == models.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

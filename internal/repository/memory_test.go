// internal/repository/memory_test.go
package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "talent-pipeline/internal/common/errors"
	"talent-pipeline/internal/models"
)

func seedApplication(id, candidateID, jobID string) models.Application {
	return models.Application{
		ID:                id,
		CandidateID:       candidateID,
		JobID:             jobID,
		AppliedAt:         "2025-01-15T10:00:00Z",
		CurrentStage:      models.StageApplicationReview,
		OverallStatus:     models.StatusActive,
		ApplicationStatus: models.StageCompleted,
		WrittenTestStatus: models.StageNotStarted,
		VideoTestStatus:   models.StageNotStarted,
		InterviewStatus:   models.StageNotStarted,
	}
}

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()

	created, err := repo.Create(context.Background(), seedApplication("app-001", "cand-001", "job-001"))
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)
	assert.NotEmpty(t, created.CreatedAt)

	loaded, err := repo.GetByID(context.Background(), "app-001")
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}

func TestMemoryRepository_GetByID_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.GetByID(context.Background(), "missing")

	assert.Error(t, err)
	assert.True(t, commonerrors.IsNotFound(err))
}

func TestMemoryRepository_Update_BumpsVersion(t *testing.T) {
	repo := NewMemoryRepository()
	created, err := repo.Create(context.Background(), seedApplication("app-001", "cand-001", "job-001"))
	require.NoError(t, err)

	created.OverallStatus = models.StatusRejected
	updated, err := repo.Update(context.Background(), created)

	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, models.StatusRejected, updated.OverallStatus)
}

func TestMemoryRepository_Update_StaleVersionConflict(t *testing.T) {
	repo := NewMemoryRepository()
	created, err := repo.Create(context.Background(), seedApplication("app-001", "cand-001", "job-001"))
	require.NoError(t, err)

	// Two readers load the same version; the first write wins.
	first := created
	second := created

	first.InternalNotes = "reviewer A"
	_, err = repo.Update(context.Background(), first)
	require.NoError(t, err)

	second.InternalNotes = "reviewer B"
	_, err = repo.Update(context.Background(), second)

	assert.Error(t, err)
	assert.True(t, commonerrors.IsConflict(err))

	// The losing write left no trace.
	stored, err := repo.GetByID(context.Background(), "app-001")
	require.NoError(t, err)
	assert.Equal(t, "reviewer A", stored.InternalNotes)
}

func TestMemoryRepository_Update_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.Update(context.Background(), seedApplication("ghost", "cand-001", "job-001"))

	assert.Error(t, err)
	assert.True(t, commonerrors.IsNotFound(err))
}

func TestMemoryRepository_List_Filtering(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, seedApplication("app-001", "cand-001", "job-001"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, seedApplication("app-002", "cand-001", "job-002"))
	require.NoError(t, err)
	rejected := seedApplication("app-003", "cand-002", "job-001")
	rejected.OverallStatus = models.StatusRejected
	_, err = repo.Create(ctx, rejected)
	require.NoError(t, err)

	all, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byCandidate, err := repo.List(ctx, Filter{CandidateID: "cand-001"})
	require.NoError(t, err)
	assert.Len(t, byCandidate, 2)

	byJobAndStatus, err := repo.List(ctx, Filter{JobID: "job-001", OverallStatus: models.StatusActive})
	require.NoError(t, err)
	require.Len(t, byJobAndStatus, 1)
	assert.Equal(t, "app-001", byJobAndStatus[0].ID)
}

func TestMemoryRepository_ActiveExists(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	exists, err := repo.ActiveExists(ctx, "cand-001", "job-001")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, seedApplication("app-001", "cand-001", "job-001"))
	require.NoError(t, err)

	exists, err = repo.ActiveExists(ctx, "cand-001", "job-001")
	require.NoError(t, err)
	assert.True(t, exists)

	// A terminal application does not block re-applying.
	withdrawn, err := repo.GetByID(ctx, "app-001")
	require.NoError(t, err)
	withdrawn.OverallStatus = models.StatusWithdrawn
	_, err = repo.Update(ctx, withdrawn)
	require.NoError(t, err)

	exists, err = repo.ActiveExists(ctx, "cand-001", "job-001")
	require.NoError(t, err)
	assert.False(t, exists)
}

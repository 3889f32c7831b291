package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

func TestCreateIgnoreDuplicateKeepsFirstRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepository(db)

	scheduleID := uuid.New()
	evaluatorID := uuid.New()

	first := models.Evaluation{ScheduleID: scheduleID, EvaluatorID: evaluatorID, Status: models.EvaluationStatusPending}
	created, err := repo.CreateIgnoreDuplicate(context.Background(), &first)
	require.NoError(t, err)
	require.True(t, created)

	duplicate := models.Evaluation{ScheduleID: scheduleID, EvaluatorID: evaluatorID, Status: models.EvaluationStatusPending}
	created, err = repo.CreateIgnoreDuplicate(context.Background(), &duplicate)
	require.NoError(t, err)
	require.False(t, created, "duplicate pair must be a silent no-op")

	existing, err := repo.GetByScheduleAndEvaluator(context.Background(), scheduleID, evaluatorID)
	require.NoError(t, err)
	require.Equal(t, first.ID, existing.ID)
}

func TestUpdateStatusStampsTimestampAtomically(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepository(db)

	evaluation := models.Evaluation{ScheduleID: uuid.New(), EvaluatorID: uuid.New(), Status: models.EvaluationStatusPending}
	_, err := repo.CreateIgnoreDuplicate(context.Background(), &evaluation)
	require.NoError(t, err)

	submittedAt := time.Now().UTC().Truncate(time.Second)
	err = repo.UpdateStatus(context.Background(), evaluation.ID, StatusUpdate{
		Status:      models.EvaluationStatusSubmitted,
		SubmittedAt: &submittedAt,
	})
	require.NoError(t, err)

	reloaded, err := repo.GetByID(context.Background(), evaluation.ID)
	require.NoError(t, err)
	require.Equal(t, models.EvaluationStatusSubmitted, reloaded.Status)
	require.NotNil(t, reloaded.SubmittedAt)
	require.Nil(t, reloaded.LockedAt)
}

func TestUpdateStatusUnknownIDReturnsNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepository(db)

	err := repo.UpdateStatus(context.Background(), uuid.New(), StatusUpdate{Status: models.EvaluationStatusSubmitted})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteCascadesScores(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepository(db)
	scores := NewScoreRepository(db)

	evaluation := models.Evaluation{ScheduleID: uuid.New(), EvaluatorID: uuid.New(), Status: models.EvaluationStatusPending}
	_, err := repo.CreateIgnoreDuplicate(context.Background(), &evaluation)
	require.NoError(t, err)

	require.NoError(t, scores.Upsert(context.Background(), &models.EvaluationScore{
		EvaluationID: evaluation.ID,
		CriterionID:  uuid.New(),
		Score:        12,
	}))

	require.NoError(t, repo.Delete(context.Background(), evaluation.ID))

	_, err = repo.GetByID(context.Background(), evaluation.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	remaining, err := scores.ListByEvaluation(context.Background(), evaluation.ID)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestListByScheduleIDsFiltersStatuses(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepository(db)

	scheduleID := uuid.New()
	submitted := models.Evaluation{ScheduleID: scheduleID, EvaluatorID: uuid.New(), Status: models.EvaluationStatusSubmitted}
	pending := models.Evaluation{ScheduleID: scheduleID, EvaluatorID: uuid.New(), Status: models.EvaluationStatusPending}
	_, err := repo.CreateIgnoreDuplicate(context.Background(), &submitted)
	require.NoError(t, err)
	_, err = repo.CreateIgnoreDuplicate(context.Background(), &pending)
	require.NoError(t, err)

	evaluations, err := repo.ListByScheduleIDs(context.Background(), []uuid.UUID{scheduleID}, []string{models.EvaluationStatusSubmitted, models.EvaluationStatusLocked})
	require.NoError(t, err)
	require.Len(t, evaluations, 1)
	require.Equal(t, submitted.ID, evaluations[0].ID)

	evaluations, err = repo.ListByScheduleIDs(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Empty(t, evaluations)
}

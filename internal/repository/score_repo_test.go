package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestScoreUpsertReplacesExistingPair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScoreRepository(db)

	evaluationID := uuid.New()
	criterionID := uuid.New()

	first := models.EvaluationScore{
		EvaluationID: evaluationID,
		CriterionID:  criterionID,
		Score:        10,
		Comment:      strPtr("solid start"),
	}
	require.NoError(t, repo.Upsert(context.Background(), &first))

	second := models.EvaluationScore{
		EvaluationID: evaluationID,
		CriterionID:  criterionID,
		Score:        17,
		Comment:      strPtr("revised after questions"),
	}
	require.NoError(t, repo.Upsert(context.Background(), &second))

	scores, err := repo.ListByEvaluation(context.Background(), evaluationID)
	require.NoError(t, err)
	require.Len(t, scores, 1, "same pair must replace, not append")
	require.Equal(t, float64(17), scores[0].Score)
	require.Equal(t, "revised after questions", *scores[0].Comment)
}

func TestScoreBulkUpsertWritesAllRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScoreRepository(db)

	evaluationID := uuid.New()
	batch := []models.EvaluationScore{
		{EvaluationID: evaluationID, CriterionID: uuid.New(), Score: 8},
		{EvaluationID: evaluationID, CriterionID: uuid.New(), Score: 15},
		{EvaluationID: evaluationID, CriterionID: uuid.New(), Score: 20},
	}
	require.NoError(t, repo.BulkUpsert(context.Background(), batch))

	// Re-running the same batch keeps the row count stable.
	batch[0].Score = 9
	require.NoError(t, repo.BulkUpsert(context.Background(), batch))

	scores, err := repo.ListByEvaluation(context.Background(), evaluationID)
	require.NoError(t, err)
	require.Len(t, scores, 3)
}

func TestScoreDeleteByEvaluationLeavesOthersAlone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScoreRepository(db)

	target := uuid.New()
	other := uuid.New()
	require.NoError(t, repo.Upsert(context.Background(), &models.EvaluationScore{EvaluationID: target, CriterionID: uuid.New(), Score: 5}))
	require.NoError(t, repo.Upsert(context.Background(), &models.EvaluationScore{EvaluationID: other, CriterionID: uuid.New(), Score: 6}))

	require.NoError(t, repo.DeleteByEvaluation(context.Background(), target))

	scores, err := repo.ListByEvaluation(context.Background(), target)
	require.NoError(t, err)
	require.Empty(t, scores)

	scores, err = repo.ListByEvaluation(context.Background(), other)
	require.NoError(t, err)
	require.Len(t, scores, 1)
}

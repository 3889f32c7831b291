package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

type scoreFixture struct {
	service     ScoreService
	evaluations repository.EvaluationRepository
}

func newScoreFixture(t *testing.T) scoreFixture {
	db := setupTestDB(t)
	evaluations := repository.NewEvaluationRepository(db)
	scores := repository.NewScoreRepository(db)
	return scoreFixture{
		service:     NewScoreService(scores, evaluations, testValidator(), testLogger()),
		evaluations: evaluations,
	}
}

func (f scoreFixture) evaluation(t *testing.T, evaluatorID uuid.UUID, status string) models.Evaluation {
	t.Helper()
	evaluation := models.Evaluation{
		ScheduleID:  uuid.New(),
		EvaluatorID: evaluatorID,
		Status:      status,
	}
	_, err := f.evaluations.CreateIgnoreDuplicate(context.Background(), &evaluation)
	require.NoError(t, err)
	return evaluation
}

func TestScoreUpsertByOwner(t *testing.T) {
	f := newScoreFixture(t)
	owner := Actor{ID: uuid.New(), Role: models.RoleStaff}
	evaluation := f.evaluation(t, owner.ID, models.EvaluationStatusPending)

	score, err := f.service.Upsert(context.Background(), owner, evaluation.ID.String(), dto.ScoreUpsertRequest{
		CriterionID: uuid.NewString(),
		Score:       14,
	})
	require.NoError(t, err)
	require.Equal(t, float64(14), score.Score)

	scores, err := f.service.List(context.Background(), evaluation.ID.String())
	require.NoError(t, err)
	require.Len(t, scores, 1)
}

func TestScoreUpsertOnLockedEvaluationRejected(t *testing.T) {
	f := newScoreFixture(t)
	owner := Actor{ID: uuid.New(), Role: models.RoleStaff}
	evaluation := f.evaluation(t, owner.ID, models.EvaluationStatusLocked)

	_, err := f.service.Upsert(context.Background(), owner, evaluation.ID.String(), dto.ScoreUpsertRequest{
		CriterionID: uuid.NewString(),
		Score:       14,
	})
	require.ErrorIs(t, err, ErrEvaluationLocked)
}

func TestScoreUpsertByNonOwnerForbidden(t *testing.T) {
	f := newScoreFixture(t)
	evaluation := f.evaluation(t, uuid.New(), models.EvaluationStatusPending)

	outsider := Actor{ID: uuid.New(), Role: models.RoleStaff}
	_, err := f.service.Upsert(context.Background(), outsider, evaluation.ID.String(), dto.ScoreUpsertRequest{
		CriterionID: uuid.NewString(),
		Score:       9,
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestScoreBulkUpsertWritesBatch(t *testing.T) {
	f := newScoreFixture(t)
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	evaluation := f.evaluation(t, uuid.New(), models.EvaluationStatusSubmitted)

	payload := dto.BulkScoreUpsertRequest{Scores: []dto.ScoreUpsertRequest{
		{CriterionID: uuid.NewString(), Score: 5},
		{CriterionID: uuid.NewString(), Score: 7},
	}}

	scores, err := f.service.BulkUpsert(context.Background(), admin, evaluation.ID.String(), payload)
	require.NoError(t, err)
	require.Len(t, scores, 2)
}

func TestScoreDeleteAllRequiresAdmin(t *testing.T) {
	f := newScoreFixture(t)

	err := f.service.DeleteAll(context.Background(), Actor{ID: uuid.New(), Role: models.RoleStaff}, uuid.NewString())
	require.ErrorIs(t, err, ErrForbidden)
}

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

func newStudentEvaluationService(t *testing.T) StudentEvaluationService {
	db := setupTestDB(t)
	repo := repository.NewStudentEvaluationRepository(db)
	return NewStudentEvaluationService(repo, testValidator(), testLogger())
}

func TestStudentEvaluationCreateDefaultsToActor(t *testing.T) {
	service := newStudentEvaluationService(t)
	student := studentActor()

	created, err := service.Create(context.Background(), student, dto.StudentEvaluationCreateRequest{
		ScheduleID: uuid.NewString(),
	})
	require.NoError(t, err)
	require.Equal(t, student.ID, created.StudentID)
	require.Equal(t, models.EvaluationStatusPending, created.Status)
}

func TestStudentEvaluationCreateForAnotherStudentForbidden(t *testing.T) {
	service := newStudentEvaluationService(t)

	_, err := service.Create(context.Background(), studentActor(), dto.StudentEvaluationCreateRequest{
		ScheduleID: uuid.NewString(),
		StudentID:  uuid.NewString(),
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestStudentEvaluationDuplicateCreateReturnsExisting(t *testing.T) {
	service := newStudentEvaluationService(t)
	student := studentActor()
	payload := dto.StudentEvaluationCreateRequest{ScheduleID: uuid.NewString()}

	first, err := service.Create(context.Background(), student, payload)
	require.NoError(t, err)

	second, err := service.Create(context.Background(), student, payload)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestStudentEvaluationAnswersLifecycle(t *testing.T) {
	service := newStudentEvaluationService(t)
	student := studentActor()

	created, err := service.Create(context.Background(), student, dto.StudentEvaluationCreateRequest{
		ScheduleID: uuid.NewString(),
	})
	require.NoError(t, err)

	answers := dto.StudentEvaluationAnswersRequest{
		Answers: map[string]interface{}{"q1": "clear presentation", "q2": 4},
	}
	saved, err := service.SaveAnswers(context.Background(), student, created.ID.String(), answers)
	require.NoError(t, err)
	require.Equal(t, "clear presentation", saved.Answers["q1"])

	submitted, err := service.Submit(context.Background(), student, created.ID.String())
	require.NoError(t, err)
	require.Equal(t, models.EvaluationStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	// Re-saving after submit is allowed; the record is still mutable.
	_, err = service.SaveAnswers(context.Background(), student, created.ID.String(), answers)
	require.NoError(t, err)

	locked, err := service.Lock(context.Background(), staffActor(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, models.EvaluationStatusLocked, locked.Status)

	_, err = service.SaveAnswers(context.Background(), student, created.ID.String(), answers)
	require.ErrorIs(t, err, ErrEvaluationLocked)
	_, err = service.Submit(context.Background(), student, created.ID.String())
	require.ErrorIs(t, err, ErrEvaluationLocked)
}

func TestStudentEvaluationLockRejectsStudents(t *testing.T) {
	service := newStudentEvaluationService(t)
	student := studentActor()

	created, err := service.Create(context.Background(), student, dto.StudentEvaluationCreateRequest{
		ScheduleID: uuid.NewString(),
	})
	require.NoError(t, err)

	_, err = service.Lock(context.Background(), student, created.ID.String())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestStudentEvaluationGetHidesOtherStudents(t *testing.T) {
	service := newStudentEvaluationService(t)
	owner := studentActor()

	created, err := service.Create(context.Background(), owner, dto.StudentEvaluationCreateRequest{
		ScheduleID: uuid.NewString(),
	})
	require.NoError(t, err)

	_, err = service.Get(context.Background(), studentActor(), created.ID.String())
	require.ErrorIs(t, err, ErrForbidden)

	visible, err := service.Get(context.Background(), staffActor(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, created.ID, visible.ID)
}

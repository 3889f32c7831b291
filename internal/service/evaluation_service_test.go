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

type recordingDispatcher struct {
	events []LifecycleEvent
}

func (d *recordingDispatcher) Dispatch(_ context.Context, event LifecycleEvent) {
	d.events = append(d.events, event)
}

type recordingInvalidator struct {
	calls int
}

func (r *recordingInvalidator) Invalidate(context.Context) {
	r.calls++
}

type lifecycleFixture struct {
	service     EvaluationService
	repo        repository.EvaluationRepository
	schedules   repository.ScheduleRepository
	dispatcher  *recordingDispatcher
	invalidator *recordingInvalidator
}

func newLifecycleFixture(t *testing.T) lifecycleFixture {
	db := setupTestDB(t)
	repo := repository.NewEvaluationRepository(db)
	schedules := repository.NewScheduleRepository(db)
	dispatcher := &recordingDispatcher{}
	invalidator := &recordingInvalidator{}
	return lifecycleFixture{
		service:     NewEvaluationService(repo, schedules, testValidator(), dispatcher, invalidator, testLogger()),
		repo:        repo,
		schedules:   schedules,
		dispatcher:  dispatcher,
		invalidator: invalidator,
	}
}

func staffActor() Actor   { return Actor{ID: uuid.New(), Role: models.RoleStaff} }
func adminActor() Actor   { return Actor{ID: uuid.New(), Role: models.RoleAdmin} }
func studentActor() Actor { return Actor{ID: uuid.New(), Role: models.RoleStudent} }

func TestCreateRejectsStudents(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.service.Create(context.Background(), studentActor(), dto.EvaluationCreateRequest{
		ScheduleID:  uuid.NewString(),
		EvaluatorID: uuid.NewString(),
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateDuplicatePairReturnsExistingRow(t *testing.T) {
	f := newLifecycleFixture(t)
	payload := dto.EvaluationCreateRequest{
		ScheduleID:  uuid.NewString(),
		EvaluatorID: uuid.NewString(),
	}

	first, err := f.service.Create(context.Background(), staffActor(), payload)
	require.NoError(t, err)

	second, err := f.service.Create(context.Background(), staffActor(), payload)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "duplicate create must return the original row")
}

func TestSubmitStampsAndNotifies(t *testing.T) {
	f := newLifecycleFixture(t)
	evaluator := staffActor()

	created, err := f.service.Create(context.Background(), evaluator, dto.EvaluationCreateRequest{
		ScheduleID:  uuid.NewString(),
		EvaluatorID: evaluator.ID.String(),
	})
	require.NoError(t, err)

	submitted, err := f.service.Submit(context.Background(), evaluator, created.ID.String())
	require.NoError(t, err)
	require.Equal(t, models.EvaluationStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	require.Len(t, f.dispatcher.events, 1)
	require.Equal(t, created.ID, f.dispatcher.events[0].EvaluationID)
	require.Equal(t, models.EvaluationStatusSubmitted, f.dispatcher.events[0].Status)
	require.Equal(t, 1, f.invalidator.calls)

	// Re-submission refreshes the timestamp without notifying again.
	resubmitted, err := f.service.Submit(context.Background(), evaluator, created.ID.String())
	require.NoError(t, err)
	require.Equal(t, models.EvaluationStatusSubmitted, resubmitted.Status)
	require.Len(t, f.dispatcher.events, 1)
	require.Equal(t, 1, f.invalidator.calls)
}

func TestSubmitByOtherEvaluatorForbidden(t *testing.T) {
	f := newLifecycleFixture(t)
	owner := staffActor()

	created, err := f.service.Create(context.Background(), owner, dto.EvaluationCreateRequest{
		ScheduleID:  uuid.NewString(),
		EvaluatorID: owner.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), staffActor(), created.ID.String())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitOnLockedEvaluationRejected(t *testing.T) {
	f := newLifecycleFixture(t)
	evaluator := staffActor()

	created, err := f.service.Create(context.Background(), evaluator, dto.EvaluationCreateRequest{
		ScheduleID:  uuid.NewString(),
		EvaluatorID: evaluator.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.service.Lock(context.Background(), adminActor(), created.ID.String())
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), evaluator, created.ID.String())
	require.ErrorIs(t, err, ErrEvaluationLocked)
}

func TestLockIsIdempotent(t *testing.T) {
	f := newLifecycleFixture(t)
	evaluator := staffActor()

	created, err := f.service.Create(context.Background(), evaluator, dto.EvaluationCreateRequest{
		ScheduleID:  uuid.NewString(),
		EvaluatorID: evaluator.ID.String(),
	})
	require.NoError(t, err)

	first, err := f.service.Lock(context.Background(), adminActor(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, models.EvaluationStatusLocked, first.Status)

	second, err := f.service.Lock(context.Background(), adminActor(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, models.EvaluationStatusLocked, second.Status)
	require.NotNil(t, second.LockedAt)
	require.Len(t, f.dispatcher.events, 1, "re-locking a locked evaluation is not a transition")
}

func TestLockRejectsStudents(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.service.Lock(context.Background(), studentActor(), uuid.NewString())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteRequiresAdmin(t *testing.T) {
	f := newLifecycleFixture(t)

	err := f.service.Delete(context.Background(), staffActor(), uuid.NewString())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSeedPanelCreatesOnePerPanelist(t *testing.T) {
	f := newLifecycleFixture(t)

	schedule := models.DefenseSchedule{GroupID: uuid.New()}
	require.NoError(t, f.schedules.Create(context.Background(), &schedule))

	panelistA := uuid.New()
	panelistB := uuid.New()
	require.NoError(t, f.schedules.ReplacePanelists(context.Background(), schedule.ID, []uuid.UUID{panelistA, panelistB}))

	evaluations, err := f.service.SeedPanel(context.Background(), staffActor(), schedule.ID.String())
	require.NoError(t, err)
	require.Len(t, evaluations, 2)

	// Re-seeding skips existing pairs instead of duplicating them.
	evaluations, err = f.service.SeedPanel(context.Background(), staffActor(), schedule.ID.String())
	require.NoError(t, err)
	require.Len(t, evaluations, 2)
}

func TestSeedPanelUnknownSchedule(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.service.SeedPanel(context.Background(), staffActor(), uuid.NewString())
	require.ErrorIs(t, err, ErrScheduleNotFound)
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/observability"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

// ErrEvaluationLocked indicates a mutation was attempted on a locked
// evaluation. Locked is terminal; no transition leaves it.
var ErrEvaluationLocked = errors.New("evaluation is locked")

// RankingInvalidator drops any cached ranking after a lifecycle transition.
type RankingInvalidator interface {
	Invalidate(ctx context.Context)
}

// EvaluationService drives the pending → submitted → locked lifecycle for
// panel evaluations.
type EvaluationService interface {
	// Create inserts a pending evaluation for a (schedule, evaluator) pair.
	// A duplicate pair is a silent no-op that returns the existing row.
	Create(ctx context.Context, actor Actor, payload dto.EvaluationCreateRequest) (dto.EvaluationResponse, error)
	Get(ctx context.Context, id string) (dto.EvaluationResponse, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]dto.EvaluationResponse, error)
	// Submit stamps submitted_at and moves to submitted. Valid from pending
	// and re-entrant from submitted; rejected once locked.
	Submit(ctx context.Context, actor Actor, id string) (dto.EvaluationResponse, error)
	// Lock stamps locked_at and freezes the evaluation. Staff or admin only,
	// idempotent: locking an already-locked evaluation overwrites in place.
	Lock(ctx context.Context, actor Actor, id string) (dto.EvaluationResponse, error)
	// Delete hard-deletes the evaluation and cascades to its scores.
	Delete(ctx context.Context, actor Actor, id string) error
	// SeedPanel creates a pending evaluation for every panelist on the
	// schedule, skipping pairs that already exist.
	SeedPanel(ctx context.Context, actor Actor, scheduleID string) ([]dto.EvaluationResponse, error)
}

type evaluationService struct {
	repo       repository.EvaluationRepository
	schedules  repository.ScheduleRepository
	validator  *validator.Validate
	dispatcher NotificationDispatcher
	rankings   RankingInvalidator
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewEvaluationService builds the lifecycle service. Dispatcher and rankings
// are optional side-effect collaborators; transitions commit without them.
func NewEvaluationService(
	repo repository.EvaluationRepository,
	schedules repository.ScheduleRepository,
	validate *validator.Validate,
	dispatcher NotificationDispatcher,
	rankings RankingInvalidator,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		repo:       repo,
		schedules:  schedules,
		validator:  validate,
		dispatcher: dispatcher,
		rankings:   rankings,
		logger:     logger.With().Str("component", "evaluation_service").Logger(),
		tracer:     otel.Tracer("github.com/rubrica-dev/rubrica-api/internal/service/evaluation"),
		now:        time.Now,
	}
}

func (s *evaluationService) Create(ctx context.Context, actor Actor, payload dto.EvaluationCreateRequest) (dto.EvaluationResponse, error) {
	if !actor.IsStaff() {
		return dto.EvaluationResponse{}, ErrForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationResponse{}, err
	}

	scheduleID, err := ParseID(payload.ScheduleID)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	evaluatorID, err := ParseID(payload.EvaluatorID)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	evaluation := models.Evaluation{
		ScheduleID:  scheduleID,
		EvaluatorID: evaluatorID,
		Status:      models.EvaluationStatusPending,
	}
	if payload.TemplateID != nil {
		templateID, err := ParseID(*payload.TemplateID)
		if err != nil {
			return dto.EvaluationResponse{}, err
		}
		evaluation.TemplateID = &templateID
	}

	created, err := s.repo.CreateIgnoreDuplicate(ctx, &evaluation)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	if !created {
		existing, err := s.repo.GetByScheduleAndEvaluator(ctx, scheduleID, evaluatorID)
		if err != nil {
			return dto.EvaluationResponse{}, err
		}
		return dto.NewEvaluationResponse(existing), nil
	}

	s.logger.Info().
		Str("evaluation_id", evaluation.ID.String()).
		Str("schedule_id", scheduleID.String()).
		Msg("evaluation created")
	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) Get(ctx context.Context, id string) (dto.EvaluationResponse, error) {
	evaluationID, err := ParseID(id)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	evaluation, err := s.repo.GetByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}
	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) ListBySchedule(ctx context.Context, scheduleID string) ([]dto.EvaluationResponse, error) {
	id, err := ParseID(scheduleID)
	if err != nil {
		return nil, err
	}

	evaluations, err := s.repo.ListBySchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewEvaluationResponseSlice(evaluations), nil
}

func (s *evaluationService) Submit(ctx context.Context, actor Actor, id string) (dto.EvaluationResponse, error) {
	evaluationID, err := ParseID(id)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "evaluation.submit", trace.WithAttributes(
		attribute.String("evaluation.id", evaluationID.String()),
	))
	defer span.End()

	evaluation, err := s.repo.GetByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	if !actor.IsAdmin() && evaluation.EvaluatorID != actor.ID {
		return dto.EvaluationResponse{}, ErrForbidden
	}
	if evaluation.IsLocked() {
		span.SetAttributes(attribute.Bool("evaluation.rejected_locked", true))
		return dto.EvaluationResponse{}, ErrEvaluationLocked
	}

	previousStatus := evaluation.Status
	submittedAt := s.now().UTC()
	update := repository.StatusUpdate{
		Status:      models.EvaluationStatusSubmitted,
		SubmittedAt: &submittedAt,
	}
	if err := s.repo.UpdateStatus(ctx, evaluationID, update); err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	evaluation.Status = models.EvaluationStatusSubmitted
	evaluation.SubmittedAt = &submittedAt

	// A re-submission only refreshes the timestamp; students are not
	// notified again and the cached ranking is unaffected.
	if previousStatus != models.EvaluationStatusSubmitted {
		s.afterTransition(ctx, evaluation)
		observability.LifecycleTransitions().WithLabelValues("evaluation", models.EvaluationStatusSubmitted).Inc()
	}
	s.logger.Info().Str("evaluation_id", evaluationID.String()).Msg("evaluation submitted")
	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) Lock(ctx context.Context, actor Actor, id string) (dto.EvaluationResponse, error) {
	if !actor.IsStaff() {
		return dto.EvaluationResponse{}, ErrForbidden
	}

	evaluationID, err := ParseID(id)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "evaluation.lock", trace.WithAttributes(
		attribute.String("evaluation.id", evaluationID.String()),
	))
	defer span.End()

	evaluation, err := s.repo.GetByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	previousStatus := evaluation.Status
	lockedAt := s.now().UTC()
	update := repository.StatusUpdate{
		Status:   models.EvaluationStatusLocked,
		LockedAt: &lockedAt,
	}
	if err := s.repo.UpdateStatus(ctx, evaluationID, update); err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	evaluation.Status = models.EvaluationStatusLocked
	evaluation.LockedAt = &lockedAt

	if previousStatus != models.EvaluationStatusLocked {
		s.afterTransition(ctx, evaluation)
		observability.LifecycleTransitions().WithLabelValues("evaluation", models.EvaluationStatusLocked).Inc()
	}
	s.logger.Info().Str("evaluation_id", evaluationID.String()).Msg("evaluation locked")
	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	evaluationID, err := ParseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, evaluationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEvaluationNotFound
		}
		return err
	}

	if s.rankings != nil {
		s.rankings.Invalidate(ctx)
	}
	s.logger.Info().Str("evaluation_id", evaluationID.String()).Msg("evaluation deleted")
	return nil
}

func (s *evaluationService) SeedPanel(ctx context.Context, actor Actor, scheduleID string) ([]dto.EvaluationResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	id, err := ParseID(scheduleID)
	if err != nil {
		return nil, err
	}

	if _, err := s.schedules.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	panelistIDs, err := s.schedules.ListPanelistIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, panelistID := range panelistIDs {
		evaluation := models.Evaluation{
			ScheduleID:  id,
			EvaluatorID: panelistID,
			Status:      models.EvaluationStatusPending,
		}
		if _, err := s.repo.CreateIgnoreDuplicate(ctx, &evaluation); err != nil {
			return nil, err
		}
	}

	evaluations, err := s.repo.ListBySchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("schedule_id", id.String()).
		Int("panelists", len(panelistIDs)).
		Msg("panel evaluations seeded")
	return dto.NewEvaluationResponseSlice(evaluations), nil
}

// afterTransition runs the best-effort side effects of a committed submit or
// lock: student notification fan-out and ranking cache invalidation. Neither
// may fail the transition.
func (s *evaluationService) afterTransition(ctx context.Context, evaluation models.Evaluation) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, LifecycleEvent{
			EvaluationID: evaluation.ID,
			ScheduleID:   evaluation.ScheduleID,
			Status:       evaluation.Status,
		})
	}
	if s.rankings != nil {
		s.rankings.Invalidate(ctx)
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/observability"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

// ErrStudentEvaluationNotFound indicates the feedback record does not exist.
var ErrStudentEvaluationNotFound = errors.New("student evaluation not found")

// StudentEvaluationService drives the lifecycle of student feedback records.
// Students only touch their own record; staff and admin may lock any.
type StudentEvaluationService interface {
	Create(ctx context.Context, actor Actor, payload dto.StudentEvaluationCreateRequest) (dto.StudentEvaluationResponse, error)
	Get(ctx context.Context, actor Actor, id string) (dto.StudentEvaluationResponse, error)
	ListBySchedule(ctx context.Context, actor Actor, scheduleID string) ([]dto.StudentEvaluationResponse, error)
	// SaveAnswers re-saves the opaque feedback payload. Allowed while the
	// record is pending or submitted; a locked record is immutable.
	SaveAnswers(ctx context.Context, actor Actor, id string, payload dto.StudentEvaluationAnswersRequest) (dto.StudentEvaluationResponse, error)
	Submit(ctx context.Context, actor Actor, id string) (dto.StudentEvaluationResponse, error)
	Lock(ctx context.Context, actor Actor, id string) (dto.StudentEvaluationResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type studentEvaluationService struct {
	repo      repository.StudentEvaluationRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStudentEvaluationService builds the student feedback service.
func NewStudentEvaluationService(repo repository.StudentEvaluationRepository, validate *validator.Validate, logger zerolog.Logger) StudentEvaluationService {
	return &studentEvaluationService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "student_evaluation_service").Logger(),
		now:       time.Now,
	}
}

func (s *studentEvaluationService) Create(ctx context.Context, actor Actor, payload dto.StudentEvaluationCreateRequest) (dto.StudentEvaluationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentEvaluationResponse{}, err
	}

	scheduleID, err := ParseID(payload.ScheduleID)
	if err != nil {
		return dto.StudentEvaluationResponse{}, err
	}

	studentID := actor.ID
	if payload.StudentID != "" {
		parsed, err := ParseID(payload.StudentID)
		if err != nil {
			return dto.StudentEvaluationResponse{}, err
		}
		// A student can only open their own feedback record.
		if actor.IsStudent() && parsed != actor.ID {
			return dto.StudentEvaluationResponse{}, ErrForbidden
		}
		studentID = parsed
	}

	evaluation := models.StudentEvaluation{
		ScheduleID: scheduleID,
		StudentID:  studentID,
		Status:     models.EvaluationStatusPending,
	}

	created, err := s.repo.CreateIgnoreDuplicate(ctx, &evaluation)
	if err != nil {
		return dto.StudentEvaluationResponse{}, err
	}
	if !created {
		existing, err := s.repo.GetByScheduleAndStudent(ctx, scheduleID, studentID)
		if err != nil {
			return dto.StudentEvaluationResponse{}, err
		}
		return dto.NewStudentEvaluationResponse(existing), nil
	}

	s.logger.Info().
		Str("student_evaluation_id", evaluation.ID.String()).
		Str("schedule_id", scheduleID.String()).
		Msg("student evaluation created")
	return dto.NewStudentEvaluationResponse(evaluation), nil
}

func (s *studentEvaluationService) Get(ctx context.Context, actor Actor, id string) (dto.StudentEvaluationResponse, error) {
	evaluation, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentEvaluationResponse{}, err
	}

	if actor.IsStudent() && evaluation.StudentID != actor.ID {
		return dto.StudentEvaluationResponse{}, ErrForbidden
	}
	return dto.NewStudentEvaluationResponse(evaluation), nil
}

func (s *studentEvaluationService) ListBySchedule(ctx context.Context, actor Actor, scheduleID string) ([]dto.StudentEvaluationResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	id, err := ParseID(scheduleID)
	if err != nil {
		return nil, err
	}

	evaluations, err := s.repo.ListBySchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentEvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, dto.NewStudentEvaluationResponse(evaluation))
	}
	return responses, nil
}

func (s *studentEvaluationService) SaveAnswers(ctx context.Context, actor Actor, id string, payload dto.StudentEvaluationAnswersRequest) (dto.StudentEvaluationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentEvaluationResponse{}, err
	}

	evaluation, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentEvaluationResponse{}, err
	}

	if !actor.IsAdmin() && evaluation.StudentID != actor.ID {
		return dto.StudentEvaluationResponse{}, ErrForbidden
	}
	if evaluation.IsLocked() {
		return dto.StudentEvaluationResponse{}, ErrEvaluationLocked
	}

	answers := make(map[string]interface{}, len(payload.Answers))
	for key, value := range payload.Answers {
		answers[key] = value
	}

	if err := s.repo.UpdateAnswers(ctx, evaluation.ID, answers); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentEvaluationResponse{}, ErrStudentEvaluationNotFound
		}
		return dto.StudentEvaluationResponse{}, err
	}

	evaluation.Answers = answers
	return dto.NewStudentEvaluationResponse(evaluation), nil
}

func (s *studentEvaluationService) Submit(ctx context.Context, actor Actor, id string) (dto.StudentEvaluationResponse, error) {
	evaluation, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentEvaluationResponse{}, err
	}

	if !actor.IsAdmin() && evaluation.StudentID != actor.ID {
		return dto.StudentEvaluationResponse{}, ErrForbidden
	}
	if evaluation.IsLocked() {
		return dto.StudentEvaluationResponse{}, ErrEvaluationLocked
	}

	submittedAt := s.now().UTC()
	update := repository.StatusUpdate{
		Status:      models.EvaluationStatusSubmitted,
		SubmittedAt: &submittedAt,
	}
	if err := s.repo.UpdateStatus(ctx, evaluation.ID, update); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentEvaluationResponse{}, ErrStudentEvaluationNotFound
		}
		return dto.StudentEvaluationResponse{}, err
	}

	evaluation.Status = models.EvaluationStatusSubmitted
	evaluation.SubmittedAt = &submittedAt

	observability.LifecycleTransitions().WithLabelValues("student_evaluation", models.EvaluationStatusSubmitted).Inc()
	s.logger.Info().Str("student_evaluation_id", evaluation.ID.String()).Msg("student evaluation submitted")
	return dto.NewStudentEvaluationResponse(evaluation), nil
}

func (s *studentEvaluationService) Lock(ctx context.Context, actor Actor, id string) (dto.StudentEvaluationResponse, error) {
	// Students never lock, not even their own record.
	if !actor.IsStaff() {
		return dto.StudentEvaluationResponse{}, ErrForbidden
	}

	evaluation, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentEvaluationResponse{}, err
	}

	lockedAt := s.now().UTC()
	update := repository.StatusUpdate{
		Status:   models.EvaluationStatusLocked,
		LockedAt: &lockedAt,
	}
	if err := s.repo.UpdateStatus(ctx, evaluation.ID, update); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentEvaluationResponse{}, ErrStudentEvaluationNotFound
		}
		return dto.StudentEvaluationResponse{}, err
	}

	evaluation.Status = models.EvaluationStatusLocked
	evaluation.LockedAt = &lockedAt

	observability.LifecycleTransitions().WithLabelValues("student_evaluation", models.EvaluationStatusLocked).Inc()
	s.logger.Info().Str("student_evaluation_id", evaluation.ID.String()).Msg("student evaluation locked")
	return dto.NewStudentEvaluationResponse(evaluation), nil
}

func (s *studentEvaluationService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	evaluationID, err := ParseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, evaluationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentEvaluationNotFound
		}
		return err
	}

	s.logger.Info().Str("student_evaluation_id", evaluationID.String()).Msg("student evaluation deleted")
	return nil
}

func (s *studentEvaluationService) load(ctx context.Context, id string) (models.StudentEvaluation, error) {
	evaluationID, err := ParseID(id)
	if err != nil {
		return models.StudentEvaluation{}, err
	}

	evaluation, err := s.repo.GetByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentEvaluation{}, ErrStudentEvaluationNotFound
		}
		return models.StudentEvaluation{}, err
	}
	return evaluation, nil
}

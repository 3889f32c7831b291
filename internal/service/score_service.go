package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

// ScoreService exposes per-criterion score reads and writes for an
// evaluation. Writes are per-criterion upserts, so concurrent panel activity
// on different criteria never conflicts; the same criterion is last-write-wins.
type ScoreService interface {
	List(ctx context.Context, evaluationID string) ([]dto.ScoreResponse, error)
	Upsert(ctx context.Context, actor Actor, evaluationID string, payload dto.ScoreUpsertRequest) (dto.ScoreResponse, error)
	// BulkUpsert applies the whole batch atomically: a partial write would
	// leave the weighted percentage computed over stale rows.
	BulkUpsert(ctx context.Context, actor Actor, evaluationID string, payload dto.BulkScoreUpsertRequest) ([]dto.ScoreResponse, error)
	DeleteAll(ctx context.Context, actor Actor, evaluationID string) error
}

type scoreService struct {
	scores      repository.ScoreRepository
	evaluations repository.EvaluationRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewScoreService builds the score store service.
func NewScoreService(scores repository.ScoreRepository, evaluations repository.EvaluationRepository, validate *validator.Validate, logger zerolog.Logger) ScoreService {
	return &scoreService{
		scores:      scores,
		evaluations: evaluations,
		validator:   validate,
		logger:      logger.With().Str("component", "score_service").Logger(),
	}
}

func (s *scoreService) List(ctx context.Context, evaluationID string) ([]dto.ScoreResponse, error) {
	id, err := ParseID(evaluationID)
	if err != nil {
		return nil, err
	}

	scores, err := s.scores.ListByEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewScoreResponseSlice(scores), nil
}

func (s *scoreService) Upsert(ctx context.Context, actor Actor, evaluationID string, payload dto.ScoreUpsertRequest) (dto.ScoreResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreResponse{}, err
	}

	evaluation, err := s.writableEvaluation(ctx, actor, evaluationID)
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	criterionID, err := ParseID(payload.CriterionID)
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	score := models.EvaluationScore{
		EvaluationID: evaluation.ID,
		CriterionID:  criterionID,
		Score:        payload.Score,
	}
	if payload.Comment.Present {
		score.Comment = payload.Comment.Value
	}

	if err := s.scores.Upsert(ctx, &score); err != nil {
		return dto.ScoreResponse{}, err
	}
	return dto.NewScoreResponse(score), nil
}

func (s *scoreService) BulkUpsert(ctx context.Context, actor Actor, evaluationID string, payload dto.BulkScoreUpsertRequest) ([]dto.ScoreResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	evaluation, err := s.writableEvaluation(ctx, actor, evaluationID)
	if err != nil {
		return nil, err
	}

	scores := make([]models.EvaluationScore, 0, len(payload.Scores))
	for _, item := range payload.Scores {
		criterionID, err := ParseID(item.CriterionID)
		if err != nil {
			return nil, err
		}

		score := models.EvaluationScore{
			EvaluationID: evaluation.ID,
			CriterionID:  criterionID,
			Score:        item.Score,
		}
		if item.Comment.Present {
			score.Comment = item.Comment.Value
		}
		scores = append(scores, score)
	}

	if err := s.scores.BulkUpsert(ctx, scores); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("evaluation_id", evaluation.ID.String()).
		Int("rows", len(scores)).
		Msg("scores bulk upserted")
	return dto.NewScoreResponseSlice(scores), nil
}

func (s *scoreService) DeleteAll(ctx context.Context, actor Actor, evaluationID string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	id, err := ParseID(evaluationID)
	if err != nil {
		return err
	}

	if err := s.scores.DeleteByEvaluation(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("evaluation_id", id.String()).Msg("evaluation scores deleted")
	return nil
}

// writableEvaluation loads the evaluation and enforces the write policy:
// only the owning evaluator or an admin may score, and a locked evaluation
// is immutable.
func (s *scoreService) writableEvaluation(ctx context.Context, actor Actor, evaluationID string) (models.Evaluation, error) {
	id, err := ParseID(evaluationID)
	if err != nil {
		return models.Evaluation{}, err
	}

	evaluation, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evaluation{}, ErrEvaluationNotFound
		}
		return models.Evaluation{}, err
	}

	if !actor.IsAdmin() && evaluation.EvaluatorID != actor.ID {
		return models.Evaluation{}, ErrForbidden
	}
	if evaluation.IsLocked() {
		return models.Evaluation{}, ErrEvaluationLocked
	}
	return evaluation, nil
}

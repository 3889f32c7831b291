package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

// ErrEvaluationNotFound indicates the panel evaluation does not exist.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// AggregationService computes the weighted overall percentage for an
// evaluation. The percentage is a derived read: it is recomputed from the
// current criteria, weights and scores on every call, so rubric edits
// retroactively reflect in past evaluations.
type AggregationService interface {
	Summary(ctx context.Context, evaluationID string) (dto.EvaluationSummaryResponse, error)
	// Breakdown computes the percentage block for an already-loaded
	// evaluation. Used by the ranking engine to avoid re-fetching rows.
	Breakdown(ctx context.Context, evaluation models.Evaluation) (dto.ScoreBreakdown, error)
}

type aggregationService struct {
	evaluations repository.EvaluationRepository
	scores      repository.ScoreRepository
	rubrics     repository.RubricRepository
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewAggregationService builds the scoring aggregator.
func NewAggregationService(
	evaluations repository.EvaluationRepository,
	scores repository.ScoreRepository,
	rubrics repository.RubricRepository,
	logger zerolog.Logger,
) AggregationService {
	return &aggregationService{
		evaluations: evaluations,
		scores:      scores,
		rubrics:     rubrics,
		logger:      logger.With().Str("component", "aggregation_service").Logger(),
		tracer:      otel.Tracer("github.com/rubrica-dev/rubrica-api/internal/service/aggregation"),
	}
}

func (s *aggregationService) Summary(ctx context.Context, evaluationID string) (dto.EvaluationSummaryResponse, error) {
	id, err := ParseID(evaluationID)
	if err != nil {
		return dto.EvaluationSummaryResponse{}, err
	}

	evaluation, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationSummaryResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationSummaryResponse{}, err
	}

	scores, err := s.scores.ListByEvaluation(ctx, evaluation.ID)
	if err != nil {
		return dto.EvaluationSummaryResponse{}, err
	}

	breakdown, err := s.breakdown(ctx, evaluation, scores)
	if err != nil {
		return dto.EvaluationSummaryResponse{}, err
	}

	return dto.EvaluationSummaryResponse{
		Evaluation: dto.NewEvaluationResponse(evaluation),
		Scores:     dto.NewScoreResponseSlice(scores),
		Breakdown:  breakdown,
	}, nil
}

func (s *aggregationService) Breakdown(ctx context.Context, evaluation models.Evaluation) (dto.ScoreBreakdown, error) {
	scores, err := s.scores.ListByEvaluation(ctx, evaluation.ID)
	if err != nil {
		return dto.ScoreBreakdown{}, err
	}
	return s.breakdown(ctx, evaluation, scores)
}

func (s *aggregationService) breakdown(ctx context.Context, evaluation models.Evaluation, scores []models.EvaluationScore) (dto.ScoreBreakdown, error) {
	ctx, span := s.tracer.Start(ctx, "aggregation.breakdown", trace.WithAttributes(
		attribute.String("evaluation.id", evaluation.ID.String()),
		attribute.Int("evaluation.score_rows", len(scores)),
	))
	defer span.End()

	templateID, criteria, err := s.resolveCriteria(ctx, evaluation, scores)
	if err != nil {
		span.RecordError(err)
		return dto.ScoreBreakdown{}, err
	}

	breakdown := computeBreakdown(criteria, scores)
	breakdown.TemplateID = templateID

	span.SetAttributes(
		attribute.Float64("evaluation.overall_percentage", breakdown.OverallPercentage),
		attribute.Int("evaluation.criteria_scored", breakdown.CriteriaScored),
	)
	return breakdown, nil
}

// resolveCriteria picks the rubric the evaluation is measured against:
// the explicit template reference when set, else the template owning any
// already-scored criterion, else the most recently updated active template.
// An evaluation with no resolvable template aggregates over zero criteria.
func (s *aggregationService) resolveCriteria(ctx context.Context, evaluation models.Evaluation, scores []models.EvaluationScore) (*uuid.UUID, []models.RubricCriterion, error) {
	if evaluation.TemplateID != nil {
		criteria, err := s.rubrics.ListCriteria(ctx, *evaluation.TemplateID)
		if err != nil {
			return nil, nil, err
		}
		return evaluation.TemplateID, criteria, nil
	}

	if len(scores) > 0 {
		ids := make([]uuid.UUID, 0, len(scores))
		for _, score := range scores {
			ids = append(ids, score.CriterionID)
		}

		scored, err := s.rubrics.ListCriteriaByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		if len(scored) > 0 {
			templateID := scored[0].TemplateID
			criteria, err := s.rubrics.ListCriteria(ctx, templateID)
			if err != nil {
				return nil, nil, err
			}
			return &templateID, criteria, nil
		}
	}

	template, err := s.rubrics.LatestActiveTemplate(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	criteria, err := s.rubrics.ListCriteria(ctx, template.ID)
	if err != nil {
		return nil, nil, err
	}
	return &template.ID, criteria, nil
}

// computeBreakdown folds criteria and scores into the weighted percentage.
// An unscored criterion contributes zero to the numerator but its full
// weight*max to the denominator: incomplete evaluations are penalized, not
// averaged over fewer criteria. Callers must not substitute the
// exclude-unscored variant; it yields different numbers.
func computeBreakdown(criteria []models.RubricCriterion, scores []models.EvaluationScore) dto.ScoreBreakdown {
	scoreByCriterion := make(map[uuid.UUID]float64, len(scores))
	for _, score := range scores {
		scoreByCriterion[score.CriterionID] = score.Score
	}

	var weightedScore, weightedMax float64
	scored := 0
	for _, criterion := range criteria {
		weightedMax += criterion.MaxScore * criterion.Weight
		if value, ok := scoreByCriterion[criterion.ID]; ok {
			weightedScore += value * criterion.Weight
			scored++
		}
	}

	breakdown := dto.ScoreBreakdown{
		WeightedScore:  weightedScore,
		WeightedMax:    weightedMax,
		CriteriaCount:  len(criteria),
		CriteriaScored: scored,
	}
	if weightedMax > 0 {
		breakdown.OverallPercentage = roundTwo(weightedScore / weightedMax * 100)
	}
	return breakdown
}

// roundTwo rounds half away from zero to two decimal places.
func roundTwo(value float64) float64 {
	return math.Round(value*100) / 100
}

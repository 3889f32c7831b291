package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

type aggregationFixture struct {
	service     AggregationService
	evaluations repository.EvaluationRepository
	scores      repository.ScoreRepository
	rubrics     repository.RubricRepository
}

func newAggregationFixture(t *testing.T) aggregationFixture {
	db := setupTestDB(t)
	evaluations := repository.NewEvaluationRepository(db)
	scores := repository.NewScoreRepository(db)
	rubrics := repository.NewRubricRepository(db)
	return aggregationFixture{
		service:     NewAggregationService(evaluations, scores, rubrics, testLogger()),
		evaluations: evaluations,
		scores:      scores,
		rubrics:     rubrics,
	}
}

func (f aggregationFixture) template(t *testing.T, active bool) models.RubricTemplate {
	t.Helper()
	template := models.RubricTemplate{Name: "Defense Rubric", Version: 1, Active: active}
	require.NoError(t, f.rubrics.CreateTemplate(context.Background(), &template))
	return template
}

func (f aggregationFixture) criterion(t *testing.T, templateID uuid.UUID, weight, max float64) models.RubricCriterion {
	t.Helper()
	criterion := models.RubricCriterion{TemplateID: templateID, Criterion: "Criterion", Weight: weight, MaxScore: max}
	require.NoError(t, f.rubrics.CreateCriterion(context.Background(), &criterion))
	return criterion
}

func (f aggregationFixture) evaluation(t *testing.T, templateID *uuid.UUID) models.Evaluation {
	t.Helper()
	evaluation := models.Evaluation{
		ScheduleID:  uuid.New(),
		EvaluatorID: uuid.New(),
		TemplateID:  templateID,
		Status:      models.EvaluationStatusSubmitted,
	}
	_, err := f.evaluations.CreateIgnoreDuplicate(context.Background(), &evaluation)
	require.NoError(t, err)
	return evaluation
}

func (f aggregationFixture) score(t *testing.T, evaluationID, criterionID uuid.UUID, value float64) {
	t.Helper()
	require.NoError(t, f.scores.Upsert(context.Background(), &models.EvaluationScore{
		EvaluationID: evaluationID,
		CriterionID:  criterionID,
		Score:        value,
	}))
}

func TestBreakdownPartialScore(t *testing.T) {
	f := newAggregationFixture(t)
	template := f.template(t, true)
	criterion := f.criterion(t, template.ID, 1, 20)
	evaluation := f.evaluation(t, &template.ID)
	f.score(t, evaluation.ID, criterion.ID, 8)

	breakdown, err := f.service.Breakdown(context.Background(), evaluation)
	require.NoError(t, err)
	require.Equal(t, float64(8), breakdown.WeightedScore)
	require.Equal(t, float64(20), breakdown.WeightedMax)
	require.Equal(t, 40.00, breakdown.OverallPercentage)
	require.Equal(t, 1, breakdown.CriteriaScored)
}

func TestBreakdownAllCriteriaAtMax(t *testing.T) {
	f := newAggregationFixture(t)
	template := f.template(t, true)
	a := f.criterion(t, template.ID, 2, 10)
	b := f.criterion(t, template.ID, 3, 20)
	evaluation := f.evaluation(t, &template.ID)
	f.score(t, evaluation.ID, a.ID, 10)
	f.score(t, evaluation.ID, b.ID, 20)

	breakdown, err := f.service.Breakdown(context.Background(), evaluation)
	require.NoError(t, err)
	require.Equal(t, 100.00, breakdown.OverallPercentage)
	require.Equal(t, float64(80), breakdown.WeightedMax)
}

func TestBreakdownUnscoredCriterionPenalizesDenominator(t *testing.T) {
	f := newAggregationFixture(t)
	template := f.template(t, true)
	scored := f.criterion(t, template.ID, 1, 10)
	f.criterion(t, template.ID, 1, 10)
	evaluation := f.evaluation(t, &template.ID)
	f.score(t, evaluation.ID, scored.ID, 10)

	breakdown, err := f.service.Breakdown(context.Background(), evaluation)
	require.NoError(t, err)
	require.Equal(t, 50.00, breakdown.OverallPercentage, "unscored criterion must keep its full weight in the denominator")
	require.Equal(t, 2, breakdown.CriteriaCount)
	require.Equal(t, 1, breakdown.CriteriaScored)
}

func TestBreakdownNoScoredCriteriaIsZero(t *testing.T) {
	f := newAggregationFixture(t)
	template := f.template(t, true)
	f.criterion(t, template.ID, 1, 10)
	evaluation := f.evaluation(t, &template.ID)

	breakdown, err := f.service.Breakdown(context.Background(), evaluation)
	require.NoError(t, err)
	require.Equal(t, 0.00, breakdown.OverallPercentage)
	require.Equal(t, float64(10), breakdown.WeightedMax)
}

func TestBreakdownZeroWeightedMaxDoesNotDivide(t *testing.T) {
	f := newAggregationFixture(t)
	template := f.template(t, true)
	f.criterion(t, template.ID, 0, 10)
	evaluation := f.evaluation(t, &template.ID)

	breakdown, err := f.service.Breakdown(context.Background(), evaluation)
	require.NoError(t, err)
	require.Equal(t, 0.00, breakdown.OverallPercentage)
	require.Equal(t, float64(0), breakdown.WeightedMax)
}

func TestBreakdownFallsBackToLatestActiveTemplate(t *testing.T) {
	f := newAggregationFixture(t)
	template := f.template(t, true)
	criterion := f.criterion(t, template.ID, 1, 10)
	evaluation := f.evaluation(t, nil)
	f.score(t, evaluation.ID, criterion.ID, 5)

	breakdown, err := f.service.Breakdown(context.Background(), evaluation)
	require.NoError(t, err)
	require.NotNil(t, breakdown.TemplateID)
	require.Equal(t, template.ID, *breakdown.TemplateID)
	require.Equal(t, 50.00, breakdown.OverallPercentage)
}

func TestBreakdownNoTemplateAnywhere(t *testing.T) {
	f := newAggregationFixture(t)
	evaluation := f.evaluation(t, nil)

	breakdown, err := f.service.Breakdown(context.Background(), evaluation)
	require.NoError(t, err)
	require.Nil(t, breakdown.TemplateID)
	require.Zero(t, breakdown.CriteriaCount)
	require.Equal(t, 0.00, breakdown.OverallPercentage)
}

func TestSummaryRejectsMalformedID(t *testing.T) {
	f := newAggregationFixture(t)

	_, err := f.service.Summary(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestSummaryUnknownEvaluation(t *testing.T) {
	f := newAggregationFixture(t)

	_, err := f.service.Summary(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrEvaluationNotFound)
}

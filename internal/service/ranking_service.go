package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/observability"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

const rankingCacheKey = "rankings:groups"

// RankingService computes the group leaderboard from submitted and locked
// evaluations. Pending evaluations never count. The result is cached in
// redis with a short TTL and invalidated on lifecycle transitions.
type RankingService interface {
	Rankings(ctx context.Context) (dto.RankingResponse, error)
	Invalidate(ctx context.Context)
}

type rankingService struct {
	groups      repository.GroupRepository
	evaluations repository.EvaluationRepository
	aggregator  AggregationService
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewRankingService builds the ranking engine. The cache client is optional.
func NewRankingService(
	groups repository.GroupRepository,
	evaluations repository.EvaluationRepository,
	aggregator AggregationService,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) RankingService {
	return &rankingService{
		groups:      groups,
		evaluations: evaluations,
		aggregator:  aggregator,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "ranking_service").Logger(),
		tracer:      otel.Tracer("github.com/rubrica-dev/rubrica-api/internal/service/ranking"),
		now:         time.Now,
	}
}

func (s *rankingService) Rankings(ctx context.Context) (dto.RankingResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, rankingCacheKey).Result(); err == nil {
			var response dto.RankingResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read ranking cache")
		}
	}

	ctx, span := s.tracer.Start(ctx, "ranking.compute")
	defer span.End()

	timer := prometheus.NewTimer(observability.RankingComputeSeconds())
	defer timer.ObserveDuration()

	groups, err := s.groups.ListWithSchedules(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.RankingResponse{}, err
	}

	rows := make([]dto.GroupRanking, 0, len(groups))
	for _, group := range groups {
		row, err := s.buildRow(ctx, group)
		if err != nil {
			span.RecordError(err)
			return dto.RankingResponse{}, err
		}
		rows = append(rows, row)
	}

	sortRankings(rows)
	assignDenseRanks(rows)

	response := dto.RankingResponse{
		Rankings:   rows,
		ComputedAt: s.now().UTC(),
	}

	span.SetAttributes(attribute.Int("ranking.groups", len(rows)))

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, rankingCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store ranking cache")
			}
		}
	}
	return response, nil
}

// Invalidate drops the cached leaderboard. Best-effort: a cache failure is
// logged, never surfaced, since the next read recomputes from the store.
func (s *rankingService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, rankingCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate ranking cache")
	}
}

func (s *rankingService) buildRow(ctx context.Context, group models.ThesisGroup) (dto.GroupRanking, error) {
	row := dto.GroupRanking{
		GroupID: group.ID,
		Title:   group.Title,
		Program: group.Program,
		Term:    group.Term,
	}

	scheduleIDs := make([]uuid.UUID, 0, len(group.Schedules))
	for _, schedule := range group.Schedules {
		scheduleIDs = append(scheduleIDs, schedule.ID)
		scheduledAt := schedule.ScheduledAt
		if row.LatestDefenseAt == nil || scheduledAt.After(*row.LatestDefenseAt) {
			row.LatestDefenseAt = &scheduledAt
		}
	}

	evaluations, err := s.evaluations.ListByScheduleIDs(ctx, scheduleIDs, []string{
		models.EvaluationStatusSubmitted,
		models.EvaluationStatusLocked,
	})
	if err != nil {
		return dto.GroupRanking{}, err
	}

	var total float64
	for _, evaluation := range evaluations {
		breakdown, err := s.aggregator.Breakdown(ctx, evaluation)
		if err != nil {
			return dto.GroupRanking{}, err
		}
		total += breakdown.OverallPercentage
	}

	row.SubmittedEvaluations = len(evaluations)
	if len(evaluations) > 0 {
		percentage := roundTwo(total / float64(len(evaluations)))
		row.GroupPercentage = &percentage
	}
	return row, nil
}

// sortRankings orders by percentage descending with nil last, then latest
// defense descending, then title ascending as the deterministic tiebreak.
func sortRankings(rows []dto.GroupRanking) {
	sort.SliceStable(rows, func(i, j int) bool {
		left, right := rows[i], rows[j]

		switch {
		case left.GroupPercentage == nil && right.GroupPercentage == nil:
		case left.GroupPercentage == nil:
			return false
		case right.GroupPercentage == nil:
			return true
		case *left.GroupPercentage != *right.GroupPercentage:
			return *left.GroupPercentage > *right.GroupPercentage
		}

		switch {
		case left.LatestDefenseAt == nil && right.LatestDefenseAt == nil:
		case left.LatestDefenseAt == nil:
			return false
		case right.LatestDefenseAt == nil:
			return true
		case !left.LatestDefenseAt.Equal(*right.LatestDefenseAt):
			return left.LatestDefenseAt.After(*right.LatestDefenseAt)
		}

		return left.Title < right.Title
	})
}

// assignDenseRanks numbers the sorted rows densely: groups with identical
// sort keys share a rank, and the next distinct group resumes at rank+1
// rather than skipping over the tie.
func assignDenseRanks(rows []dto.GroupRanking) {
	rank := 0
	for i := range rows {
		if i == 0 || !sameRankKey(rows[i-1], rows[i]) {
			rank++
		}
		rows[i].Rank = rank
	}
}

func sameRankKey(a, b dto.GroupRanking) bool {
	switch {
	case a.GroupPercentage == nil && b.GroupPercentage != nil,
		a.GroupPercentage != nil && b.GroupPercentage == nil:
		return false
	case a.GroupPercentage != nil && b.GroupPercentage != nil && *a.GroupPercentage != *b.GroupPercentage:
		return false
	}

	switch {
	case a.LatestDefenseAt == nil && b.LatestDefenseAt != nil,
		a.LatestDefenseAt != nil && b.LatestDefenseAt == nil:
		return false
	case a.LatestDefenseAt != nil && b.LatestDefenseAt != nil && !a.LatestDefenseAt.Equal(*b.LatestDefenseAt):
		return false
	}
	return true
}

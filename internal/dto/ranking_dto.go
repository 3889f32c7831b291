package dto

import (
	"time"

	"github.com/google/uuid"
)

// GroupRanking is one row of the group leaderboard. GroupPercentage is nil
// when no submitted or locked evaluation exists for the group; such groups
// rank below every scored group. Rank numbers are dense: tied groups share a
// rank and the next distinct group resumes at rank+1.
type GroupRanking struct {
	Rank                 int        `json:"rank"`
	GroupID              uuid.UUID  `json:"group_id"`
	Title                string     `json:"title"`
	Program              string     `json:"program"`
	Term                 string     `json:"term"`
	GroupPercentage      *float64   `json:"group_percentage"`
	SubmittedEvaluations int        `json:"submitted_evaluations"`
	LatestDefenseAt      *time.Time `json:"latest_defense_at"`
}

// RankingResponse wraps the computed leaderboard.
type RankingResponse struct {
	Rankings   []GroupRanking `json:"rankings"`
	ComputedAt time.Time      `json:"computed_at"`
	CacheHit   bool           `json:"cache_hit"`
}

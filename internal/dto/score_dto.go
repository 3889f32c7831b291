package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// ScoreUpsertRequest describes a single per-criterion score write. A repeated
// write to the same criterion replaces score and comment.
type ScoreUpsertRequest struct {
	CriterionID string         `json:"criterion_id" validate:"required,uuid4"`
	Score       float64        `json:"score"`
	Comment     NullableString `json:"comment"`
}

// BulkScoreUpsertRequest carries a batch of score writes applied atomically.
type BulkScoreUpsertRequest struct {
	Scores []ScoreUpsertRequest `json:"scores" validate:"required,min=1,dive"`
}

// ScoreResponse is the serialized per-criterion score record.
type ScoreResponse struct {
	EvaluationID uuid.UUID `json:"evaluation_id"`
	CriterionID  uuid.UUID `json:"criterion_id"`
	Score        float64   `json:"score"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewScoreResponse converts a model into a DTO.
func NewScoreResponse(model models.EvaluationScore) ScoreResponse {
	return ScoreResponse{
		EvaluationID: model.EvaluationID,
		CriterionID:  model.CriterionID,
		Score:        model.Score,
		Comment:      model.Comment,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewScoreResponseSlice converts a slice of models into DTOs.
func NewScoreResponseSlice(scores []models.EvaluationScore) []ScoreResponse {
	responses := make([]ScoreResponse, 0, len(scores))
	for _, score := range scores {
		responses = append(responses, NewScoreResponse(score))
	}
	return responses
}

package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// EvaluationCreateRequest describes the payload for creating a panel evaluation.
type EvaluationCreateRequest struct {
	ScheduleID  string  `json:"schedule_id" validate:"required,uuid4"`
	EvaluatorID string  `json:"evaluator_id" validate:"required,uuid4"`
	TemplateID  *string `json:"template_id" validate:"omitempty,uuid4"`
}

// StudentEvaluationCreateRequest describes the payload for creating a
// student feedback record.
type StudentEvaluationCreateRequest struct {
	ScheduleID string `json:"schedule_id" validate:"required,uuid4"`
	StudentID  string `json:"student_id" validate:"omitempty,uuid4"`
}

// StudentEvaluationAnswersRequest carries the opaque feedback payload.
type StudentEvaluationAnswersRequest struct {
	Answers map[string]interface{} `json:"answers" validate:"required"`
}

// EvaluationResponse is the serialized panel evaluation.
type EvaluationResponse struct {
	ID          uuid.UUID  `json:"id"`
	ScheduleID  uuid.UUID  `json:"schedule_id"`
	EvaluatorID uuid.UUID  `json:"evaluator_id"`
	TemplateID  *uuid.UUID `json:"template_id"`
	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at"`
	LockedAt    *time.Time `json:"locked_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StudentEvaluationResponse is the serialized student feedback record.
type StudentEvaluationResponse struct {
	ID          uuid.UUID         `json:"id"`
	ScheduleID  uuid.UUID         `json:"schedule_id"`
	StudentID   uuid.UUID         `json:"student_id"`
	Status      string            `json:"status"`
	Answers     datatypes.JSONMap `json:"answers"`
	SubmittedAt *time.Time        `json:"submitted_at"`
	LockedAt    *time.Time        `json:"locked_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ScoreBreakdown is the derived weighted-percentage block for one evaluation.
// It is always recomputed from current criteria and scores, never stored.
type ScoreBreakdown struct {
	TemplateID        *uuid.UUID `json:"template_id"`
	WeightedScore     float64    `json:"weighted_score"`
	WeightedMax       float64    `json:"weighted_max"`
	OverallPercentage float64    `json:"overall_percentage"`
	CriteriaCount     int        `json:"criteria_count"`
	CriteriaScored    int        `json:"criteria_scored"`
}

// EvaluationSummaryResponse combines an evaluation, its scores and the
// derived percentage block.
type EvaluationSummaryResponse struct {
	Evaluation EvaluationResponse `json:"evaluation"`
	Scores     []ScoreResponse    `json:"scores"`
	Breakdown  ScoreBreakdown     `json:"breakdown"`
}

// NewEvaluationResponse converts a model into a DTO.
func NewEvaluationResponse(model models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:          model.ID,
		ScheduleID:  model.ScheduleID,
		EvaluatorID: model.EvaluatorID,
		TemplateID:  model.TemplateID,
		Status:      model.Status,
		SubmittedAt: model.SubmittedAt,
		LockedAt:    model.LockedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewEvaluationResponseSlice converts a slice of models into DTOs.
func NewEvaluationResponseSlice(evaluations []models.Evaluation) []EvaluationResponse {
	responses := make([]EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, NewEvaluationResponse(evaluation))
	}
	return responses
}

// NewStudentEvaluationResponse converts a model into a DTO.
func NewStudentEvaluationResponse(model models.StudentEvaluation) StudentEvaluationResponse {
	return StudentEvaluationResponse{
		ID:          model.ID,
		ScheduleID:  model.ScheduleID,
		StudentID:   model.StudentID,
		Status:      model.Status,
		Answers:     model.Answers,
		SubmittedAt: model.SubmittedAt,
		LockedAt:    model.LockedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

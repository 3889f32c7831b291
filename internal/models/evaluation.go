package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Evaluation lifecycle states. Forward-only: locked is terminal.
const (
	EvaluationStatusPending   = "pending"
	EvaluationStatusSubmitted = "submitted"
	EvaluationStatusLocked    = "locked"
)

// Evaluation is one panelist's scoring pass over one defense schedule.
// The (schedule_id, evaluator_id) pair is unique at creation time.
type Evaluation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduleID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_evaluations_schedule_evaluator" json:"schedule_id"`
	EvaluatorID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_evaluations_schedule_evaluator" json:"evaluator_id"`
	TemplateID  *uuid.UUID `gorm:"type:uuid" json:"template_id"`
	Status      string     `gorm:"size:16;not null;default:pending" json:"status"`
	SubmittedAt *time.Time `json:"submitted_at"`
	LockedAt    *time.Time `json:"locked_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Scores []EvaluationScore `gorm:"constraint:OnDelete:CASCADE" json:"scores,omitempty"`
}

// BeforeCreate assigns a UUID when none was provided.
func (e *Evaluation) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsLocked reports whether the evaluation reached its terminal state.
func (e Evaluation) IsLocked() bool {
	return e.Status == EvaluationStatusLocked
}

// EvaluationScore holds one criterion's score within an evaluation. Keyed on
// (evaluation_id, criterion_id): a second write replaces score and comment.
type EvaluationScore struct {
	EvaluationID uuid.UUID `gorm:"type:uuid;primaryKey" json:"evaluation_id"`
	CriterionID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"criterion_id"`
	Score        float64   `gorm:"not null" json:"score"`
	Comment      *string   `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentEvaluation is one student's feedback record for a defense schedule.
// It follows the same three-state lifecycle as Evaluation but is independent
// of any staff evaluation. One row per (schedule_id, student_id).
type StudentEvaluation struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduleID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_student_evaluations_schedule_student" json:"schedule_id"`
	StudentID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_student_evaluations_schedule_student" json:"student_id"`
	Status      string            `gorm:"size:16;not null;default:pending" json:"status"`
	Answers     datatypes.JSONMap `gorm:"type:json" json:"answers"`
	SubmittedAt *time.Time        `json:"submitted_at"`
	LockedAt    *time.Time        `json:"locked_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was provided.
func (s *StudentEvaluation) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsLocked reports whether the record reached its terminal state.
func (s StudentEvaluation) IsLocked() bool {
	return s.Status == EvaluationStatusLocked
}

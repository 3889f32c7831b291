package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// TemplateCreateRequest describes the payload for creating a rubric template.
type TemplateCreateRequest struct {
	Name        string         `json:"name" validate:"required,min=3"`
	Description NullableString `json:"description"`
	Version     *int           `json:"version" validate:"omitempty,min=1"`
	Active      *bool          `json:"active"`
}

// TemplateUpdateRequest describes a partial update to a rubric template.
type TemplateUpdateRequest struct {
	Name        *string        `json:"name" validate:"omitempty,min=3"`
	Description NullableString `json:"description"`
	Version     *int           `json:"version" validate:"omitempty,min=1"`
	Active      *bool          `json:"active"`
}

// CriterionCreateRequest describes the payload for creating a criterion.
// Weight and the score bounds tolerate non-numeric input by dropping it.
type CriterionCreateRequest struct {
	Criterion   string         `json:"criterion" validate:"required,min=2"`
	Description NullableString `json:"description"`
	Weight      LenientFloat   `json:"weight"`
	MinScore    LenientFloat   `json:"min_score"`
	MaxScore    LenientFloat   `json:"max_score"`
}

// CriterionUpdateRequest describes a partial update to a criterion.
type CriterionUpdateRequest struct {
	Criterion   *string        `json:"criterion" validate:"omitempty,min=2"`
	Description NullableString `json:"description"`
	Weight      LenientFloat   `json:"weight"`
	MinScore    LenientFloat   `json:"min_score"`
	MaxScore    LenientFloat   `json:"max_score"`
}

// TemplateResponse is the serialized rubric template.
type TemplateResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Version     int                 `json:"version"`
	Active      bool                `json:"active"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Criteria    []CriterionResponse `json:"criteria,omitempty"`
}

// CriterionResponse is the serialized rubric criterion.
type CriterionResponse struct {
	ID          uuid.UUID `json:"id"`
	TemplateID  uuid.UUID `json:"template_id"`
	Criterion   string    `json:"criterion"`
	Description *string   `json:"description"`
	Weight      float64   `json:"weight"`
	MinScore    float64   `json:"min_score"`
	MaxScore    float64   `json:"max_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTemplateResponse converts a model into a DTO.
func NewTemplateResponse(model models.RubricTemplate) TemplateResponse {
	response := TemplateResponse{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Version:     model.Version,
		Active:      model.Active,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if len(model.Criteria) > 0 {
		response.Criteria = NewCriterionResponseSlice(model.Criteria)
	}
	return response
}

// NewTemplateResponseSlice converts a slice of models into DTOs.
func NewTemplateResponseSlice(templates []models.RubricTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, 0, len(templates))
	for _, template := range templates {
		responses = append(responses, NewTemplateResponse(template))
	}
	return responses
}

// NewCriterionResponse converts a model into a DTO.
func NewCriterionResponse(model models.RubricCriterion) CriterionResponse {
	return CriterionResponse{
		ID:          model.ID,
		TemplateID:  model.TemplateID,
		Criterion:   model.Criterion,
		Description: model.Description,
		Weight:      model.Weight,
		MinScore:    model.MinScore,
		MaxScore:    model.MaxScore,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewCriterionResponseSlice converts a slice of models into DTOs.
func NewCriterionResponseSlice(criteria []models.RubricCriterion) []CriterionResponse {
	responses := make([]CriterionResponse, 0, len(criteria))
	for _, criterion := range criteria {
		responses = append(responses, NewCriterionResponse(criterion))
	}
	return responses
}

package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// GroupCreateRequest describes the payload for creating a thesis group.
type GroupCreateRequest struct {
	Title     string  `json:"title" validate:"required,min=3"`
	Program   string  `json:"program" validate:"omitempty,max=128"`
	Term      string  `json:"term" validate:"omitempty,max=64"`
	AdviserID *string `json:"adviser_id" validate:"omitempty,uuid4"`
}

// GroupUpdateRequest describes a partial update to a thesis group.
type GroupUpdateRequest struct {
	Title     *string        `json:"title" validate:"omitempty,min=3"`
	Program   *string        `json:"program" validate:"omitempty,max=128"`
	Term      *string        `json:"term" validate:"omitempty,max=64"`
	AdviserID NullableString `json:"adviser_id"`
}

// SetMembersRequest replaces a group's full member set.
type SetMembersRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,dive,uuid4"`
}

// ScheduleCreateRequest describes the payload for creating a defense schedule.
type ScheduleCreateRequest struct {
	GroupID     string `json:"group_id" validate:"required,uuid4"`
	ScheduledAt string `json:"scheduled_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Room        string `json:"room" validate:"omitempty,max=64"`
}

// ScheduleUpdateRequest describes a partial update to a defense schedule.
type ScheduleUpdateRequest struct {
	ScheduledAt *string `json:"scheduled_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Room        *string `json:"room" validate:"omitempty,max=64"`
	Status      *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

// SetPanelistsRequest replaces a schedule's full panel.
type SetPanelistsRequest struct {
	StaffIDs []string `json:"staff_ids" validate:"required,dive,uuid4"`
}

// GroupResponse is the serialized thesis group.
type GroupResponse struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	Program   string             `json:"program"`
	Term      string             `json:"term"`
	AdviserID *uuid.UUID         `json:"adviser_id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	MemberIDs []uuid.UUID        `json:"member_ids,omitempty"`
	Schedules []ScheduleResponse `json:"schedules,omitempty"`
}

// ScheduleResponse is the serialized defense schedule.
type ScheduleResponse struct {
	ID          uuid.UUID   `json:"id"`
	GroupID     uuid.UUID   `json:"group_id"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	Room        string      `json:"room"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	PanelistIDs []uuid.UUID `json:"panelist_ids,omitempty"`
}

// NewGroupResponse converts a model into a DTO.
func NewGroupResponse(model models.ThesisGroup) GroupResponse {
	response := GroupResponse{
		ID:        model.ID,
		Title:     model.Title,
		Program:   model.Program,
		Term:      model.Term,
		AdviserID: model.AdviserID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if len(model.Schedules) > 0 {
		response.Schedules = NewScheduleResponseSlice(model.Schedules)
	}
	return response
}

// NewGroupResponseSlice converts a slice of models into DTOs.
func NewGroupResponseSlice(groups []models.ThesisGroup) []GroupResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, NewGroupResponse(group))
	}
	return responses
}

// NewScheduleResponse converts a model into a DTO.
func NewScheduleResponse(model models.DefenseSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:          model.ID,
		GroupID:     model.GroupID,
		ScheduledAt: model.ScheduledAt,
		Room:        model.Room,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewScheduleResponseSlice converts a slice of models into DTOs.
func NewScheduleResponseSlice(schedules []models.DefenseSchedule) []ScheduleResponse {
	responses := make([]ScheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		responses = append(responses, NewScheduleResponse(schedule))
	}
	return responses
}

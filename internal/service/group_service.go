package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

// ErrGroupNotFound indicates the thesis group does not exist.
var ErrGroupNotFound = errors.New("thesis group not found")

// ErrScheduleNotFound indicates the defense schedule does not exist.
var ErrScheduleNotFound = errors.New("defense schedule not found")

// GroupService exposes thesis group and defense schedule administration.
type GroupService interface {
	List(ctx context.Context) ([]dto.GroupResponse, error)
	Get(ctx context.Context, id string) (dto.GroupResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.GroupCreateRequest) (dto.GroupResponse, error)
	Update(ctx context.Context, actor Actor, id string, payload dto.GroupUpdateRequest) (dto.GroupResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	// SetMembers replaces the group's full member set atomically.
	SetMembers(ctx context.Context, actor Actor, id string, payload dto.SetMembersRequest) (dto.GroupResponse, error)

	CreateSchedule(ctx context.Context, actor Actor, payload dto.ScheduleCreateRequest) (dto.ScheduleResponse, error)
	UpdateSchedule(ctx context.Context, actor Actor, id string, payload dto.ScheduleUpdateRequest) (dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, actor Actor, id string) error
	GetSchedule(ctx context.Context, id string) (dto.ScheduleResponse, error)
	// SetPanelists replaces the schedule's full panel atomically.
	SetPanelists(ctx context.Context, actor Actor, id string, payload dto.SetPanelistsRequest) (dto.ScheduleResponse, error)
}

type groupService struct {
	groups    repository.GroupRepository
	schedules repository.ScheduleRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGroupService builds the group administration service.
func NewGroupService(groups repository.GroupRepository, schedules repository.ScheduleRepository, validate *validator.Validate, logger zerolog.Logger) GroupService {
	return &groupService{
		groups:    groups,
		schedules: schedules,
		validator: validate,
		logger:    logger.With().Str("component", "group_service").Logger(),
	}
}

func (s *groupService) List(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.groups.ListWithSchedules(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupResponseSlice(groups), nil
}

func (s *groupService) Get(ctx context.Context, id string) (dto.GroupResponse, error) {
	groupID, err := ParseID(id)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}

	response := dto.NewGroupResponse(group)
	memberIDs, err := s.groups.ListMemberIDs(ctx, groupID)
	if err != nil {
		return dto.GroupResponse{}, err
	}
	response.MemberIDs = memberIDs

	for i := range response.Schedules {
		panelistIDs, err := s.schedules.ListPanelistIDs(ctx, response.Schedules[i].ID)
		if err != nil {
			return dto.GroupResponse{}, err
		}
		response.Schedules[i].PanelistIDs = panelistIDs
	}
	return response, nil
}

func (s *groupService) Create(ctx context.Context, actor Actor, payload dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if !actor.IsAdmin() {
		return dto.GroupResponse{}, ErrForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group := models.ThesisGroup{
		Title:   payload.Title,
		Program: payload.Program,
		Term:    payload.Term,
	}
	if payload.AdviserID != nil {
		adviserID, err := ParseID(*payload.AdviserID)
		if err != nil {
			return dto.GroupResponse{}, err
		}
		group.AdviserID = &adviserID
	}

	if err := s.groups.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().Str("group_id", group.ID.String()).Msg("thesis group created")
	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Update(ctx context.Context, actor Actor, id string, payload dto.GroupUpdateRequest) (dto.GroupResponse, error) {
	if !actor.IsAdmin() {
		return dto.GroupResponse{}, ErrForbidden
	}

	groupID, err := ParseID(id)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}

	if payload.Title != nil {
		group.Title = *payload.Title
	}
	if payload.Program != nil {
		group.Program = *payload.Program
	}
	if payload.Term != nil {
		group.Term = *payload.Term
	}
	if payload.AdviserID.Present {
		if payload.AdviserID.Value == nil {
			group.AdviserID = nil
		} else {
			adviserID, err := ParseID(*payload.AdviserID.Value)
			if err != nil {
				return dto.GroupResponse{}, err
			}
			group.AdviserID = &adviserID
		}
	}

	if err := s.groups.Update(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().Str("group_id", group.ID.String()).Msg("thesis group updated")
	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	groupID, err := ParseID(id)
	if err != nil {
		return err
	}

	if err := s.groups.Delete(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	s.logger.Info().Str("group_id", groupID.String()).Msg("thesis group deleted")
	return nil
}

func (s *groupService) SetMembers(ctx context.Context, actor Actor, id string, payload dto.SetMembersRequest) (dto.GroupResponse, error) {
	if !actor.IsAdmin() {
		return dto.GroupResponse{}, ErrForbidden
	}

	groupID, err := ParseID(id)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	studentIDs := make([]uuid.UUID, 0, len(payload.StudentIDs))
	for _, raw := range payload.StudentIDs {
		studentID, err := ParseID(raw)
		if err != nil {
			return dto.GroupResponse{}, err
		}
		studentIDs = append(studentIDs, studentID)
	}

	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}

	if err := s.groups.ReplaceMembers(ctx, groupID, studentIDs); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().
		Str("group_id", groupID.String()).
		Int("members", len(studentIDs)).
		Msg("group members replaced")
	return s.Get(ctx, id)
}

func (s *groupService) CreateSchedule(ctx context.Context, actor Actor, payload dto.ScheduleCreateRequest) (dto.ScheduleResponse, error) {
	if !actor.IsAdmin() {
		return dto.ScheduleResponse{}, ErrForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleResponse{}, err
	}

	groupID, err := ParseID(payload.GroupID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	scheduledAt, err := time.Parse(time.RFC3339, payload.ScheduledAt)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleResponse{}, ErrGroupNotFound
		}
		return dto.ScheduleResponse{}, err
	}

	schedule := models.DefenseSchedule{
		GroupID:     groupID,
		ScheduledAt: scheduledAt,
		Room:        payload.Room,
		Status:      "scheduled",
	}
	if err := s.schedules.Create(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, err
	}

	s.logger.Info().Str("schedule_id", schedule.ID.String()).Msg("defense schedule created")
	return dto.NewScheduleResponse(schedule), nil
}

func (s *groupService) UpdateSchedule(ctx context.Context, actor Actor, id string, payload dto.ScheduleUpdateRequest) (dto.ScheduleResponse, error) {
	if !actor.IsAdmin() {
		return dto.ScheduleResponse{}, ErrForbidden
	}

	scheduleID, err := ParseID(id)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleResponse{}, err
	}

	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleResponse{}, ErrScheduleNotFound
		}
		return dto.ScheduleResponse{}, err
	}

	if payload.ScheduledAt != nil {
		scheduledAt, err := time.Parse(time.RFC3339, *payload.ScheduledAt)
		if err != nil {
			return dto.ScheduleResponse{}, err
		}
		schedule.ScheduledAt = scheduledAt
	}
	if payload.Room != nil {
		schedule.Room = *payload.Room
	}
	if payload.Status != nil {
		schedule.Status = *payload.Status
	}

	if err := s.schedules.Update(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, err
	}

	s.logger.Info().Str("schedule_id", schedule.ID.String()).Msg("defense schedule updated")
	return dto.NewScheduleResponse(schedule), nil
}

func (s *groupService) DeleteSchedule(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	scheduleID, err := ParseID(id)
	if err != nil {
		return err
	}

	if err := s.schedules.Delete(ctx, scheduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}

	s.logger.Info().Str("schedule_id", scheduleID.String()).Msg("defense schedule deleted")
	return nil
}

func (s *groupService) GetSchedule(ctx context.Context, id string) (dto.ScheduleResponse, error) {
	scheduleID, err := ParseID(id)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleResponse{}, ErrScheduleNotFound
		}
		return dto.ScheduleResponse{}, err
	}

	response := dto.NewScheduleResponse(schedule)
	panelistIDs, err := s.schedules.ListPanelistIDs(ctx, scheduleID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	response.PanelistIDs = panelistIDs
	return response, nil
}

func (s *groupService) SetPanelists(ctx context.Context, actor Actor, id string, payload dto.SetPanelistsRequest) (dto.ScheduleResponse, error) {
	if !actor.IsAdmin() {
		return dto.ScheduleResponse{}, ErrForbidden
	}

	scheduleID, err := ParseID(id)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleResponse{}, err
	}

	staffIDs := make([]uuid.UUID, 0, len(payload.StaffIDs))
	for _, raw := range payload.StaffIDs {
		staffID, err := ParseID(raw)
		if err != nil {
			return dto.ScheduleResponse{}, err
		}
		staffIDs = append(staffIDs, staffID)
	}

	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleResponse{}, ErrScheduleNotFound
		}
		return dto.ScheduleResponse{}, err
	}

	if err := s.schedules.ReplacePanelists(ctx, scheduleID, staffIDs); err != nil {
		return dto.ScheduleResponse{}, err
	}

	s.logger.Info().
		Str("schedule_id", scheduleID.String()).
		Int("panelists", len(staffIDs)).
		Msg("schedule panelists replaced")
	return s.GetSchedule(ctx, id)
}

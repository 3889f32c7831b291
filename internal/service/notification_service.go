package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/dto"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

// ErrNotificationNotFound indicates the notification does not exist or does
// not belong to the requesting user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService exposes the per-user notification inbox.
type NotificationService interface {
	List(ctx context.Context, actor Actor, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, actor Actor, id string) (dto.NotificationResponse, error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	logger zerolog.Logger
}

// NewNotificationService builds the notification inbox service.
func NewNotificationService(repo repository.NotificationRepository, logger zerolog.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		logger: logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) List(ctx context.Context, actor Actor, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id string) (dto.NotificationResponse, error) {
	notificationID, err := ParseID(id)
	if err != nil {
		return dto.NotificationResponse{}, err
	}

	notification, err := s.repo.MarkRead(ctx, notificationID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}
	return dto.NewNotificationResponse(notification), nil
}

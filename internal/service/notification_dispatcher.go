package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/observability"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
)

// LifecycleEvent describes a submit or lock transition on an evaluation.
type LifecycleEvent struct {
	EvaluationID uuid.UUID `json:"evaluation_id"`
	ScheduleID   uuid.UUID `json:"schedule_id"`
	Status       string    `json:"status"`
}

// NotificationDispatcher fans a lifecycle transition out to every student in
// the affected group. Dispatch is best-effort: the lifecycle transition has
// already committed by the time Dispatch runs, and no dispatch failure may
// surface to the caller. Failures are logged and dropped.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event LifecycleEvent)
}

type notificationDispatcher struct {
	notifications repository.NotificationRepository
	schedules     repository.ScheduleRepository
	groups        repository.GroupRepository
	redis         *redis.Client
	channel       string
	logger        zerolog.Logger
}

// NewNotificationDispatcher builds the dispatcher. The redis client is
// optional; when present, each notification is also published on the given
// channel for connected clients.
func NewNotificationDispatcher(
	notifications repository.NotificationRepository,
	schedules repository.ScheduleRepository,
	groups repository.GroupRepository,
	redisClient *redis.Client,
	channel string,
	logger zerolog.Logger,
) NotificationDispatcher {
	return &notificationDispatcher{
		notifications: notifications,
		schedules:     schedules,
		groups:        groups,
		redis:         redisClient,
		channel:       channel,
		logger:        logger.With().Str("component", "notification_dispatcher").Logger(),
	}
}

func (d *notificationDispatcher) Dispatch(ctx context.Context, event LifecycleEvent) {
	notificationType, title, body := describeTransition(event.Status)
	if notificationType == "" {
		return
	}

	schedule, err := d.schedules.GetByID(ctx, event.ScheduleID)
	if err != nil {
		d.logFailure(event, notificationType, err, "failed to resolve schedule for notification fan-out")
		return
	}

	memberIDs, err := d.groups.ListMemberIDs(ctx, schedule.GroupID)
	if err != nil {
		d.logFailure(event, notificationType, err, "failed to resolve group members for notification fan-out")
		return
	}
	if len(memberIDs) == 0 {
		return
	}

	data := datatypes.JSONMap{
		"evaluation_id": event.EvaluationID.String(),
		"schedule_id":   event.ScheduleID.String(),
		"group_id":      schedule.GroupID.String(),
		"status":        event.Status,
	}

	notifications := make([]models.Notification, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		notifications = append(notifications, models.Notification{
			UserID: memberID,
			Type:   notificationType,
			Title:  title,
			Body:   body,
			Data:   data,
		})
	}

	if err := d.notifications.CreateBatch(ctx, notifications); err != nil {
		d.logFailure(event, notificationType, err, "failed to persist notification fan-out")
		return
	}

	observability.NotificationsDispatched().WithLabelValues(notificationType).Add(float64(len(notifications)))

	if d.redis != nil && d.channel != "" {
		payload, err := json.Marshal(notificationEnvelope{
			Type:   notificationType,
			Data:   data,
			SentAt: time.Now().UTC(),
		})
		if err == nil {
			if err := d.redis.Publish(ctx, d.channel, payload).Err(); err != nil {
				d.logger.Warn().Err(err).Str("type", notificationType).Msg("failed to publish notification to redis")
			}
		}
	}

	d.logger.Info().
		Str("type", notificationType).
		Str("evaluation_id", event.EvaluationID.String()).
		Int("recipients", len(notifications)).
		Msg("lifecycle notification dispatched")
}

type notificationEnvelope struct {
	Type   string            `json:"type"`
	Data   datatypes.JSONMap `json:"data"`
	SentAt time.Time         `json:"sent_at"`
}

func describeTransition(status string) (notificationType, title, body string) {
	switch status {
	case models.EvaluationStatusSubmitted:
		return models.NotificationEvaluationSubmitted,
			"Evaluation submitted",
			"A panelist submitted an evaluation for your defense."
	case models.EvaluationStatusLocked:
		return models.NotificationEvaluationLocked,
			"Evaluation finalized",
			"An evaluation for your defense has been finalized."
	default:
		return "", "", ""
	}
}

func (d *notificationDispatcher) logFailure(event LifecycleEvent, notificationType string, err error, message string) {
	observability.NotificationFailures().WithLabelValues(notificationType).Inc()

	log := d.logger.Warn()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log = d.logger.Debug()
	}
	log.Err(fmt.Errorf("dispatch %s: %w", notificationType, err)).
		Str("evaluation_id", event.EvaluationID.String()).
		Str("schedule_id", event.ScheduleID.String()).
		Msg(message)
}

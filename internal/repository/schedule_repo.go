package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// ScheduleRepository handles persistence for defense schedules and panels.
type ScheduleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.DefenseSchedule, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.DefenseSchedule, error)
	Create(ctx context.Context, schedule *models.DefenseSchedule) error
	Update(ctx context.Context, schedule *models.DefenseSchedule) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListPanelistIDs(ctx context.Context, scheduleID uuid.UUID) ([]uuid.UUID, error)
	// ReplacePanelists swaps the schedule's full panel set, diff-and-apply in
	// one transaction.
	ReplacePanelists(ctx context.Context, scheduleID uuid.UUID, staffIDs []uuid.UUID) error
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository constructs a repository backed by GORM.
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (models.DefenseSchedule, error) {
	var schedule models.DefenseSchedule
	if err := r.db.WithContext(ctx).First(&schedule, "id = ?", id).Error; err != nil {
		return models.DefenseSchedule{}, err
	}
	return schedule, nil
}

func (r *scheduleRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.DefenseSchedule, error) {
	var schedules []models.DefenseSchedule
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("scheduled_at ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *models.DefenseSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *models.DefenseSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

func (r *scheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", id).Delete(&models.SchedulePanelist{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.DefenseSchedule{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *scheduleRepository) ListPanelistIDs(ctx context.Context, scheduleID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.SchedulePanelist{}).
		Where("schedule_id = ?", scheduleID).
		Order("created_at ASC").
		Pluck("staff_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *scheduleRepository) ReplacePanelists(ctx context.Context, scheduleID uuid.UUID, staffIDs []uuid.UUID) error {
	desired := make(map[uuid.UUID]struct{}, len(staffIDs))
	for _, id := range staffIDs {
		desired[id] = struct{}{}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []uuid.UUID
		if err := tx.Model(&models.SchedulePanelist{}).
			Where("schedule_id = ?", scheduleID).
			Pluck("staff_id", &current).Error; err != nil {
			return err
		}

		existing := make(map[uuid.UUID]struct{}, len(current))
		for _, id := range current {
			existing[id] = struct{}{}
			if _, keep := desired[id]; !keep {
				if err := tx.Where("schedule_id = ? AND staff_id = ?", scheduleID, id).
					Delete(&models.SchedulePanelist{}).Error; err != nil {
					return err
				}
			}
		}

		for _, id := range staffIDs {
			if _, present := existing[id]; present {
				continue
			}
			panelist := models.SchedulePanelist{ScheduleID: scheduleID, StaffID: id}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&panelist).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

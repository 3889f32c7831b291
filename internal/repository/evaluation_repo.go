package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// StatusUpdate carries a lifecycle transition. Status and the timestamp are
// written in a single statement so a concurrent transition can never observe
// a half-applied row.
type StatusUpdate struct {
	Status      string
	SubmittedAt *time.Time
	LockedAt    *time.Time
}

// EvaluationRepository handles persistence for panel evaluations.
type EvaluationRepository interface {
	// CreateIgnoreDuplicate inserts a pending evaluation and silently no-ops
	// when the (schedule, evaluator) pair already exists. The returned flag
	// reports whether a new row was written.
	CreateIgnoreDuplicate(ctx context.Context, evaluation *models.Evaluation) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Evaluation, error)
	GetByScheduleAndEvaluator(ctx context.Context, scheduleID, evaluatorID uuid.UUID) (models.Evaluation, error)
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]models.Evaluation, error)
	ListByScheduleIDs(ctx context.Context, scheduleIDs []uuid.UUID, statuses []string) ([]models.Evaluation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository constructs a repository backed by GORM.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) CreateIgnoreDuplicate(ctx context.Context, evaluation *models.Evaluation) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_id"}, {Name: "evaluator_id"}},
			DoNothing: true,
		}).
		Create(evaluation)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *evaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).First(&evaluation, "id = ?", id).Error; err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) GetByScheduleAndEvaluator(ctx context.Context, scheduleID, evaluatorID uuid.UUID) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND evaluator_id = ?", scheduleID, evaluatorID).
		First(&evaluation).Error; err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	if err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at ASC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (r *evaluationRepository) ListByScheduleIDs(ctx context.Context, scheduleIDs []uuid.UUID, statuses []string) ([]models.Evaluation, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Where("schedule_id IN ?", scheduleIDs)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var evaluations []models.Evaluation
	if err := query.Find(&evaluations).Error; err != nil {
		return nil, err
	}
	return evaluations, nil
}

// UpdateStatus applies a lifecycle transition atomically. Both timestamp
// columns are always written so a re-submission overwrites the stamp.
func (r *evaluationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error {
	columns := map[string]interface{}{
		"status": update.Status,
	}
	if update.SubmittedAt != nil {
		columns["submitted_at"] = *update.SubmittedAt
	}
	if update.LockedAt != nil {
		columns["locked_at"] = *update.LockedAt
	}

	result := r.db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the evaluation and cascades to its scores in one transaction.
func (r *evaluationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("evaluation_id = ?", id).Delete(&models.EvaluationScore{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Evaluation{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

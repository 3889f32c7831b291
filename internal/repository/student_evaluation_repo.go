package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// StudentEvaluationRepository handles persistence for student feedback records.
type StudentEvaluationRepository interface {
	CreateIgnoreDuplicate(ctx context.Context, evaluation *models.StudentEvaluation) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.StudentEvaluation, error)
	GetByScheduleAndStudent(ctx context.Context, scheduleID, studentID uuid.UUID) (models.StudentEvaluation, error)
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]models.StudentEvaluation, error)
	UpdateAnswers(ctx context.Context, id uuid.UUID, answers datatypes.JSONMap) error
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type studentEvaluationRepository struct {
	db *gorm.DB
}

// NewStudentEvaluationRepository constructs a repository backed by GORM.
func NewStudentEvaluationRepository(db *gorm.DB) StudentEvaluationRepository {
	return &studentEvaluationRepository{db: db}
}

func (r *studentEvaluationRepository) CreateIgnoreDuplicate(ctx context.Context, evaluation *models.StudentEvaluation) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(evaluation)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *studentEvaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (models.StudentEvaluation, error) {
	var evaluation models.StudentEvaluation
	if err := r.db.WithContext(ctx).First(&evaluation, "id = ?", id).Error; err != nil {
		return models.StudentEvaluation{}, err
	}
	return evaluation, nil
}

func (r *studentEvaluationRepository) GetByScheduleAndStudent(ctx context.Context, scheduleID, studentID uuid.UUID) (models.StudentEvaluation, error) {
	var evaluation models.StudentEvaluation
	if err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND student_id = ?", scheduleID, studentID).
		First(&evaluation).Error; err != nil {
		return models.StudentEvaluation{}, err
	}
	return evaluation, nil
}

func (r *studentEvaluationRepository) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]models.StudentEvaluation, error) {
	var evaluations []models.StudentEvaluation
	if err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at ASC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (r *studentEvaluationRepository) UpdateAnswers(ctx context.Context, id uuid.UUID, answers datatypes.JSONMap) error {
	result := r.db.WithContext(ctx).
		Model(&models.StudentEvaluation{}).
		Where("id = ?", id).
		Update("answers", answers)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentEvaluationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error {
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
		Model(&models.StudentEvaluation{}).
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

func (r *studentEvaluationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StudentEvaluation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

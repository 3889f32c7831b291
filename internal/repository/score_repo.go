package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// ScoreRepository handles persistence for per-criterion score records.
type ScoreRepository interface {
	ListByEvaluation(ctx context.Context, evaluationID uuid.UUID) ([]models.EvaluationScore, error)
	// Upsert writes one score keyed on (evaluation_id, criterion_id). A second
	// write to the same pair replaces score and comment.
	Upsert(ctx context.Context, score *models.EvaluationScore) error
	// BulkUpsert applies the whole batch in one transaction: all rows commit
	// or none do.
	BulkUpsert(ctx context.Context, scores []models.EvaluationScore) error
	DeleteByEvaluation(ctx context.Context, evaluationID uuid.UUID) error
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository constructs a repository backed by GORM.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) ListByEvaluation(ctx context.Context, evaluationID uuid.UUID) ([]models.EvaluationScore, error) {
	var scores []models.EvaluationScore
	if err := r.db.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("created_at ASC").
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *scoreRepository) Upsert(ctx context.Context, score *models.EvaluationScore) error {
	return upsertScore(r.db.WithContext(ctx), score)
}

func (r *scoreRepository) BulkUpsert(ctx context.Context, scores []models.EvaluationScore) error {
	if len(scores) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range scores {
			if err := upsertScore(tx, &scores[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *scoreRepository) DeleteByEvaluation(ctx context.Context, evaluationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Delete(&models.EvaluationScore{}).Error
}

func upsertScore(db *gorm.DB, score *models.EvaluationScore) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "evaluation_id"}, {Name: "criterion_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at"}),
	}).Create(score).Error
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// RubricRepository handles persistence for rubric templates and criteria.
type RubricRepository interface {
	ListTemplates(ctx context.Context, activeOnly bool) ([]models.RubricTemplate, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (models.RubricTemplate, error)
	GetTemplateWithCriteria(ctx context.Context, id uuid.UUID) (models.RubricTemplate, error)
	LatestActiveTemplate(ctx context.Context) (models.RubricTemplate, error)
	NextVersion(ctx context.Context, name string) (int, error)
	CreateTemplate(ctx context.Context, template *models.RubricTemplate) error
	UpdateTemplate(ctx context.Context, template *models.RubricTemplate) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error

	ListCriteria(ctx context.Context, templateID uuid.UUID) ([]models.RubricCriterion, error)
	ListAllCriteria(ctx context.Context) ([]models.RubricCriterion, error)
	ListCriteriaByIDs(ctx context.Context, ids []uuid.UUID) ([]models.RubricCriterion, error)
	GetCriterion(ctx context.Context, id uuid.UUID) (models.RubricCriterion, error)
	CreateCriterion(ctx context.Context, criterion *models.RubricCriterion) error
	UpdateCriterion(ctx context.Context, criterion *models.RubricCriterion) error
	DeleteCriterion(ctx context.Context, id uuid.UUID) error
}

type rubricRepository struct {
	db *gorm.DB
}

// NewRubricRepository constructs a repository backed by GORM.
func NewRubricRepository(db *gorm.DB) RubricRepository {
	return &rubricRepository{db: db}
}

func (r *rubricRepository) ListTemplates(ctx context.Context, activeOnly bool) ([]models.RubricTemplate, error) {
	query := r.db.WithContext(ctx).Order("updated_at DESC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var templates []models.RubricTemplate
	if err := query.Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *rubricRepository) GetTemplate(ctx context.Context, id uuid.UUID) (models.RubricTemplate, error) {
	var template models.RubricTemplate
	if err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error; err != nil {
		return models.RubricTemplate{}, err
	}
	return template, nil
}

func (r *rubricRepository) GetTemplateWithCriteria(ctx context.Context, id uuid.UUID) (models.RubricTemplate, error) {
	var template models.RubricTemplate
	if err := r.db.WithContext(ctx).
		Preload("Criteria", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&template, "id = ?", id).Error; err != nil {
		return models.RubricTemplate{}, err
	}
	return template, nil
}

// LatestActiveTemplate returns the most recently updated active template.
// Multiple active templates may coexist; this selector decides which one
// implicit consumers get.
func (r *rubricRepository) LatestActiveTemplate(ctx context.Context) (models.RubricTemplate, error) {
	var template models.RubricTemplate
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("updated_at DESC").
		First(&template).Error; err != nil {
		return models.RubricTemplate{}, err
	}
	return template, nil
}

// NextVersion returns one past the highest version in the name lineage.
func (r *rubricRepository) NextVersion(ctx context.Context, name string) (int, error) {
	var current int
	if err := r.db.WithContext(ctx).
		Model(&models.RubricTemplate{}).
		Where("name = ?", name).
		Select("COALESCE(MAX(version), 0)").
		Scan(&current).Error; err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (r *rubricRepository) CreateTemplate(ctx context.Context, template *models.RubricTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *rubricRepository) UpdateTemplate(ctx context.Context, template *models.RubricTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *rubricRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&models.RubricCriterion{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.RubricTemplate{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *rubricRepository) ListCriteria(ctx context.Context, templateID uuid.UUID) ([]models.RubricCriterion, error) {
	var criteria []models.RubricCriterion
	if err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("created_at ASC").
		Find(&criteria).Error; err != nil {
		return nil, err
	}
	return criteria, nil
}

func (r *rubricRepository) ListAllCriteria(ctx context.Context) ([]models.RubricCriterion, error) {
	var criteria []models.RubricCriterion
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&criteria).Error; err != nil {
		return nil, err
	}
	return criteria, nil
}

func (r *rubricRepository) ListCriteriaByIDs(ctx context.Context, ids []uuid.UUID) ([]models.RubricCriterion, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var criteria []models.RubricCriterion
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&criteria).Error; err != nil {
		return nil, err
	}
	return criteria, nil
}

func (r *rubricRepository) GetCriterion(ctx context.Context, id uuid.UUID) (models.RubricCriterion, error) {
	var criterion models.RubricCriterion
	if err := r.db.WithContext(ctx).First(&criterion, "id = ?", id).Error; err != nil {
		return models.RubricCriterion{}, err
	}
	return criterion, nil
}

func (r *rubricRepository) CreateCriterion(ctx context.Context, criterion *models.RubricCriterion) error {
	return r.db.WithContext(ctx).Create(criterion).Error
}

func (r *rubricRepository) UpdateCriterion(ctx context.Context, criterion *models.RubricCriterion) error {
	return r.db.WithContext(ctx).Save(criterion).Error
}

func (r *rubricRepository) DeleteCriterion(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RubricCriterion{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

// GroupRepository handles persistence for thesis groups and their membership.
type GroupRepository interface {
	List(ctx context.Context) ([]models.ThesisGroup, error)
	ListWithSchedules(ctx context.Context) ([]models.ThesisGroup, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.ThesisGroup, error)
	Create(ctx context.Context, group *models.ThesisGroup) error
	Update(ctx context.Context, group *models.ThesisGroup) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	// ReplaceMembers swaps the group's full member set. Implemented as
	// diff-and-apply inside one transaction so the group never passes through
	// an empty state and a failed insert rolls everything back.
	ReplaceMembers(ctx context.Context, groupID uuid.UUID, studentIDs []uuid.UUID) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository constructs a repository backed by GORM.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) List(ctx context.Context) ([]models.ThesisGroup, error) {
	var groups []models.ThesisGroup
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) ListWithSchedules(ctx context.Context) ([]models.ThesisGroup, error) {
	var groups []models.ThesisGroup
	if err := r.db.WithContext(ctx).
		Preload("Schedules").
		Order("title ASC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (models.ThesisGroup, error) {
	var group models.ThesisGroup
	if err := r.db.WithContext(ctx).Preload("Schedules").First(&group, "id = ?", id).Error; err != nil {
		return models.ThesisGroup{}, err
	}
	return group, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.ThesisGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) Update(ctx context.Context, group *models.ThesisGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.DefenseSchedule{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.ThesisGroup{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *groupRepository) ListMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *groupRepository) ReplaceMembers(ctx context.Context, groupID uuid.UUID, studentIDs []uuid.UUID) error {
	desired := make(map[uuid.UUID]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		desired[id] = struct{}{}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []uuid.UUID
		if err := tx.Model(&models.GroupMember{}).
			Where("group_id = ?", groupID).
			Pluck("student_id", &current).Error; err != nil {
			return err
		}

		existing := make(map[uuid.UUID]struct{}, len(current))
		for _, id := range current {
			existing[id] = struct{}{}
			if _, keep := desired[id]; !keep {
				if err := tx.Where("group_id = ? AND student_id = ?", groupID, id).
					Delete(&models.GroupMember{}).Error; err != nil {
					return err
				}
			}
		}

		for _, id := range studentIDs {
			if _, present := existing[id]; present {
				continue
			}
			member := models.GroupMember{GroupID: groupID, StudentID: id}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

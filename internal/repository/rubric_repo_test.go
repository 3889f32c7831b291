package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

func TestLatestActiveTemplatePrefersRecentlyUpdated(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRubricRepository(db)

	stale := models.RubricTemplate{Name: "Defense Rubric", Version: 1, Active: true}
	require.NoError(t, repo.CreateTemplate(context.Background(), &stale))
	fresh := models.RubricTemplate{Name: "Defense Rubric", Version: 2, Active: true}
	require.NoError(t, repo.CreateTemplate(context.Background(), &fresh))
	inactive := models.RubricTemplate{Name: "Archived Rubric", Version: 3, Active: false}
	require.NoError(t, repo.CreateTemplate(context.Background(), &inactive))

	// Force distinct updated_at stamps; sqlite clock granularity is coarse.
	require.NoError(t, db.Model(&models.RubricTemplate{}).
		Where("id = ?", stale.ID).
		Update("updated_at", time.Now().Add(-time.Hour)).Error)

	latest, err := repo.LatestActiveTemplate(context.Background())
	require.NoError(t, err)
	require.Equal(t, fresh.ID, latest.ID)
}

func TestLatestActiveTemplateEmptyCatalog(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRubricRepository(db)

	_, err := repo.LatestActiveTemplate(context.Background())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNextVersionFollowsNameLineage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRubricRepository(db)

	next, err := repo.NextVersion(context.Background(), "Defense Rubric")
	require.NoError(t, err)
	require.Equal(t, 1, next, "empty lineage starts at 1")

	require.NoError(t, repo.CreateTemplate(context.Background(), &models.RubricTemplate{Name: "Defense Rubric", Version: 4}))
	require.NoError(t, repo.CreateTemplate(context.Background(), &models.RubricTemplate{Name: "Other Rubric", Version: 9}))

	next, err = repo.NextVersion(context.Background(), "Defense Rubric")
	require.NoError(t, err)
	require.Equal(t, 5, next)
}

func TestDeleteTemplateCascadesCriteria(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRubricRepository(db)

	template := models.RubricTemplate{Name: "Defense Rubric", Version: 1}
	require.NoError(t, repo.CreateTemplate(context.Background(), &template))
	criterion := models.RubricCriterion{TemplateID: template.ID, Criterion: "Clarity", Weight: 2, MaxScore: 20}
	require.NoError(t, repo.CreateCriterion(context.Background(), &criterion))

	require.NoError(t, repo.DeleteTemplate(context.Background(), template.ID))

	_, err := repo.GetTemplate(context.Background(), template.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	criteria, err := repo.ListCriteria(context.Background(), template.ID)
	require.NoError(t, err)
	require.Empty(t, criteria)
}

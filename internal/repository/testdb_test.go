package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ThesisGroup{},
		&models.GroupMember{},
		&models.DefenseSchedule{},
		&models.SchedulePanelist{},
		&models.RubricTemplate{},
		&models.RubricCriterion{},
		&models.Evaluation{},
		&models.EvaluationScore{},
		&models.StudentEvaluation{},
		&models.Notification{},
	))
	return db
}

package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rubrica-dev/rubrica-api/internal/models"
)

func TestReplaceMembersDiffsAgainstCurrentSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)

	group := models.ThesisGroup{Title: "Distributed Cache Study"}
	require.NoError(t, repo.Create(context.Background(), &group))

	keep := uuid.New()
	dropped := uuid.New()
	added := uuid.New()

	require.NoError(t, repo.ReplaceMembers(context.Background(), group.ID, []uuid.UUID{keep, dropped}))
	require.NoError(t, repo.ReplaceMembers(context.Background(), group.ID, []uuid.UUID{keep, added}))

	members, err := repo.ListMemberIDs(context.Background(), group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Contains(t, members, keep)
	require.Contains(t, members, added)
	require.NotContains(t, members, dropped)
}

func TestReplaceMembersEmptySetClearsGroup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)

	group := models.ThesisGroup{Title: "Compiler Lab"}
	require.NoError(t, repo.Create(context.Background(), &group))
	require.NoError(t, repo.ReplaceMembers(context.Background(), group.ID, []uuid.UUID{uuid.New()}))

	require.NoError(t, repo.ReplaceMembers(context.Background(), group.ID, nil))

	members, err := repo.ListMemberIDs(context.Background(), group.ID)
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestGroupDeleteCascadesMembersAndSchedules(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)

	group := models.ThesisGroup{Title: "Robotics Capstone"}
	require.NoError(t, repo.Create(context.Background(), &group))
	require.NoError(t, repo.ReplaceMembers(context.Background(), group.ID, []uuid.UUID{uuid.New()}))
	require.NoError(t, db.Create(&models.DefenseSchedule{GroupID: group.ID}).Error)

	require.NoError(t, repo.Delete(context.Background(), group.ID))

	var memberCount int64
	require.NoError(t, db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&memberCount).Error)
	require.Zero(t, memberCount)

	var scheduleCount int64
	require.NoError(t, db.Model(&models.DefenseSchedule{}).Where("group_id = ?", group.ID).Count(&scheduleCount).Error)
	require.Zero(t, scheduleCount)
}

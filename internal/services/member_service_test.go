package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskhive/project-management-api/internal/models"
	"github.com/taskhive/project-management-api/internal/repository"
	"gorm.io/gorm"
)

func newMemberService(db *gorm.DB) *MemberService {
	return NewMemberService(repository.NewProjectRepository(db), repository.NewUserRepository(db))
}

func TestMemberService_AddMember(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMemberService(db)

	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, "alpha", owner.ID)

	added, err := svc.AddMember(AddMemberInput{
		ProjectID:     project.ID,
		UserID:        member.ID,
		CanCreateTask: true,
	})
	require.NoError(t, err)
	require.Equal(t, member.ID, added.UserID)
	require.True(t, added.CanCreateTask)
	require.False(t, added.CanAddMembers)
}

func TestMemberService_AddMemberDuplicate(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMemberService(db)

	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, "alpha", owner.ID)

	_, err := svc.AddMember(AddMemberInput{ProjectID: project.ID, UserID: member.ID})
	require.NoError(t, err)

	_, err = svc.AddMember(AddMemberInput{ProjectID: project.ID, UserID: member.ID})
	require.ErrorIs(t, err, ErrAlreadyProjectMember)
}

func TestMemberService_DuplicateInsertBlockedByConstraint(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewProjectRepository(db)

	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, "alpha", owner.ID)

	// Two raw inserts model concurrent requests racing past the service's
	// existence check: the partial unique index must reject the second.
	require.NoError(t, repo.AddMember(&models.ProjectMember{ProjectID: project.ID, UserID: member.ID}))
	err := repo.AddMember(&models.ProjectMember{ProjectID: project.ID, UserID: member.ID})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	require.NoError(t, db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, member.ID).
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestMemberService_ReAddAfterRemoval(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMemberService(db)

	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, "alpha", owner.ID)

	_, err := svc.AddMember(AddMemberInput{ProjectID: project.ID, UserID: member.ID, CanCreateTask: true})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(project.ID, member.ID))

	// Uniqueness is scoped to active rows, so re-adding works and starts
	// from the new flags, not the removed row's.
	readded, err := svc.AddMember(AddMemberInput{ProjectID: project.ID, UserID: member.ID, CanUpdateTask: true})
	require.NoError(t, err)
	require.False(t, readded.CanCreateTask)
	require.True(t, readded.CanUpdateTask)
}

func TestMemberService_RemoveMemberTwice(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMemberService(db)

	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, "alpha", owner.ID)

	_, err := svc.AddMember(AddMemberInput{ProjectID: project.ID, UserID: member.ID})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(project.ID, member.ID))
	require.ErrorIs(t, svc.RemoveMember(project.ID, member.ID), ErrMemberAlreadyRemoved)
}

func TestMemberService_RemoveUnknownMember(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMemberService(db)

	owner := createUser(t, db, "owner")
	project := createProject(t, db, "alpha", owner.ID)

	require.ErrorIs(t, svc.RemoveMember(project.ID, 9999), ErrMemberNotFound)
}

func TestMemberService_AddMemberToDeletedProject(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMemberService(db)

	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, "alpha", owner.ID)

	require.NoError(t, db.Delete(&models.Project{}, project.ID).Error)

	_, err := svc.AddMember(AddMemberInput{ProjectID: project.ID, UserID: member.ID})
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestMemberService_AddOwnerRejected(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMemberService(db)

	owner := createUser(t, db, "owner")
	project := createProject(t, db, "alpha", owner.ID)

	_, err := svc.AddMember(AddMemberInput{ProjectID: project.ID, UserID: owner.ID})
	require.ErrorIs(t, err, ErrCannotAddProjectOwner)
}

func TestMemberService_UpdateMemberFlagsPartialMerge(t *testing.T) {
	db := setupServiceDB(t)
	svc := newMemberService(db)

	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	project := createProject(t, db, "alpha", owner.ID)

	_, err := svc.AddMember(AddMemberInput{ProjectID: project.ID, UserID: member.ID, CanCreateTask: true})
	require.NoError(t, err)

	enable := true
	updated, err := svc.UpdateMemberFlags(project.ID, member.ID, UpdateMemberInput{
		CanDeleteTask: &enable,
	})
	require.NoError(t, err)
	require.True(t, updated.CanCreateTask, "untouched flag changed")
	require.True(t, updated.CanDeleteTask)
	require.False(t, updated.CanUpdateTask)
}

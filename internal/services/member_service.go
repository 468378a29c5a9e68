package services

import (
	"errors"
	"fmt"

	"github.com/taskhive/project-management-api/internal/models"
	"github.com/taskhive/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAlreadyProjectMember  = errors.New("user is already a member of this project")
	ErrMemberNotFound        = errors.New("project member not found")
	ErrMemberAlreadyRemoved  = errors.New("project member already removed")
	ErrCannotAddProjectOwner = errors.New("the project owner cannot be added as a member")
)

// MemberService provides business logic for project membership operations.
type MemberService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewMemberService creates a new MemberService.
func NewMemberService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *MemberService {
	return &MemberService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// AddMemberInput represents parameters to grant a user membership.
type AddMemberInput struct {
	ProjectID     uint64
	UserID        uint64
	CanCreateTask bool
	CanUpdateTask bool
	CanDeleteTask bool
	CanAddMembers bool
}

// AddMember grants a user membership with the given flags. The parent project
// must exist and be non-deleted. Duplicate active memberships are rejected;
// the partial unique index on (project_id, user_id) is the authoritative
// guard against concurrent duplicate inserts, so a constraint violation is
// translated rather than trusted to the preceding existence check.
func (s *MemberService) AddMember(input AddMemberInput) (*models.ProjectMember, error) {
	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if project.OwnerID == input.UserID {
		// The owner holds every capability implicitly; a membership row for
		// them would only create a stale shadow of that authority.
		return nil, ErrCannotAddProjectOwner
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.projectRepo.FindActiveMember(input.ProjectID, input.UserID); err == nil {
		return nil, ErrAlreadyProjectMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID:     input.ProjectID,
		UserID:        input.UserID,
		CanCreateTask: input.CanCreateTask,
		CanUpdateTask: input.CanUpdateTask,
		CanDeleteTask: input.CanDeleteTask,
		CanAddMembers: input.CanAddMembers,
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyProjectMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// UpdateMemberInput represents a partial update of a member's flags.
type UpdateMemberInput struct {
	CanCreateTask *bool
	CanUpdateTask *bool
	CanDeleteTask *bool
	CanAddMembers *bool
}

// UpdateMemberFlags applies a partial merge to a member's permission flags.
func (s *MemberService) UpdateMemberFlags(projectID, userID uint64, input UpdateMemberInput) (*models.ProjectMember, error) {
	member, err := s.projectRepo.FindActiveMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find project member: %w", err)
	}

	if input.CanCreateTask != nil {
		member.CanCreateTask = *input.CanCreateTask
	}
	if input.CanUpdateTask != nil {
		member.CanUpdateTask = *input.CanUpdateTask
	}
	if input.CanDeleteTask != nil {
		member.CanDeleteTask = *input.CanDeleteTask
	}
	if input.CanAddMembers != nil {
		member.CanAddMembers = *input.CanAddMembers
	}

	if err := s.projectRepo.UpdateMember(member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return member, nil
}

// RemoveMember soft-deletes a membership. A second removal attempt is
// rejected as already removed rather than silently accepted.
func (s *MemberService) RemoveMember(projectID, userID uint64) error {
	member, err := s.projectRepo.FindMemberAnyState(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find project member: %w", err)
	}

	if member.DeletedAt.Valid {
		return ErrMemberAlreadyRemoved
	}

	if err := s.projectRepo.SoftDeleteMember(member.ID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// ListMembers returns the active members of a project.
func (s *MemberService) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

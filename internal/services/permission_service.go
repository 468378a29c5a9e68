package services

import (
	"errors"
	"fmt"

	"github.com/taskhive/project-management-api/internal/models"
	"github.com/taskhive/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound = errors.New("project not found")
)

// Action identifies an intended operation on a project's resources.
type Action string

const (
	ActionView          Action = "view"
	ActionCreateTask    Action = "create-task"
	ActionUpdateTask    Action = "update-task"
	ActionDeleteTask    Action = "delete-task"
	ActionManageMembers Action = "manage-members"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	DecisionDeny Decision = iota
	DecisionAllow
)

// PermissionService decides whether a user may perform an action within a
// project. Ownership bypasses every flag check; otherwise the active
// membership row's flag for the action decides.
type PermissionService struct {
	projectRepo repository.ProjectRepository
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(projectRepo repository.ProjectRepository) *PermissionService {
	return &PermissionService{
		projectRepo: projectRepo,
	}
}

// Authorize evaluates user against project for the given action.
//
// The project is resolved ignoring its soft-delete state: a hidden project
// still carries ownership and flags, and callers that need a live project
// (task creation, member addition) check that separately. Returns
// ErrProjectNotFound only when no row exists at all.
func (s *PermissionService) Authorize(userID, projectID uint64, action Action) (Decision, error) {
	project, err := s.projectRepo.FindByIDAnyState(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DecisionDeny, ErrProjectNotFound
		}
		return DecisionDeny, fmt.Errorf("failed to find project: %w", err)
	}

	// Ownership wins outright, even over a stale all-false membership row.
	if project.OwnerID == userID {
		return DecisionAllow, nil
	}

	member, err := s.projectRepo.FindActiveMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DecisionDeny, nil
		}
		return DecisionDeny, fmt.Errorf("failed to find project member: %w", err)
	}

	if memberAllows(member, action) {
		return DecisionAllow, nil
	}
	return DecisionDeny, nil
}

// AuthorizeTask evaluates user against the task's project. A task with no
// project association is only accessible to its creator.
func (s *PermissionService) AuthorizeTask(userID uint64, task *models.Task, action Action) (Decision, error) {
	if task.ProjectID == nil {
		if task.CreatorID == userID {
			return DecisionAllow, nil
		}
		return DecisionDeny, nil
	}
	return s.Authorize(userID, *task.ProjectID, action)
}

func memberAllows(member *models.ProjectMember, action Action) bool {
	switch action {
	case ActionView:
		// Active membership alone grants read access.
		return true
	case ActionCreateTask:
		return member.CanCreateTask
	case ActionUpdateTask:
		return member.CanUpdateTask
	case ActionDeleteTask:
		return member.CanDeleteTask
	case ActionManageMembers:
		return member.CanAddMembers
	}
	return false
}

package repository

import (
	"github.com/taskhive/project-management-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds an active project by ID
	FindByID(id uint64) (*models.Project, error)

	// FindByIDAnyState finds a project by ID regardless of soft-delete state.
	// Authorization decisions and repeated-delete detection need the row even
	// after it has been hidden from normal reads.
	FindByIDAnyState(id uint64) (*models.Project, error)

	// ListForUser lists active projects the user owns or is an active member of
	ListForUser(userID uint64) ([]models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// SoftDelete marks a project deleted, leaving its tasks and memberships intact
	SoftDelete(id uint64) error

	// AddMember inserts a membership row. A unique-constraint violation on the
	// active (project, user) pair surfaces as gorm.ErrDuplicatedKey.
	AddMember(member *models.ProjectMember) error

	// FindActiveMember finds the active membership row for a (project, user) pair
	FindActiveMember(projectID, userID uint64) (*models.ProjectMember, error)

	// FindMemberAnyState finds the most recent membership row for a
	// (project, user) pair regardless of soft-delete state
	FindMemberAnyState(projectID, userID uint64) (*models.ProjectMember, error)

	// UpdateMember updates a membership row
	UpdateMember(member *models.ProjectMember) error

	// SoftDeleteMember marks a membership row deleted
	SoftDeleteMember(id uint64) error

	// ListMembers lists active members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds an active task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByIDAnyState finds a task by ID regardless of soft-delete state
	FindByIDAnyState(id uint64) (*models.Task, error)

	// ListByProject retrieves active tasks of a project with filtering and pagination
	ListByProject(projectID uint64, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// SoftDelete marks a task deleted
	SoftDelete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status *models.TaskStatus
	Page   int
	Limit  int
}

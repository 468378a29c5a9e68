package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskhive/project-management-api/internal/models"
	"github.com/taskhive/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNameRequired   = errors.New("project name cannot be empty")
	ErrProjectNameTaken      = errors.New("project name already exists")
	ErrNotProjectOwner       = errors.New("only the project owner can perform this action")
	ErrProjectAlreadyDeleted = errors.New("project already deleted")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     uint64
}

// CreateProject creates a new project owned by the authenticated user. The
// owner always comes from the resolved identity, never from client input.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProjectNameRequired
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProjectNameTaken
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjects returns active projects the user owns or belongs to.
func (s *ProjectService) ListProjects(userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns an active project with its members.
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, []models.ProjectMember, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, fmt.Errorf("failed to find project: %w", err)
	}

	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list project members: %w", err)
	}

	return project, members, nil
}

// UpdateProjectInput represents a partial update of a project. Only supplied
// fields change; ownership is immutable.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// UpdateProject applies a partial merge to a project. Owner only.
func (s *ProjectService) UpdateProject(projectID, actorID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if project.OwnerID != actorID {
		return nil, ErrNotProjectOwner
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projectRepo.Update(project); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProjectNameTaken
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject soft-deletes a project. Owner only. A second delete attempt
// is rejected rather than silently accepted.
func (s *ProjectService) DeleteProject(projectID, actorID uint64) error {
	project, err := s.projectRepo.FindByIDAnyState(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if project.OwnerID != actorID {
		return ErrNotProjectOwner
	}

	if project.DeletedAt.Valid {
		return ErrProjectAlreadyDeleted
	}

	if err := s.projectRepo.SoftDelete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

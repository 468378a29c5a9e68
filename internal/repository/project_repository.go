package repository

import (
	"github.com/taskhive/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds an active project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByIDAnyState finds a project by ID, including soft-deleted rows
func (r *GormProjectRepository) FindByIDAnyState(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.Unscoped().First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser lists active projects the user owns or is an active member of
func (r *GormProjectRepository) ListForUser(userID uint64) ([]models.Project, error) {
	var projects []models.Project

	memberSubQuery := r.db.Model(&models.ProjectMember{}).
		Select("project_members.project_id").
		Where("project_members.user_id = ?", userID)

	if err := r.db.
		Where("projects.owner_id = ? OR projects.id IN (?)", userID, memberSubQuery).
		Order("projects.created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// SoftDelete marks a project deleted. Tasks and memberships are left intact;
// they are merely hidden behind the project's deleted state.
func (r *GormProjectRepository) SoftDelete(id uint64) error {
	return r.db.Delete(&models.Project{}, id).Error
}

// AddMember inserts a membership row
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Create(member).Error
}

// FindActiveMember finds the active membership row for a (project, user) pair
func (r *GormProjectRepository) FindActiveMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindMemberAnyState finds the most recent membership row for a (project, user)
// pair, including soft-deleted rows
func (r *GormProjectRepository) FindMemberAnyState(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Unscoped().
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("id DESC").
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateMember updates a membership row
func (r *GormProjectRepository) UpdateMember(member *models.ProjectMember) error {
	return r.db.Save(member).Error
}

// SoftDeleteMember marks a membership row deleted
func (r *GormProjectRepository) SoftDeleteMember(id uint64) error {
	return r.db.Delete(&models.ProjectMember{}, id).Error
}

// ListMembers lists active members of a project
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

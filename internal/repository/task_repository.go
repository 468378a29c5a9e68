package repository

import (
	"github.com/taskhive/project-management-api/internal/database"
	"github.com/taskhive/project-management-api/internal/models"
	"github.com/taskhive/project-management-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds an active task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByIDAnyState finds a task by ID, including soft-deleted rows
func (r *GormTaskRepository) FindByIDAnyState(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Unscoped().First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByProject retrieves active tasks of a project with filtering and pagination
func (r *GormTaskRepository) ListByProject(projectID uint64, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.project_id = ?", projectID)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")
	if filter.Page > 0 && filter.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.Limit,
			Offset: (filter.Page - 1) * filter.Limit,
		}))
	}

	if err := listQuery.Preload("Creator").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// SoftDelete marks a task deleted
func (r *GormTaskRepository) SoftDelete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

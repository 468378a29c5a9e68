package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskhive/project-management-api/internal/models"
	"github.com/taskhive/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAlreadyDeleted = errors.New("task already deleted")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleEmpty         = errors.New("title cannot be empty")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	DueDate     *time.Time
	ProjectID   uint64
	CreatorID   uint64
}

// CreateTask creates a new task under a live project.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(input.Status) {
		return nil, ErrInvalidTaskStatus
	}

	// Creation requires an existing, non-deleted parent project.
	if _, err := s.projectRepo.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
		ProjectID:   &input.ProjectID,
		CreatorID:   input.CreatorID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator")
}

// ListTasksInput represents filters for listing a project's tasks.
type ListTasksInput struct {
	ProjectID uint64
	Status    *models.TaskStatus
	Page      int
	Limit     int
}

// ListTasks returns the active tasks of a project.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Status: input.Status,
		Page:   input.Page,
		Limit:  input.Limit,
	}

	tasks, total, err := s.taskRepo.ListByProject(input.ProjectID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns an active task with its creator.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// UpdateTaskInput represents a partial update of a task. Only supplied fields
// change.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// UpdateTask applies a partial merge to an existing task. Any status in the
// enumeration is settable; no workflow ordering is enforced.
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator")
}

// DeleteTask soft-deletes a task. A second delete attempt is rejected rather
// than silently accepted.
func (s *TaskService) DeleteTask(taskID uint64) error {
	task, err := s.taskRepo.FindByIDAnyState(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if task.DeletedAt.Valid {
		return ErrTaskAlreadyDeleted
	}

	if err := s.taskRepo.SoftDelete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

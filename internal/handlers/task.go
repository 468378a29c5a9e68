package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/project-management-api/internal/dto"
	apierrors "github.com/taskhive/project-management-api/internal/errors"
	"github.com/taskhive/project-management-api/internal/middleware"
	"github.com/taskhive/project-management-api/internal/models"
	"github.com/taskhive/project-management-api/internal/services"
	"github.com/taskhive/project-management-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the active tasks of the authorized project.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, exists := middleware.GetProjectID(c)
	if !exists {
		apierrors.InternalError(c, "Project not resolved")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		ProjectID: projectID,
		Page:      params.Page,
		Limit:     params.Limit,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		if !models.ValidTaskStatus(status) {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &status
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// CreateTask creates a new task under the authorized project.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, exists := middleware.GetProjectID(c)
	if !exists {
		apierrors.InternalError(c, "Project not resolved")
		return
	}

	type CreateTaskRequest struct {
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description"`
		Status      models.TaskStatus `json:"status"`
		DueDate     *time.Time        `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		ProjectID:   projectID,
		CreatorID:   userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task by ID. The permission check already ran in
// middleware; the service re-applies the soft-delete filter so hidden tasks
// read as not found.
func (h *TaskHandler) GetTask(c *gin.Context) {
	resolved, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not resolved")
		return
	}

	task, err := h.taskService.GetTask(resolved.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	resolved, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not resolved")
		return
	}

	type UpdateTaskRequest struct {
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		Status      *models.TaskStatus `json:"status"`
		DueDate     json.RawMessage    `json:"due_date"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}

	// An explicit null clears the due date; an absent field leaves it alone.
	if len(req.DueDate) > 0 {
		if string(req.DueDate) == "null" {
			input.ClearDueDate = true
		} else {
			var dueDate time.Time
			if err := json.Unmarshal(req.DueDate, &dueDate); err != nil {
				apierrors.BadRequest(c, "Invalid due date")
				return
			}
			input.DueDate = &dueDate
		}
	}

	task, err := h.taskService.UpdateTask(resolved.ID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft-deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	resolved, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not resolved")
		return
	}

	if err := h.taskService.DeleteTask(resolved.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidTaskStatus):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskAlreadyDeleted):
		apierrors.AlreadyDeleted(c, err.Error())
	default:
		log.Printf("task handler: %v", err)
		apierrors.InternalError(c, "")
	}
}

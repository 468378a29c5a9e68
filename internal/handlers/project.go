package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/project-management-api/internal/dto"
	apierrors "github.com/taskhive/project-management-api/internal/errors"
	"github.com/taskhive/project-management-api/internal/middleware"
	"github.com/taskhive/project-management-api/internal/services"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a new project owned by the authenticated user.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns projects the user owns or belongs to.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projects, err := h.projectService.ListProjects(userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	projectDTOs := make([]dto.ProjectDTO, len(projects))
	for i, project := range projects {
		projectDTOs[i] = dto.ToProjectDTO(project)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projectDTOs,
	})
}

// GetProject returns project details with members.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, exists := middleware.GetProjectID(c)
	if !exists {
		apierrors.InternalError(c, "Project not resolved")
		return
	}

	project, members, err := h.projectService.GetProject(projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project, members))
}

// UpdateProject applies a partial update to a project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type UpdateProjectRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(projectID, userID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject soft-deletes a project.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.DeleteProject(projectID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProjectNameTaken):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotProjectOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectAlreadyDeleted):
		apierrors.AlreadyDeleted(c, err.Error())
	default:
		log.Printf("project handler: %v", err)
		apierrors.InternalError(c, "")
	}
}

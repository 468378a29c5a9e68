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

// MemberHandler coordinates project membership HTTP handlers.
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// ListMembers returns the active members of a project.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	projectID, exists := middleware.GetProjectID(c)
	if !exists {
		apierrors.InternalError(c, "Project not resolved")
		return
	}

	members, err := h.memberService.ListMembers(projectID)
	if err != nil {
		respondMemberError(c, err)
		return
	}

	memberDTOs := make([]dto.ProjectMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToProjectMemberDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{
		"members": memberDTOs,
	})
}

// AddMember grants a user membership with the supplied permission flags.
func (h *MemberHandler) AddMember(c *gin.Context) {
	projectID, exists := middleware.GetProjectID(c)
	if !exists {
		apierrors.InternalError(c, "Project not resolved")
		return
	}

	type AddMemberRequest struct {
		UserID        uint64 `json:"user_id" binding:"required"`
		CanCreateTask bool   `json:"can_create_task"`
		CanUpdateTask bool   `json:"can_update_task"`
		CanDeleteTask bool   `json:"can_delete_task"`
		CanAddMembers bool   `json:"can_add_members"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.memberService.AddMember(services.AddMemberInput{
		ProjectID:     projectID,
		UserID:        req.UserID,
		CanCreateTask: req.CanCreateTask,
		CanUpdateTask: req.CanUpdateTask,
		CanDeleteTask: req.CanDeleteTask,
		CanAddMembers: req.CanAddMembers,
	})
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectMemberDTO(*member))
}

// UpdateMember applies a partial update to a member's permission flags.
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	projectID, exists := middleware.GetProjectID(c)
	if !exists {
		apierrors.InternalError(c, "Project not resolved")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type UpdateMemberRequest struct {
		CanCreateTask *bool `json:"can_create_task"`
		CanUpdateTask *bool `json:"can_update_task"`
		CanDeleteTask *bool `json:"can_delete_task"`
		CanAddMembers *bool `json:"can_add_members"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.memberService.UpdateMemberFlags(projectID, targetID, services.UpdateMemberInput{
		CanCreateTask: req.CanCreateTask,
		CanUpdateTask: req.CanUpdateTask,
		CanDeleteTask: req.CanDeleteTask,
		CanAddMembers: req.CanAddMembers,
	})
	if err != nil {
		respondMemberError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectMemberDTO(*member))
}

// RemoveMember soft-deletes a membership.
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	projectID, exists := middleware.GetProjectID(c)
	if !exists {
		apierrors.InternalError(c, "Project not resolved")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.memberService.RemoveMember(projectID, targetID); err != nil {
		respondMemberError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondMemberError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAlreadyProjectMember),
		errors.Is(err, services.ErrCannotAddProjectOwner):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrMemberAlreadyRemoved):
		apierrors.AlreadyDeleted(c, err.Error())
	default:
		log.Printf("member handler: %v", err)
		apierrors.InternalError(c, "")
	}
}

package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/taskhive/project-management-api/internal/errors"
	"github.com/taskhive/project-management-api/internal/services"
)

// ContextKeyProjectID is where project middleware stores the parsed id.
const ContextKeyProjectID = "project_id"

// RequireProjectPermission authorizes the current user for an action on the
// project named by the :id path parameter. ProjectNotFound maps to 404,
// Deny to 403.
func RequireProjectPermission(permissions *services.PermissionService, action services.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectIDStr := c.Param("id")
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		decision, err := permissions.Authorize(userID, projectID, action)
		if err != nil {
			if errors.Is(err, services.ErrProjectNotFound) {
				apierrors.NotFound(c, "Project not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		if decision != services.DecisionAllow {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}

		c.Set(ContextKeyProjectID, projectID)
		c.Next()
	}
}

// GetProjectID retrieves the authorized project ID from context
func GetProjectID(c *gin.Context) (uint64, bool) {
	id, exists := c.Get(ContextKeyProjectID)
	if !exists {
		return 0, false
	}
	projectID, ok := id.(uint64)
	return projectID, ok
}

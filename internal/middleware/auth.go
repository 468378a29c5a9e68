package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/project-management-api/internal/constants"
	apierrors "github.com/taskhive/project-management-api/internal/errors"
	"github.com/taskhive/project-management-api/internal/repository"
	"github.com/taskhive/project-management-api/internal/token"
)

// RequireAuth resolves the requesting user from the Authorization header.
//
// Identity always derives from the verified token's own claim. The user id is
// never read from query parameters or the request body.
func RequireAuth(tokenService *token.Service, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			apierrors.Unauthorized(c, "Invalid authorization header")
			c.Abort()
			return
		}

		userID, err := tokenService.Verify(parts[1])
		if err != nil {
			apierrors.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		// The token only asserts an id; the account must still exist.
		user, err := userRepo.FindByID(userID)
		if err != nil {
			apierrors.Unauthorized(c, "No such user")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/workstream/task-assignment-api/internal/constants"
	apperrors "github.com/workstream/task-assignment-api/internal/errors"
	"github.com/workstream/task-assignment-api/internal/models"
	"github.com/workstream/task-assignment-api/internal/services"
)

// RequireAuth validates the bearer access token and loads the acting user
// into the request context.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			apperrors.Unauthorized(c, "Authorization header is missing or invalid")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		user, err := authService.Authenticate(token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInactiveAccount):
				apperrors.Unauthorized(c, "Your account is inactive. Please contact admin.")
			case errors.Is(err, services.ErrUserNotFound):
				apperrors.Unauthorized(c, "No active user found")
			default:
				apperrors.Unauthorized(c, "Invalid or expired token")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// GetCurrentUser retrieves the authenticated user from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, false
	}

	return user, true
}

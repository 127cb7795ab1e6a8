package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workstream/task-assignment-api/internal/dto"
	apperrors "github.com/workstream/task-assignment-api/internal/errors"
	"github.com/workstream/task-assignment-api/internal/services"
	"github.com/workstream/task-assignment-api/internal/utils"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login authenticates a user and issues an access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	user, pair, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			apperrors.BadRequest(c, "Incorrect username or password")
		case errors.Is(err, services.ErrInactiveAccount):
			apperrors.BadRequest(c, "Your account is inactive. Please contact admin.")
		default:
			apperrors.Respond(c, err)
		}
		return
	}

	utils.Respond(c, http.StatusOK, "Login successful", dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       user.ID,
		Name:         user.FullName(),
		Role:         user.Role,
	})
}

// Refresh exchanges a valid refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	type RefreshRequest struct {
		Refresh string `json:"refresh" binding:"required"`
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Refresh token is required.")
		return
	}

	access, err := h.authService.Refresh(req.Refresh)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			apperrors.Unauthorized(c, "Invalid or expired token.")
			return
		}
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Token refreshed successfully", gin.H{"access": access})
}

// Logout blacklists the refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	type LogoutRequest struct {
		Refresh string `json:"refresh" binding:"required"`
	}

	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Refresh token is required.")
		return
	}

	if err := h.authService.Logout(req.Refresh); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			apperrors.BadRequest(c, "Invalid or expired token.")
			return
		}
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Logout successful.", nil)
}

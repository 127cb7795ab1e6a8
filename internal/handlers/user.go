package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workstream/task-assignment-api/internal/dto"
	apperrors "github.com/workstream/task-assignment-api/internal/errors"
	"github.com/workstream/task-assignment-api/internal/middleware"
	"github.com/workstream/task-assignment-api/internal/models"
	"github.com/workstream/task-assignment-api/internal/services"
	"github.com/workstream/task-assignment-api/internal/utils"
)

// UserHandler coordinates user-management HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns the users visible to the caller
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.ListUsers(actor)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Users retrieved successfully", dto.ToUserDTOs(users))
}

// GetUser returns a single user within the caller's visibility set
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(actor, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "User retrieved successfully", dto.ToUserDTO(*user))
}

// CreateUser creates a user under the acting admin
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	type CreateUserRequest struct {
		Username  string      `json:"username" binding:"required"`
		Email     string      `json:"email" binding:"required,email"`
		FirstName string      `json:"first_name"`
		LastName  string      `json:"last_name"`
		Password  string      `json:"password" binding:"required"`
		Role      models.Role `json:"role"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	user, err := h.userService.CreateUser(actor, services.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, "User created successfully", dto.ToUserDTO(*user))
}

// UpdateUser applies a partial update to a user record
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Email     *string      `json:"email"`
		FirstName *string      `json:"first_name"`
		LastName  *string      `json:"last_name"`
		Password  *string      `json:"password"`
		Role      *models.Role `json:"role"`
		IsActive  *bool        `json:"is_active"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	user, err := h.userService.UpdateUser(actor, userID, services.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "User updated successfully", dto.ToUserDTO(*user))
}

// DeleteUser hard deletes a user
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(actor, userID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "User deleted successfully", nil)
}

package dto

import (
	"github.com/workstream/task-assignment-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	ParentID  *uint64     `json:"parent_id,omitempty"`
}

// LoginResponse carries the issued tokens and the caller's identity.
type LoginResponse struct {
	AccessToken  string      `json:"access"`
	RefreshToken string      `json:"refresh"`
	UserID       uint64      `json:"user_id"`
	Name         string      `json:"name"`
	Role         models.Role `json:"role"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		ParentID:  user.ParentID,
	}
}

// ToUserDTOs converts a slice of User models
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

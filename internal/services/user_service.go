package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/workstream/task-assignment-api/internal/constants"
	apperrors "github.com/workstream/task-assignment-api/internal/errors"
	"github.com/workstream/task-assignment-api/internal/models"
	"github.com/workstream/task-assignment-api/internal/policy"
	"github.com/workstream/task-assignment-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles user management for the role tiers.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      models.Role
}

// UpdateUserInput represents a partial user update
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
	Role      *models.Role
	IsActive  *bool
}

// ListUsers returns the users within the actor's visibility set:
// super-admins see everyone but themselves, admins see the users they
// created, regular users see only themselves.
func (s *UserService) ListUsers(actor *models.User) ([]models.User, error) {
	users, err := s.userRepo.List(userScopeFor(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns a user within the actor's visibility set.
func (s *UserService) GetUser(actor *models.User, userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindVisibleByID(userID, userScopeFor(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateUser creates a user under the acting admin. The parent reference
// is always the actor and never changes afterwards.
func (s *UserService) CreateUser(actor *models.User, input CreateUserInput) (*models.User, error) {
	if err := policy.CanCreateUser(actor); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid role: %s", role))
	}
	if err := policy.CanAssignRole(actor, role); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperrors.Validation("username is required")
	}
	if input.Email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, apperrors.Validation(fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	}

	taken, err := s.userRepo.ExistsByUsernameOrEmail(username, input.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check uniqueness: %w", err)
	}
	if taken {
		return nil, apperrors.Validation("A user with this username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	parentID := actor.ID
	user := &models.User{
		Username:     username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		ParentID:     &parentID,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateUser applies a partial update to a user record. Role and
// activation changes are reserved to super-admins.
func (s *UserService) UpdateUser(actor *models.User, userID uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := policy.CanUpdateUser(actor, user); err != nil {
		return nil, err
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid role: %s", *input.Role))
		}
		if !actor.IsSuperAdmin() {
			return nil, apperrors.Permission("Only super admins can change roles")
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		if !actor.IsSuperAdmin() {
			return nil, apperrors.Permission("Only super admins can activate or deactivate users")
		}
		user.IsActive = *input.IsActive
	}
	if input.Email != nil {
		if *input.Email == "" {
			return nil, apperrors.Validation("email cannot be empty")
		}
		taken, err := s.userRepo.ExistsByUsernameOrEmail(user.Username, *input.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check uniqueness: %w", err)
		}
		if taken {
			return nil, apperrors.Validation("A user with this username or email already exists")
		}
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, apperrors.Validation(fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser hard deletes a user record.
func (s *UserService) DeleteUser(actor *models.User, userID uint64) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := policy.CanDeleteUser(actor, user); err != nil {
		return err
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// userScopeFor maps a role tier to its user visibility scope.
func userScopeFor(actor *models.User) repository.UserScope {
	switch {
	case actor.IsSuperAdmin():
		return repository.UserScope{Visibility: repository.UserVisibilityAllOthers, UserID: actor.ID}
	case actor.IsAdmin():
		return repository.UserScope{Visibility: repository.UserVisibilityCreated, UserID: actor.ID}
	default:
		return repository.UserScope{Visibility: repository.UserVisibilitySelf, UserID: actor.ID}
	}
}

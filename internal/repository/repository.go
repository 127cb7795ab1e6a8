package repository

import (
	"errors"
	"time"

	"github.com/workstream/task-assignment-api/internal/models"
)

var (
	// ErrActiveTaskExists is returned when a transition into in_progress
	// would give the assignee a second active task.
	ErrActiveTaskExists = errors.New("task repository: assignee already has an active task")
	// ErrTaskNotPending is returned when a start transition finds the task
	// no longer in pending state at commit time.
	ErrTaskNotPending = errors.New("task repository: task is not pending")
)

// TaskVisibility selects the base set of tasks an actor may see.
type TaskVisibility int

const (
	// VisibilityAll exposes every task (super-admins).
	VisibilityAll TaskVisibility = iota
	// VisibilityAssignedOrCreated exposes tasks the user is assigned to or
	// created (admins).
	VisibilityAssignedOrCreated
	// VisibilityAssignedOnly exposes tasks assigned to the user (regular users).
	VisibilityAssignedOnly
)

// TaskScope binds a visibility mode to the acting user.
type TaskScope struct {
	Visibility TaskVisibility
	UserID     uint64
}

// TaskFilter holds the visibility scope plus the optional list filters.
type TaskFilter struct {
	Scope        TaskScope
	Status       *models.TaskStatus
	AssignedToID *uint64
	Search       string
	Page         int
	PerPage      int
}

// TaskRepository defines the interface for task data access.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindVisibleByID finds a task by ID within a visibility scope; a task
	// outside the scope is reported as not found
	FindVisibleByID(id uint64, scope TaskScope, preload ...string) (*models.Task, error)

	// List retrieves tasks within a scope with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists a modified task
	Update(task *models.Task) error

	// UpdateWithActiveGuard persists a task entering in_progress, failing
	// with ErrActiveTaskExists if the assignee already has an active task.
	// The count and the write happen in one serialized transaction.
	UpdateWithActiveGuard(task *models.Task) error

	// Start transitions a pending task to in_progress for the assignee,
	// enforcing the single-active-task constraint atomically
	Start(taskID, assigneeID uint64) (*models.Task, error)

	// Delete removes a task
	Delete(id uint64) error
}

// UserVisibility selects the base set of users an actor may see.
type UserVisibility int

const (
	// UserVisibilityAllOthers exposes every user except the actor (super-admins).
	UserVisibilityAllOthers UserVisibility = iota
	// UserVisibilityCreated exposes users the actor created (admins).
	UserVisibilityCreated
	// UserVisibilitySelf exposes only the actor's own record.
	UserVisibilitySelf
)

// UserScope binds a user visibility mode to the acting user.
type UserScope struct {
	Visibility UserVisibility
	UserID     uint64
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindVisibleByID finds a user by ID within a visibility scope
	FindVisibleByID(id uint64, scope UserScope) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// ExistsByUsernameOrEmail reports whether another user already holds
	// the username or email
	ExistsByUsernameOrEmail(username, email string, excludeID uint64) (bool, error)

	// List retrieves the users within a visibility scope
	List(scope UserScope) ([]models.User, error)

	// Update persists a modified user
	Update(user *models.User) error

	// Delete hard deletes a user
	Delete(id uint64) error
}

// TokenRepository defines the interface for the refresh-token blacklist.
type TokenRepository interface {
	// Revoke blacklists a refresh token by JTI until its expiry
	Revoke(jti string, expiresAt time.Time) error

	// IsRevoked reports whether a JTI has been blacklisted
	IsRevoked(jti string) (bool, error)
}

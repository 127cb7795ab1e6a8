// Package policy holds the access-control decisions as pure functions over
// an explicit (actor, operation, target) tuple. Nothing here touches the
// request, the store, or any other ambient state, so every rule is unit
// testable on bare values.
package policy

import (
	apperrors "github.com/workstream/task-assignment-api/internal/errors"
	"github.com/workstream/task-assignment-api/internal/models"
)

// regularUpdatableFields is the only field set a regular assignee may touch
// on their own task. Any other key in the payload rejects the whole request.
var regularUpdatableFields = map[string]struct{}{
	"status":            {},
	"completion_report": {},
	"worked_hours":      {},
}

// CanCreateTask allows task creation for admins and super-admins.
func CanCreateTask(actor *models.User) error {
	if !actor.IsAdmin() {
		return apperrors.Permission("Only admins can create tasks")
	}
	return nil
}

// CanDeleteTask allows task deletion for super-admins only.
func CanDeleteTask(actor *models.User) error {
	if !actor.IsSuperAdmin() {
		return apperrors.Permission("Only super admins can delete tasks")
	}
	return nil
}

// CanUpdateTask decides whether the actor may apply a partial update
// touching the given payload fields. Admins may change any field on any
// task they can see. Regular users may only update their own task, and
// only within the restricted field set.
func CanUpdateTask(actor *models.User, task *models.Task, fields []string) error {
	if actor.IsAdmin() {
		return nil
	}

	if task.AssignedToID != actor.ID {
		return apperrors.Permission("You can only update tasks assigned to you")
	}

	for _, field := range fields {
		if _, ok := regularUpdatableFields[field]; !ok {
			return apperrors.Permission("You can only update status, completion_report and worked_hours")
		}
	}

	return nil
}

// CanStartTask allows the pending-to-in-progress transition only for the
// task's assignee, regardless of role.
func CanStartTask(actor *models.User, task *models.Task) error {
	if task.AssignedToID != actor.ID {
		return apperrors.Permission("You can only start tasks assigned to you")
	}
	return nil
}

// CanCreateUser allows user creation for admins and super-admins.
func CanCreateUser(actor *models.User) error {
	if !actor.IsAdmin() {
		return apperrors.Permission("Only admins can create users")
	}
	return nil
}

// CanAssignRole restricts granting elevated tiers to super-admins.
func CanAssignRole(actor *models.User, role models.Role) error {
	if role != models.RoleUser && !actor.IsSuperAdmin() {
		return apperrors.Permission("Only super admins can grant elevated roles")
	}
	return nil
}

// CanUpdateUser allows super-admins anywhere, admins on users they
// created, and every user on their own record.
func CanUpdateUser(actor, target *models.User) error {
	if actor.IsSuperAdmin() || actor.ID == target.ID {
		return nil
	}
	if actor.IsAdmin() && target.ParentID != nil && *target.ParentID == actor.ID {
		return nil
	}
	return apperrors.Permission("Permission denied")
}

// CanDeleteUser allows super-admins anywhere and admins on users they
// created. Users cannot delete themselves.
func CanDeleteUser(actor, target *models.User) error {
	if actor.ID == target.ID {
		return apperrors.Permission("You cannot delete your own account")
	}
	if actor.IsSuperAdmin() {
		return nil
	}
	if actor.IsAdmin() && target.ParentID != nil && *target.ParentID == actor.ID {
		return nil
	}
	return apperrors.Permission("Permission denied")
}

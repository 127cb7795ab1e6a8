package repository

import (
	"strings"

	"github.com/workstream/task-assignment-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindVisibleByID finds a task by ID within a visibility scope. A task
// outside the scope surfaces as gorm.ErrRecordNotFound so existence never
// leaks through the error kind.
func (r *GormTaskRepository) FindVisibleByID(id uint64, scope TaskScope, preload ...string) (*models.Task, error) {
	var task models.Task
	query := applyTaskScope(r.db, scope)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, "tasks.id = ?", id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks within a scope with filtering and pagination.
// Ordering is creation time descending with the ID as tiebreak, so page
// boundaries are stable across requests with unchanged data.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := applyTaskScope(r.db.Model(&models.Task{}), filter.Scope)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC, tasks.id DESC")

	if filter.Page > 0 && filter.PerPage > 0 {
		offset := (filter.Page - 1) * filter.PerPage
		listQuery = listQuery.Offset(offset).Limit(filter.PerPage)
	}

	if err := listQuery.Preload("AssignedTo").Preload("AssignedBy").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update persists a modified task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateWithActiveGuard persists a task entering in_progress. The
// assignee's user row is locked before the active count, so two
// concurrent transitions for the same assignee serialize on that row and
// cannot both observe zero active tasks.
func (r *GormTaskRepository) UpdateWithActiveGuard(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockAssignee(tx, task.AssignedToID); err != nil {
			return err
		}

		var active int64
		err := tx.Model(&models.Task{}).
			Where("assigned_to_id = ? AND status = ? AND id <> ?",
				task.AssignedToID, models.TaskStatusInProgress, task.ID).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveTaskExists
		}

		return tx.Save(task).Error
	})
}

// Start transitions a pending task to in_progress. The task row is locked
// and its status re-read inside the transaction, so a concurrent start on
// the same task or assignee serializes behind this one.
func (r *GormTaskRepository) Start(taskID, assigneeID uint64) (*models.Task, error) {
	var task models.Task

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&task, taskID).Error; err != nil {
			return err
		}

		if task.Status != models.TaskStatusPending {
			return ErrTaskNotPending
		}

		if err := lockAssignee(tx, assigneeID); err != nil {
			return err
		}

		var active int64
		err := tx.Model(&models.Task{}).
			Where("assigned_to_id = ? AND status = ? AND id <> ?",
				assigneeID, models.TaskStatusInProgress, taskID).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveTaskExists
		}

		task.Status = models.TaskStatusInProgress
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// Delete removes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// applyTaskScope narrows a query to the tasks visible to the actor
func applyTaskScope(db *gorm.DB, scope TaskScope) *gorm.DB {
	switch scope.Visibility {
	case VisibilityAssignedOrCreated:
		return db.Where("tasks.assigned_to_id = ? OR tasks.assigned_by_id = ?", scope.UserID, scope.UserID)
	case VisibilityAssignedOnly:
		return db.Where("tasks.assigned_to_id = ?", scope.UserID)
	default:
		return db
	}
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support it.
// SQLite has no row locks but serializes write transactions, so the bare
// transaction already gives the required isolation there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockAssignee locks the assignee's user row for the rest of the
// transaction. The active-task count that follows must be a plain query,
// since locking clauses are invalid on aggregates in postgres; counting
// matches no rows locks nothing, so the user row is the serialization
// point for all transitions into in_progress for one assignee.
func lockAssignee(tx *gorm.DB, assigneeID uint64) error {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}
	var locked models.User
	return lockForUpdate(tx).Select("id").First(&locked, assigneeID).Error
}

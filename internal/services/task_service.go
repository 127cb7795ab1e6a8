package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/workstream/task-assignment-api/internal/dto"
	apperrors "github.com/workstream/task-assignment-api/internal/errors"
	"github.com/workstream/task-assignment-api/internal/models"
	"github.com/workstream/task-assignment-api/internal/policy"
	"github.com/workstream/task-assignment-api/internal/repository"
	"github.com/workstream/task-assignment-api/internal/utils"
	"gorm.io/gorm"
)

const msgOneActiveTask = "You can only work on one task at a time. " +
	"Please complete your current task before starting a new one."

var taskPreloads = []string{"AssignedTo", "AssignedBy"}

// TaskService orchestrates task authorization, validation, and the status
// lifecycle over the repository.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status       *models.TaskStatus
	AssignedToID *uint64
	Search       string
	Pagination   utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	AssignedToID uint64
	DueDate      time.Time
}

// ListTasks returns the actor's visible tasks, filtered, ordered by
// creation time descending, and paged. Out-of-range pages are clamped
// into [1, totalPages].
func (s *TaskService) ListTasks(actor *models.User, input ListTasksInput) ([]models.Task, utils.PaginationMeta, error) {
	filter := repository.TaskFilter{
		Scope:        taskScopeFor(actor),
		Status:       input.Status,
		AssignedToID: input.AssignedToID,
		Search:       input.Search,
		Page:         input.Pagination.Page,
		PerPage:      input.Pagination.PerPage,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, utils.PaginationMeta{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	clamped, meta := utils.ClampPage(input.Pagination, total)
	if clamped.Page != filter.Page {
		filter.Page = clamped.Page
		tasks, _, err = s.taskRepo.List(filter)
		if err != nil {
			return nil, utils.PaginationMeta{}, fmt.Errorf("failed to list tasks: %w", err)
		}
	}

	return tasks, meta, nil
}

// GetTask returns a task if it lies within the actor's visibility set.
// Out-of-scope tasks are reported as not found, never as forbidden.
func (s *TaskService) GetTask(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindVisibleByID(taskID, taskScopeFor(actor), taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a pending task. The assigner is always the acting
// admin; any client-supplied assigner is ignored upstream.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if err := policy.CanCreateTask(actor); err != nil {
		return nil, err
	}

	if input.Title == "" {
		return nil, apperrors.Validation("title is required")
	}
	if input.Description == "" {
		return nil, apperrors.Validation("description is required")
	}
	if input.AssignedToID == 0 {
		return nil, apperrors.Validation("assigned_to_id is required")
	}
	if input.DueDate.IsZero() {
		return nil, apperrors.Validation("due_date is required")
	}

	if _, err := s.userRepo.FindByID(input.AssignedToID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("Assigned user does not exist")
		}
		return nil, fmt.Errorf("failed to verify assignee: %w", err)
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		AssignedToID: input.AssignedToID,
		AssignedByID: actor.ID,
		DueDate:      input.DueDate,
		Status:       models.TaskStatusPending,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateTask applies a partial update under the actor's field scope and
// the status transition rules, then persists the merged record. A merge
// that moves the task into in_progress runs under the active-task guard.
func (s *TaskService) UpdateTask(actor *models.User, taskID uint64, patch *dto.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		return nil, apperrors.Validation("No data provided for update")
	}

	task, err := s.taskRepo.FindVisibleByID(taskID, taskScopeFor(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := policy.CanUpdateTask(actor, task, patch.Fields()); err != nil {
		return nil, err
	}

	if err := s.mergePatch(task, patch); err != nil {
		return nil, err
	}

	wasInProgress := patch.Status != nil && *patch.Status == models.TaskStatusInProgress
	enteringActive := task.Status == models.TaskStatusInProgress &&
		(wasInProgress || patch.Has("assigned_to_id"))

	if enteringActive {
		err = s.taskRepo.UpdateWithActiveGuard(task)
	} else {
		err = s.taskRepo.Update(task)
	}
	if err != nil {
		if errors.Is(err, repository.ErrActiveTaskExists) {
			return nil, apperrors.Conflict(msgOneActiveTask)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// mergePatch validates the patch against the task's current state and
// applies it field by field.
func (s *TaskService) mergePatch(task *models.Task, patch *dto.TaskPatch) error {
	// Worked hours bounds apply independent of status.
	if patch.WorkedHours != nil && *patch.WorkedHours < 0 {
		return apperrors.Validation("Worked hours cannot be negative")
	}

	newStatus := task.Status
	if patch.Has("status") {
		if patch.Status == nil {
			return apperrors.Validation("status cannot be null")
		}
		newStatus = *patch.Status
	}

	if !task.Status.CanTransition(newStatus) {
		return apperrors.Validation("Cannot change status from completed to other statuses")
	}

	if patch.Has("title") {
		if patch.Title == nil || *patch.Title == "" {
			return apperrors.Validation("title cannot be empty")
		}
		task.Title = *patch.Title
	}
	if patch.Has("description") {
		if patch.Description == nil {
			return apperrors.Validation("description cannot be null")
		}
		task.Description = *patch.Description
	}
	if patch.Has("assigned_to_id") {
		if patch.AssignedToID == nil {
			return apperrors.Validation("assigned_to_id cannot be null")
		}
		if _, err := s.userRepo.FindByID(*patch.AssignedToID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Validation("Assigned user does not exist")
			}
			return fmt.Errorf("failed to verify assignee: %w", err)
		}
		task.AssignedToID = *patch.AssignedToID
	}
	if patch.Has("due_date") {
		if patch.DueDate == nil {
			return apperrors.Validation("due_date cannot be null")
		}
		task.DueDate = *patch.DueDate
	}
	if patch.Has("completion_report") {
		task.CompletionReport = patch.CompletionReport
	}
	if patch.Has("worked_hours") {
		task.WorkedHours = patch.WorkedHours
	}
	task.Status = newStatus

	// Completion requires both fields present on the merged record,
	// whether stored earlier or supplied in this request.
	if newStatus == models.TaskStatusCompleted {
		if task.CompletionReport == nil || *task.CompletionReport == "" {
			return apperrors.Validation("Completion report is required to mark task as complete")
		}
		if task.WorkedHours == nil {
			return apperrors.Validation("Worked hours are required to mark task as complete")
		}
	}

	return nil
}

// DeleteTask removes a task. Super-admin only.
func (s *TaskService) DeleteTask(actor *models.User, taskID uint64) error {
	if err := policy.CanDeleteTask(actor); err != nil {
		return err
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// StartTask transitions a pending task to in_progress for its assignee.
// The single-active-task check and the write are serialized at the store,
// so concurrent starts for the same assignee cannot both succeed.
func (s *TaskService) StartTask(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := policy.CanStartTask(actor, task); err != nil {
		return nil, err
	}

	if task.Status != models.TaskStatusPending {
		return nil, apperrors.Validation(fmt.Sprintf("Task cannot be started from %s status", task.Status))
	}

	started, err := s.taskRepo.Start(taskID, actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrActiveTaskExists):
			return nil, apperrors.Conflict(msgOneActiveTask)
		case errors.Is(err, repository.ErrTaskNotPending):
			// Lost a race with another mutation between the read above
			// and the transaction.
			return nil, apperrors.Validation("Task cannot be started from its current status")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to start task: %w", err)
	}

	return s.taskRepo.FindByID(started.ID, taskPreloads...)
}

// taskScopeFor maps a role tier to its task visibility scope.
func taskScopeFor(actor *models.User) repository.TaskScope {
	switch {
	case actor.IsSuperAdmin():
		return repository.TaskScope{Visibility: repository.VisibilityAll}
	case actor.IsAdmin():
		return repository.TaskScope{Visibility: repository.VisibilityAssignedOrCreated, UserID: actor.ID}
	default:
		return repository.TaskScope{Visibility: repository.VisibilityAssignedOnly, UserID: actor.ID}
	}
}

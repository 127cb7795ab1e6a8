package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workstream/task-assignment-api/internal/dto"
	apperrors "github.com/workstream/task-assignment-api/internal/errors"
	"github.com/workstream/task-assignment-api/internal/middleware"
	"github.com/workstream/task-assignment-api/internal/models"
	"github.com/workstream/task-assignment-api/internal/services"
	"github.com/workstream/task-assignment-api/internal/utils"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user, filtered and paged.
// Filters: status, assignedTo (user id), search (title/description substring).
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{
		Search:     c.Query("search"),
		Pagination: utils.GetPaginationParams(c),
	}

	if statusParam := c.Query("status"); statusParam != "" {
		status := models.TaskStatus(statusParam)
		if !status.Valid() {
			apperrors.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &status
	}

	if assignedTo := c.Query("assignedTo"); assignedTo != "" {
		id, err := strconv.ParseUint(assignedTo, 10, 64)
		if err != nil {
			apperrors.BadRequest(c, "Invalid assignedTo filter")
			return
		}
		input.AssignedToID = &id
	}

	tasks, meta, err := h.taskService.ListTasks(actor, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.RespondPaged(c, http.StatusOK, "Tasks list retrieved successfully", dto.ToTaskDTOs(tasks), meta)
}

// GetTask returns a single task within the caller's visibility set
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(actor, taskID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Task retrieved successfully", dto.ToTaskDTO(*task))
}

// CreateTask creates a new pending task. Admin only; the assigner is
// always the caller.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description" binding:"required"`
		AssignedToID uint64 `json:"assigned_to_id" binding:"required"`
		DueDate      string `json:"due_date" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	dueDate, err := dto.ParseDueDate(req.DueDate)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	task, err := h.taskService.CreateTask(actor, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: req.AssignedToID,
		DueDate:      dueDate,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusCreated, "Task created successfully", dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	patch, err := dto.ParseTaskPatch(raw)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(actor, taskID, patch)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Task updated successfully", dto.ToTaskDTO(*task))
}

// DeleteTask removes a task. Super-admin only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(actor, taskID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// StartTask transitions a pending task to in_progress for its assignee
func (h *TaskHandler) StartTask(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.StartTask(actor, taskID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, "Task started successfully", dto.ToTaskDTO(*task))
}

// parseIDParam parses the :id path parameter, responding 400 on failure
func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Invalid ID parameter")
		return 0, false
	}
	return id, true
}

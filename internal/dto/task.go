package dto

import (
	"time"

	"github.com/workstream/task-assignment-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID               uint64            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	AssignedTo       *UserDTO          `json:"assigned_to,omitempty"`
	AssignedToID     uint64            `json:"assigned_to_id"`
	AssignedBy       *UserDTO          `json:"assigned_by,omitempty"`
	AssignedByID     uint64            `json:"assigned_by_id"`
	DueDate          time.Time         `json:"due_date"`
	Status           models.TaskStatus `json:"status"`
	CompletionReport *string           `json:"completion_report"`
	WorkedHours      *float64          `json:"worked_hours"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		AssignedToID:     task.AssignedToID,
		AssignedByID:     task.AssignedByID,
		DueDate:          task.DueDate,
		Status:           task.Status,
		CompletionReport: task.CompletionReport,
		WorkedHours:      task.WorkedHours,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}

	// Include related users if preloaded
	if task.AssignedTo.ID != 0 {
		assignee := ToUserDTO(task.AssignedTo)
		dto.AssignedTo = &assignee
	}
	if task.AssignedBy.ID != 0 {
		assigner := ToUserDTO(task.AssignedBy)
		dto.AssignedBy = &assigner
	}

	return dto
}

// ToTaskDTOs converts a slice of Task models
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}

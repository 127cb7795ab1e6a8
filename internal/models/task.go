package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusPaused     TaskStatus = "paused"
)

// Valid reports whether the status is one of the known states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusPaused:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted
}

// CanTransition reports whether a task may move from s to next.
// Completed is terminal; every other move between known states is legal
// here. The in-progress and completion guards are value checks layered
// on top by the service, not part of the transition graph itself.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return !s.Terminal()
}

type Task struct {
	ID               uint64     `gorm:"primarykey" json:"id"`
	Title            string     `gorm:"type:varchar(200);not null" json:"title"`
	Description      string     `gorm:"type:text;not null" json:"description"`
	AssignedToID     uint64     `gorm:"not null;index" json:"assigned_to_id"`
	AssignedByID     uint64     `gorm:"not null;index" json:"assigned_by_id"`
	DueDate          time.Time  `gorm:"not null" json:"due_date"`
	Status           TaskStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CompletionReport *string    `gorm:"type:text" json:"completion_report"`
	WorkedHours      *float64   `gorm:"type:decimal(5,2)" json:"worked_hours"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relations
	AssignedTo User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	AssignedBy User `gorm:"foreignKey:AssignedByID" json:"assigned_by,omitempty"`
}

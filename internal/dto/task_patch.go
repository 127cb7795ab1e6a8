package dto

import (
	"fmt"
	"time"

	apperrors "github.com/workstream/task-assignment-api/internal/errors"
	"github.com/workstream/task-assignment-api/internal/models"
)

// Accepted layouts for due dates: plain dates and full timestamps.
var dueDateLayouts = []string{"2006-01-02", time.RFC3339}

// TaskPatch is a partial task update decoded from a raw JSON object. It
// keeps the list of keys the client actually sent, so the policy layer can
// reject payloads touching fields outside an actor's allowed set, and so a
// JSON null can clear a nullable column.
type TaskPatch struct {
	Title            *string
	Description      *string
	AssignedToID     *uint64
	DueDate          *time.Time
	Status           *models.TaskStatus
	CompletionReport *string
	WorkedHours      *float64

	fields []string
}

// Fields returns every key present in the payload, known or not.
func (p *TaskPatch) Fields() []string {
	return p.fields
}

// Has reports whether the payload contained the given key.
func (p *TaskPatch) Has(field string) bool {
	for _, f := range p.fields {
		if f == field {
			return true
		}
	}
	return false
}

// Empty reports whether the payload contained no keys at all.
func (p *TaskPatch) Empty() bool {
	return len(p.fields) == 0
}

// ParseTaskPatch validates and coerces a raw JSON object into a TaskPatch.
// Type errors are validation errors; unknown keys are recorded but not
// coerced.
func ParseTaskPatch(raw map[string]any) (*TaskPatch, error) {
	patch := &TaskPatch{}

	for key, value := range raw {
		patch.fields = append(patch.fields, key)

		if value == nil {
			// Present-but-null clears nullable fields; the service
			// validates whether the cleared state is legal.
			continue
		}

		switch key {
		case "title":
			s, ok := value.(string)
			if !ok {
				return nil, apperrors.Validation("title must be a string")
			}
			patch.Title = &s
		case "description":
			s, ok := value.(string)
			if !ok {
				return nil, apperrors.Validation("description must be a string")
			}
			patch.Description = &s
		case "assigned_to_id":
			id, err := toUint64(value)
			if err != nil {
				return nil, apperrors.Validation("assigned_to_id must be a positive integer")
			}
			patch.AssignedToID = &id
		case "due_date":
			s, ok := value.(string)
			if !ok {
				return nil, apperrors.Validation("due_date must be a date string")
			}
			parsed, err := ParseDueDate(s)
			if err != nil {
				return nil, err
			}
			patch.DueDate = &parsed
		case "status":
			s, ok := value.(string)
			if !ok {
				return nil, apperrors.Validation("status must be a string")
			}
			status := models.TaskStatus(s)
			if !status.Valid() {
				return nil, apperrors.Validation(fmt.Sprintf("Invalid status value: %s", s))
			}
			patch.Status = &status
		case "completion_report":
			s, ok := value.(string)
			if !ok {
				return nil, apperrors.Validation("completion_report must be a string")
			}
			patch.CompletionReport = &s
		case "worked_hours":
			f, ok := value.(float64)
			if !ok {
				return nil, apperrors.Validation("worked_hours must be a number")
			}
			patch.WorkedHours = &f
		}
	}

	return patch, nil
}

// ParseDueDate parses a due date in either accepted layout.
func ParseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Validation("due_date must be formatted as YYYY-MM-DD")
}

func toUint64(value any) (uint64, error) {
	f, ok := value.(float64)
	if !ok || f <= 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("not a positive integer: %v", value)
	}
	return uint64(f), nil
}

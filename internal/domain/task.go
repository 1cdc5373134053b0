package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow column a task sits in.
type TaskStatus string

// Possible task status values, ordered the way they appear on the board.
const (
	TaskStatusBacklog    TaskStatus = "backlog"
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Common validation errors for Task
var (
	ErrTaskIDEmpty        = errors.New("task ID cannot be empty")
	ErrTaskProjectIDEmpty = errors.New("task project ID cannot be empty")
	ErrTaskTitleEmpty     = errors.New("task title cannot be empty")
)

// Task represents a single item on a project's board. Its Position is
// 1-based and unique among the tasks sharing the same project and
// status; the board package is the only code allowed to assign it.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Status      TaskStatus `json:"status"`
	Position    int        `json:"position"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task in the given project and status column.
// It generates a new UUID for the task ID and sets the creation/update
// timestamps. The position is left at zero; it is assigned when the
// task is placed into its lane.
// Returns an error if validation fails.
func NewTask(projectID uuid.UUID, status TaskStatus, title, description string, parentID *uuid.UUID) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Status:      status,
		Title:       title,
		Description: description,
		ParentID:    parentID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.ProjectID == uuid.Nil {
		return ErrTaskProjectIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !IsValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if t.Position < 0 {
		return ErrInvalidPosition
	}

	return nil
}

// IsValidTaskStatus reports whether the given status is one of the
// recognized workflow columns.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusBacklog, TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

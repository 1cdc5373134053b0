package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// Position and lane-key (project + status) changes MUST NOT be written
// through this interface directly; they are owned by the board package,
// which routes every placement through its mutation gate so the dense
// per-lane ordering invariant is preserved.
type TaskStore interface {
	// Create saves a new task to the store. The task's Position must
	// already have been assigned by the board package; Create performs
	// the raw row insert only.
	// Returns ErrInvalidEntity (wrapped) if the project does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UpdateDetails modifies a task's descriptive fields (title,
	// description, parent). It never touches position, status or project.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateDetails(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its ID. It does not
	// re-densify the vacated lane; callers must go through the board
	// service, which closes the gap as part of the same transaction.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListLane retrieves all tasks in the given project and status,
	// ordered by ascending position.
	ListLane(ctx context.Context, projectID uuid.UUID, status domain.TaskStatus) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. This allows multiple operations to be executed within
	// a single transaction created and managed by the caller (typically
	// a service using RunInTransaction).
	WithTx(tx *sql.Tx) TaskStore
}

// ProjectStore defines the interface for project data persistence.
type ProjectStore interface {
	// Create saves a new project to the store.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// Delete removes a project by its ID. Tasks under the project are
	// removed by the schema's cascading delete.
	// Returns ErrProjectNotFound if the project does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ProjectStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProjectStore
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/board"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/store"
)

// PositionRepository provides transaction-scoped access to the board's
// position state.
type PositionRepository interface {
	WithTx(tx *sql.Tx) board.PositionStore
}

// BoardService provides task-board operations. Every mutation runs in a
// single transaction, holds its lane locks until that transaction
// completes, and leaves all touched lanes dense.
type BoardService interface {
	// CreateProject creates a new project owned by the given user.
	CreateProject(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Project, error)

	// GetProject retrieves a project by its ID.
	GetProject(ctx context.Context, projectID uuid.UUID) (*domain.Project, error)

	// CreateTask creates a task in the given project and status column.
	// A nil requested position appends to the lane; a requested position
	// is clamped to [1, N+1] and opens a slot by shifting the tasks at
	// or after it.
	CreateTask(ctx context.Context, projectID uuid.UUID, status domain.TaskStatus, title, description string, parentID *uuid.UUID, requestedPosition *int) (*domain.Task, error)

	// MoveTask moves a task to a new status column and/or position.
	// A nil newStatus keeps the current column; a nil requested position
	// appends (or, when the column is unchanged, leaves the task where
	// it is). Repeating an identical move is a no-op.
	MoveTask(ctx context.Context, taskID uuid.UUID, newStatus *domain.TaskStatus, requestedPosition *int) (*domain.Task, error)

	// DeleteTask removes a task and closes the position gap it leaves in
	// its lane.
	DeleteTask(ctx context.Context, taskID uuid.UUID) error

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// ListLane retrieves the tasks of one lane in position order.
	ListLane(ctx context.Context, projectID uuid.UUID, status domain.TaskStatus) ([]*domain.Task, error)
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	db           *sql.DB
	taskStore    store.TaskStore
	projectStore store.ProjectStore
	positions    PositionRepository
	gate         *board.Gate
	locks        *board.LaneLocker
	logger       *slog.Logger
}

// NewBoardService creates a new BoardService.
// It returns an error if any of the required dependencies are nil.
func NewBoardService(
	db *sql.DB,
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
	positions PositionRepository,
	gate *board.Gate,
	locks *board.LaneLocker,
	log *slog.Logger,
) (BoardService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if projectStore == nil {
		return nil, domain.NewValidationError("projectStore", "cannot be nil", domain.ErrValidation)
	}
	if positions == nil {
		return nil, domain.NewValidationError("positions", "cannot be nil", domain.ErrValidation)
	}
	if gate == nil {
		return nil, domain.NewValidationError("gate", "cannot be nil", domain.ErrValidation)
	}
	if locks == nil {
		return nil, domain.NewValidationError("locks", "cannot be nil", domain.ErrValidation)
	}

	if log == nil {
		log = slog.Default()
	}

	return &boardServiceImpl{
		db:           db,
		taskStore:    taskStore,
		projectStore: projectStore,
		positions:    positions,
		gate:         gate,
		locks:        locks,
		logger:       log.With(slog.String("component", "board_service")),
	}, nil
}

// CreateProject implements BoardService.CreateProject
func (s *boardServiceImpl) CreateProject(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := domain.NewProject(ownerID, name)
	if err != nil {
		return nil, NewBoardServiceError("create_project", "invalid project", err)
	}

	if err := s.projectStore.Create(ctx, project); err != nil {
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, NewBoardServiceError("create_project", "failed to save project", err)
	}

	return project, nil
}

// GetProject implements BoardService.GetProject
func (s *boardServiceImpl) GetProject(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewBoardServiceError("get_project", "project not found", store.ErrProjectNotFound)
		}
		return nil, NewBoardServiceError("get_project", "failed to retrieve project", err)
	}
	return project, nil
}

// CreateTask implements BoardService.CreateTask
func (s *boardServiceImpl) CreateTask(
	ctx context.Context,
	projectID uuid.UUID,
	status domain.TaskStatus,
	title, description string,
	parentID *uuid.UUID,
	requestedPosition *int,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Reject a dangling project reference up front with a clean error;
	// the schema's foreign key is the backstop.
	if _, err := s.projectStore.GetByID(ctx, projectID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewBoardServiceError("create_task", "project not found", store.ErrProjectNotFound)
		}
		return nil, NewBoardServiceError("create_task", "failed to check project", err)
	}

	task, err := domain.NewTask(projectID, status, title, description, parentID)
	if err != nil {
		return nil, NewBoardServiceError("create_task", "invalid task", err)
	}

	lane := board.LaneKey{ProjectID: projectID, Status: status}

	unlock, err := s.locks.Lock(ctx, lane)
	if err != nil {
		return nil, NewBoardServiceError("create_task", "could not lock lane", err)
	}
	defer unlock()

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)
		txPositions := s.positions.WithTx(tx)

		position, err := s.gate.HandleInsert(ctx, txPositions, board.InsertRequest{
			TaskID:    task.ID,
			Lane:      lane,
			Requested: requestedPosition,
			Origin:    board.OriginUser,
		})
		if err != nil {
			return err
		}
		task.Position = position

		if err := txTasks.Create(ctx, task); err != nil {
			return err
		}

		// The gate could not verify the lane before the row existed.
		return s.gate.VerifyLanes(ctx, txPositions, lane)
	})
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()),
			slog.String("status", string(status)))
		return nil, wrapBoardError("create_task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("lane", lane.String()),
		slog.Int("position", task.Position))
	return task, nil
}

// MoveTask implements BoardService.MoveTask
func (s *boardServiceImpl) MoveTask(
	ctx context.Context,
	taskID uuid.UUID,
	newStatus *domain.TaskStatus,
	requestedPosition *int,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Preliminary read to learn which lanes to lock. The task is read
	// again inside the transaction, under the locks, before the engine
	// sees any of its state.
	current, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewBoardServiceError("move_task", "task not found", store.ErrTaskNotFound)
		}
		return nil, NewBoardServiceError("move_task", "failed to retrieve task", err)
	}

	targetStatus := current.Status
	if newStatus != nil {
		targetStatus = *newStatus
	}
	if !domain.IsValidTaskStatus(targetStatus) {
		return nil, NewBoardServiceError("move_task", "invalid status", domain.ErrInvalidTaskStatus)
	}

	oldLane := board.LaneKey{ProjectID: current.ProjectID, Status: current.Status}
	newLane := board.LaneKey{ProjectID: current.ProjectID, Status: targetStatus}

	unlock, err := s.locks.Lock(ctx, oldLane, newLane)
	if err != nil {
		return nil, NewBoardServiceError("move_task", "could not lock lanes", err)
	}
	defer unlock()

	var moved *domain.Task
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)
		txPositions := s.positions.WithTx(tx)

		task, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		position, err := s.gate.HandleMove(ctx, txPositions, board.MoveRequest{
			TaskID:    task.ID,
			OldLane:   board.LaneKey{ProjectID: task.ProjectID, Status: task.Status},
			OldPos:    task.Position,
			NewLane:   newLane,
			Requested: requestedPosition,
			Origin:    board.OriginUser,
		})
		if err != nil {
			return err
		}

		task.Status = targetStatus
		task.Position = position
		moved = task
		return nil
	})
	if err != nil {
		log.Error("failed to move task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, wrapBoardError("move_task", err)
	}

	log.Info("task moved",
		slog.String("task_id", taskID.String()),
		slog.String("lane", newLane.String()),
		slog.Int("position", moved.Position))
	return moved, nil
}

// DeleteTask implements BoardService.DeleteTask
func (s *boardServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return NewBoardServiceError("delete_task", "task not found", store.ErrTaskNotFound)
		}
		return NewBoardServiceError("delete_task", "failed to retrieve task", err)
	}

	lane := board.LaneKey{ProjectID: current.ProjectID, Status: current.Status}

	unlock, err := s.locks.Lock(ctx, lane)
	if err != nil {
		return NewBoardServiceError("delete_task", "could not lock lane", err)
	}
	defer unlock()

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)
		txPositions := s.positions.WithTx(tx)

		task, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		if err := txTasks.Delete(ctx, task.ID); err != nil {
			return err
		}

		// Deletion is a move-out with no move-in: close the gap.
		return s.gate.HandleRemove(ctx, txPositions, board.RemoveRequest{
			TaskID:   task.ID,
			Lane:     board.LaneKey{ProjectID: task.ProjectID, Status: task.Status},
			Position: task.Position,
			Origin:   board.OriginUser,
		})
	})
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return wrapBoardError("delete_task", err)
	}

	log.Info("task deleted", slog.String("task_id", taskID.String()))
	return nil
}

// GetTask implements BoardService.GetTask
func (s *boardServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewBoardServiceError("get_task", "task not found", store.ErrTaskNotFound)
		}
		return nil, NewBoardServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// ListLane implements BoardService.ListLane
func (s *boardServiceImpl) ListLane(ctx context.Context, projectID uuid.UUID, status domain.TaskStatus) ([]*domain.Task, error) {
	if !domain.IsValidTaskStatus(status) {
		return nil, NewBoardServiceError("list_lane", "invalid status", domain.ErrInvalidTaskStatus)
	}

	tasks, err := s.taskStore.ListLane(ctx, projectID, status)
	if err != nil {
		return nil, NewBoardServiceError("list_lane", "failed to list lane", err)
	}
	return tasks, nil
}

// wrapBoardError wraps a transaction error in a BoardServiceError with
// a message matching its kind, keeping the sentinel reachable through
// errors.Is for retry decisions upstream.
func wrapBoardError(operation string, err error) *BoardServiceError {
	switch {
	case errors.Is(err, board.ErrLockTimeout):
		return NewBoardServiceError(operation, "lane is busy, retry the mutation", err)
	case errors.Is(err, board.ErrInvariantViolation):
		return NewBoardServiceError(operation, "lane ordering corrupted, transaction rolled back", err)
	case store.IsNotFoundError(err):
		return NewBoardServiceError(operation, "not found", err)
	default:
		return NewBoardServiceError(operation, "transaction failed", err)
	}
}

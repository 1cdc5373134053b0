package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/board"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/store"
)

// PostgresPositionStore implements the board.PositionStore contract on
// the tasks table. It is always used transaction-scoped: the board
// service constructs one per mutation via WithTx, so every shift and
// placement write commits or rolls back with the mutation itself.
//
// The schema declares UNIQUE (project_id, status, position) DEFERRABLE
// INITIALLY DEFERRED, so bulk range shifts need no per-row ordering:
// uniqueness is checked at commit, when the lane is dense again.
type PostgresPositionStore struct {
	db                store.DBTX
	lockTimeoutMillis int
	logger            *slog.Logger
}

// NewPostgresPositionStore creates a new PostgreSQL implementation of
// the board.PositionStore contract. lockTimeoutMillis bounds how long
// LockLanes waits for a lane's advisory lock.
// If logger is nil, a default logger will be used.
func NewPostgresPositionStore(db store.DBTX, lockTimeoutMillis int, logger *slog.Logger) *PostgresPositionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPositionStore{
		db:                db,
		lockTimeoutMillis: lockTimeoutMillis,
		logger:            logger.With(slog.String("component", "position_store")),
	}
}

// Ensure PostgresPositionStore implements board.PositionStore
var _ board.PositionStore = (*PostgresPositionStore)(nil)

// LockLanes implements board.PositionStore.LockLanes
// It takes a transaction-scoped advisory lock per lane, keyed on a hash
// of the lane's textual form. The locks are released automatically when
// the enclosing transaction commits or rolls back, which is exactly the
// hold-until-commit discipline lane mutations need. Waits are bounded
// by a SET LOCAL lock_timeout; expiry maps to board.ErrLockTimeout.
func (s *PostgresPositionStore) LockLanes(ctx context.Context, lanes ...board.LaneKey) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeoutMillis))
	if err != nil {
		log.Error("failed to set lock timeout", slog.String("error", err.Error()))
		return err
	}

	for _, lane := range lanes {
		_, err := s.db.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lane.String())
		if err != nil {
			if isLockNotAvailable(err) {
				log.Warn("lane lock wait timed out",
					slog.String("lane", lane.String()),
					slog.Int("timeout_millis", s.lockTimeoutMillis))
				return fmt.Errorf("%w: lane %s", board.ErrLockTimeout, lane)
			}
			log.Error("failed to acquire lane lock",
				slog.String("error", err.Error()),
				slog.String("lane", lane.String()))
			return err
		}
	}

	return nil
}

// MaxPosition implements board.PositionStore.MaxPosition
func (s *PostgresPositionStore) MaxPosition(ctx context.Context, lane board.LaneKey) (int, error) {
	query := `
		SELECT COALESCE(MAX(position), 0)
		FROM tasks
		WHERE project_id = $1 AND status = $2
	`

	var max int
	err := s.db.QueryRowContext(ctx, query, lane.ProjectID, lane.Status).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max position for lane %s: %w", lane, err)
	}
	return max, nil
}

// MaxPositionExcluding implements board.PositionStore.MaxPositionExcluding
func (s *PostgresPositionStore) MaxPositionExcluding(ctx context.Context, lane board.LaneKey, taskID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(MAX(position), 0)
		FROM tasks
		WHERE project_id = $1 AND status = $2 AND id <> $3
	`

	var max int
	err := s.db.QueryRowContext(ctx, query, lane.ProjectID, lane.Status, taskID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max position for lane %s: %w", lane, err)
	}
	return max, nil
}

// ApplyShift implements board.PositionStore.ApplyShift
// The deferred uniqueness constraint makes the update order within the
// range irrelevant; a single statement shifts the whole block.
func (s *PostgresPositionStore) ApplyShift(ctx context.Context, shift board.Shift) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET position = position + $1
		WHERE project_id = $2 AND status = $3
		  AND position >= $4
		  AND ($5 = 0 OR position <= $5)
		  AND id <> $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		shift.Delta,
		shift.Lane.ProjectID,
		shift.Lane.Status,
		shift.From,
		shift.To,
		shift.ExcludeID,
	)
	if err != nil {
		log.Error("failed to apply position shift",
			slog.String("error", err.Error()),
			slog.String("lane", shift.Lane.String()),
			slog.Int("delta", shift.Delta))
		return err
	}

	shifted, err := result.RowsAffected()
	if err != nil {
		return err
	}

	log.Debug("applied position shift",
		slog.String("lane", shift.Lane.String()),
		slog.Int("from", shift.From),
		slog.Int("to", shift.To),
		slog.Int("delta", shift.Delta),
		slog.Int64("rows_shifted", shifted))
	return nil
}

// SetPlacement implements board.PositionStore.SetPlacement
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresPositionStore) SetPlacement(ctx context.Context, taskID uuid.UUID, lane board.LaneKey, position int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, position = $2, updated_at = now()
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, lane.Status, position, taskID)
	if err != nil {
		log.Error("failed to set task placement",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("lane", lane.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// LanePositions implements board.PositionStore.LanePositions
func (s *PostgresPositionStore) LanePositions(ctx context.Context, lane board.LaneKey) ([]int, error) {
	query := `
		SELECT position
		FROM tasks
		WHERE project_id = $1 AND status = $2
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, lane.ProjectID, lane.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions for lane %s: %w", lane, err)
	}
	defer func() { _ = rows.Close() }()

	var positions []int
	for rows.Next() {
		var pos int
		if err := rows.Scan(&pos); err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return positions, nil
}

// WithTx returns a new PositionStore bound to the given transaction.
func (s *PostgresPositionStore) WithTx(tx *sql.Tx) board.PositionStore {
	return &PostgresPositionStore{
		db:                tx,
		lockTimeoutMillis: s.lockTimeoutMillis,
		logger:            s.logger,
	}
}

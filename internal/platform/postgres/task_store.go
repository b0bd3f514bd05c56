package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/store"
	"github.com/phrazzld/mnemo-api/internal/task"
)

// PostgresTaskStore implements the task.TaskStore interface using a PostgreSQL
// database. Rows in the tasks table survive process restarts, which is what
// allows the runner to recover interrupted work.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Verify PostgresTaskStore implements task.TaskStore interface.
var _ task.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore with the given database
// connection and logger. If logger is nil, a default logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil for PostgresTaskStore")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// SaveTask persists a task to the database with its current status.
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		t.ID(),
		t.Type(),
		t.Payload(),
		t.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save task: %w", MapError(err))
	}

	log.Debug("task saved",
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.String("status", string(t.Status())))
	return nil
}

// UpdateTaskStatus updates the status and error message of a task.
// A missing row is treated as a no-op so that status transitions for
// tasks deleted out of band do not fail the worker.
func (s *PostgresTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		taskID,
	)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected for task status update",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Warn("no task found to update status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)))
		return nil
	}

	log.Debug("task status updated",
		slog.String("task_id", taskID.String()),
		slog.String("status", string(status)))
	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status, oldest first.
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks retrieves tasks with "processing" status. If olderThan is
// non-zero, only tasks whose last update is older than that duration are
// returned, which is how the stuck-task monitor finds abandoned work.
func (s *PostgresTaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

// getTasksByStatus retrieves tasks with the given status, optionally filtered
// to those not updated within olderThan.
func (s *PostgresTaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		query string
		args  []interface{}
	)

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM tasks
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = []interface{}{status, time.Now().UTC().Add(-olderThan)}
	} else {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM tasks
			WHERE status = $1
			ORDER BY created_at ASC
		`
		args = []interface{}{status}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query tasks by status: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("error closing rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := []task.Task{}
	for rows.Next() {
		var (
			id           uuid.UUID
			taskType     string
			payload      []byte
			taskStatus   task.TaskStatus
			errorMessage sql.NullString
			createdAt    time.Time
			updatedAt    time.Time
		)

		if err := rows.Scan(&id, &taskType, &payload, &taskStatus, &errorMessage, &createdAt, &updatedAt); err != nil {
			log.Error("failed to scan task row",
				slog.String("status", string(status)),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}

		tasks = append(tasks, &databaseTask{
			id:           id,
			taskType:     taskType,
			payload:      payload,
			status:       taskStatus,
			errorMessage: errorMessage.String,
			createdAt:    createdAt,
			updatedAt:    updatedAt,
		})
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	log.Debug("retrieved tasks by status",
		slog.String("status", string(status)),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// WithTx returns a new PostgresTaskStore that uses the provided transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// databaseTask implements the task.Task interface for rows loaded from the
// tasks table. Recovered tasks carry no execution logic of their own; the
// runner rebuilds a concrete task from the payload via a registered
// reconstructor before executing. Execute on a bare databaseTask fails so
// that unrecoverable rows are marked failed rather than silently dropped.
type databaseTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       task.TaskStatus
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

// ID returns the task's unique identifier.
func (t *databaseTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *databaseTask) Type() string {
	return t.taskType
}

// Payload returns the task data as stored in the payload column.
func (t *databaseTask) Payload() []byte {
	return t.payload
}

// Status returns the task status as stored in the database.
func (t *databaseTask) Status() task.TaskStatus {
	return t.status
}

// Execute fails for a bare database task. Tasks loaded from the database
// must be rebuilt with their execution dependencies before running.
func (t *databaseTask) Execute(ctx context.Context) error {
	return errors.New("no execution function defined for recovered task")
}

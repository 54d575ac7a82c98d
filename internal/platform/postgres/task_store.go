package postgres

import (
	"context"
	"fmt"

	"github.com/phrazzld/todo-app/internal/domain"
	"github.com/phrazzld/todo-app/internal/platform/logger"
	"github.com/phrazzld/todo-app/internal/store"
)

// PostgresTaskStore implements store.TaskStore using PostgreSQL.
type PostgresTaskStore struct {
	db store.DBTX
}

// Ensure PostgresTaskStore implements store.TaskStore.
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore on db, which may be
// the pool, a single connection, or a transaction.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// All returns every task, newest first.
func (s *PostgresTaskStore) All(ctx context.Context) ([]domain.Task, error) {
	const query = `
		SELECT id, description, completed
		FROM tasks
		ORDER BY id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", MapError(err))
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Description, &t.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", MapError(err))
	}

	return tasks, nil
}

// Insert adds a task. The id column is a serial, so the database assigns it.
func (s *PostgresTaskStore) Insert(ctx context.Context, task domain.NewTask) error {

	const query = `INSERT INTO tasks (description) VALUES ($1)`

	if _, err := s.db.ExecContext(ctx, query, task.Description); err != nil {
		return fmt.Errorf("failed to insert task: %w", MapError(err))
	}
	return nil
}

// Toggle reads the current completed flag and writes its negation in a second
// statement. The two statements are not atomic: a concurrent toggle of the
// same row from another connection can be lost.
func (s *PostgresTaskStore) Toggle(ctx context.Context, id int32) error {

	var completed bool
	err := s.db.QueryRowContext(ctx, `SELECT completed FROM tasks WHERE id = $1`, id).Scan(&completed)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			logger.FromContext(ctx).Debug("toggle target does not exist", "task_id", id)
			return fmt.Errorf("toggle task %d: %w", id, store.ErrTaskNotFound)
		}
		return fmt.Errorf("failed to read task %d: %w", id, mapped)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = $1 WHERE id = $2`, !completed, id); err != nil {
		return fmt.Errorf("failed to update task %d: %w", id, MapError(err))
	}
	return nil
}

// Delete removes a task. Rows affected is not checked, so deleting a missing
// id succeeds.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int32) error {

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, MapError(err))
	}
	return nil
}

package store

import (
	"context"

	"github.com/phrazzld/todo-app/internal/domain"
)

// TaskStore defines the four task persistence operations. Each is a single
// unit of work against the backend; none spans a transaction.
type TaskStore interface {
	// All returns every task ordered by descending ID (newest first).
	// Returns an empty slice when there are no tasks.
	All(ctx context.Context) ([]domain.Task, error)

	// Insert persists a new task with Completed=false. The ID is assigned
	// by the store.
	Insert(ctx context.Context, task domain.NewTask) error

	// Toggle flips Completed on the task with the given ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Toggle(ctx context.Context, id int32) error

	// Delete removes the task with the given ID. Deleting an ID that does
	// not exist is not an error.
	Delete(ctx context.Context, id int32) error
}

// TaskConn is a TaskStore bound to one exclusive backend connection.
// Close returns the connection to the pool it was checked out from.
type TaskConn interface {
	TaskStore
	Close() error
}

// ConnSource hands out exclusive connections. It is only touched when a
// worker starts, never per request.
type ConnSource interface {
	Checkout(ctx context.Context) (TaskConn, error)
}

package worker

import (
	"context"

	"github.com/phrazzld/todo-app/internal/domain"
	"github.com/phrazzld/todo-app/internal/store"
)

// Kind names a request variant in logs and metrics.
type Kind string

const (
	KindListAll Kind = "list_all"
	KindCreate  Kind = "create"
	KindToggle  Kind = "toggle"
	KindDelete  Kind = "delete"
)

// Request is one database operation. The set of variants is closed:
// ListAll, Create, Toggle and Delete.
type Request interface {
	Kind() Kind
	execute(ctx context.Context, s store.TaskStore) ([]domain.Task, error)
}

// ListAll fetches every task, newest first.
type ListAll struct{}

// Create inserts a task with the given description.
type Create struct {
	Description string
}

// Toggle flips the completed flag of one task.
type Toggle struct {
	ID int32
}

// Delete removes one task.
type Delete struct {
	ID int32
}

func (ListAll) Kind() Kind { return KindListAll }
func (Create) Kind() Kind  { return KindCreate }
func (Toggle) Kind() Kind  { return KindToggle }
func (Delete) Kind() Kind  { return KindDelete }

func (ListAll) execute(ctx context.Context, s store.TaskStore) ([]domain.Task, error) {
	return s.All(ctx)
}

func (r Create) execute(ctx context.Context, s store.TaskStore) ([]domain.Task, error) {
	return nil, s.Insert(ctx, domain.NewTask{Description: r.Description})
}

func (r Toggle) execute(ctx context.Context, s store.TaskStore) ([]domain.Task, error) {
	return nil, s.Toggle(ctx, r.ID)
}

func (r Delete) execute(ctx context.Context, s store.TaskStore) ([]domain.Task, error) {
	return nil, s.Delete(ctx, r.ID)
}

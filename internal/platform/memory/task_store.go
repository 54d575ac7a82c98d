// Package memory provides an in-process task store. It backs local runs
// without PostgreSQL and the HTTP and worker tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/phrazzld/todo-app/internal/domain"
	"github.com/phrazzld/todo-app/internal/store"
)

// TaskStore is a mutex-guarded map of tasks with a serial id counter.
type TaskStore struct {
	mu     sync.RWMutex
	nextID int32
	tasks  map[int32]domain.Task
}

// Ensure TaskStore implements store.TaskStore.
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore returns an empty store whose first id is 1.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[int32]domain.Task)}
}

// All returns every task ordered by descending id.
func (s *TaskStore) All(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Insert stores a new, incomplete task.
func (s *TaskStore) Insert(ctx context.Context, task domain.NewTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Mirrors the CHECK constraint on the tasks table.
	if task.Description == "" {
		return store.NewStoreError("task", "insert", "empty description", store.ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.tasks[s.nextID] = domain.Task{ID: s.nextID, Description: task.Description}
	return nil
}

// Toggle flips the completed flag of the task with the given id.
func (s *TaskStore) Toggle(ctx context.Context, id int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	t.Completed = !t.Completed
	s.tasks[id] = t
	return nil
}

// Delete removes the task with the given id. Missing ids are not an error.
func (s *TaskStore) Delete(ctx context.Context, id int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tasks, id)
	return nil
}

// Len reports the number of stored tasks.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/todo-app/internal/domain"
	"github.com/phrazzld/todo-app/internal/store"
)

// fakeConn is a store.TaskConn whose behavior is set per test.
type fakeConn struct {
	id    int
	calls atomic.Int32

	AllFn    func(ctx context.Context) ([]domain.Task, error)
	InsertFn func(ctx context.Context, task domain.NewTask) error
	ToggleFn func(ctx context.Context, id int32) error
	DeleteFn func(ctx context.Context, id int32) error

	closed atomic.Bool
}

func (c *fakeConn) All(ctx context.Context) ([]domain.Task, error) {
	c.calls.Add(1)
	if c.AllFn != nil {
		return c.AllFn(ctx)
	}
	return []domain.Task{}, nil
}

func (c *fakeConn) Insert(ctx context.Context, task domain.NewTask) error {
	c.calls.Add(1)
	if c.InsertFn != nil {
		return c.InsertFn(ctx, task)
	}
	return nil
}

func (c *fakeConn) Toggle(ctx context.Context, id int32) error {
	c.calls.Add(1)
	if c.ToggleFn != nil {
		return c.ToggleFn(ctx, id)
	}
	return nil
}

func (c *fakeConn) Delete(ctx context.Context, id int32) error {
	c.calls.Add(1)
	if c.DeleteFn != nil {
		return c.DeleteFn(ctx, id)
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.closed.Store(true)
	return nil
}

// fakeSource hands out fakeConns built by newConn.
type fakeSource struct {
	mu      sync.Mutex
	conns   []*fakeConn
	newConn func(id int) *fakeConn
}

func (s *fakeSource) Checkout(ctx context.Context) (store.TaskConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := len(s.conns)
	c := &fakeConn{id: id}
	if s.newConn != nil {
		c = s.newConn(id)
		c.id = id
	}
	s.conns = append(s.conns, c)
	return c, nil
}

func (s *fakeSource) all() []*fakeConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeConn(nil), s.conns...)
}

// recordingObserver counts pool events.
type recordingObserver struct {
	mu        sync.Mutex
	queued    map[Kind]int
	completed map[Kind]int
	failed    map[Kind]int
	running   []int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		queued:    make(map[Kind]int),
		completed: make(map[Kind]int),
		failed:    make(map[Kind]int),
	}
}

func (o *recordingObserver) RequestQueued(kind Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queued[kind]++
}

func (o *recordingObserver) RequestCompleted(kind Kind, failed bool, _, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed[kind]++
	if failed {
		o.failed[kind]++
	}
}

func (o *recordingObserver) WorkersRunning(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = append(o.running, n)
}

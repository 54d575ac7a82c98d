package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/phrazzld/todo-app/internal/domain"
	"github.com/phrazzld/todo-app/internal/store"
)

// ConnSource hands out connections that all share one TaskStore. It tracks
// how many are checked out so tests can assert that a pool returns them.
type ConnSource struct {
	store *TaskStore

	mu       sync.Mutex
	limit    int
	open     int
	total    int
	checkErr error
}

// Ensure ConnSource implements store.ConnSource.
var _ store.ConnSource = (*ConnSource)(nil)

// NewConnSource returns a source over s. A limit of 0 means unlimited.
func NewConnSource(s *TaskStore, limit int) *ConnSource {
	return &ConnSource{store: s, limit: limit}
}

// FailCheckouts makes every later Checkout return err. Pass nil to reset.
func (c *ConnSource) FailCheckouts(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkErr = err
}

// Checkout returns a new connection bound to the shared store.
func (c *ConnSource) Checkout(ctx context.Context) (store.TaskConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkErr != nil {
		return nil, c.checkErr
	}
	if c.limit > 0 && c.open >= c.limit {
		return nil, errPoolExhausted
	}
	c.open++
	c.total++
	return &conn{source: c}, nil
}

// Open reports connections checked out and not yet closed.
func (c *ConnSource) Open() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Total reports how many connections have ever been checked out.
func (c *ConnSource) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *ConnSource) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open--
}

var errPoolExhausted = store.NewStoreError("connection", "checkout", "no free connections", nil)

// conn forwards to the shared store until closed.
type conn struct {
	source *ConnSource
	closed atomic.Bool
}

func (c *conn) All(ctx context.Context) ([]domain.Task, error) {
	if c.closed.Load() {
		return nil, store.ErrConnClosed
	}
	return c.source.store.All(ctx)
}

func (c *conn) Insert(ctx context.Context, task domain.NewTask) error {
	if c.closed.Load() {
		return store.ErrConnClosed
	}
	return c.source.store.Insert(ctx, task)
}

func (c *conn) Toggle(ctx context.Context, id int32) error {
	if c.closed.Load() {
		return store.ErrConnClosed
	}
	return c.source.store.Toggle(ctx, id)
}

func (c *conn) Delete(ctx context.Context, id int32) error {
	if c.closed.Load() {
		return store.ErrConnClosed
	}
	return c.source.store.Delete(ctx, id)
}

// Close releases the connection. Closing twice returns ErrConnClosed.
func (c *conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return store.ErrConnClosed
	}
	c.source.release()
	return nil
}

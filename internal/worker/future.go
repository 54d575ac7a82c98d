package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/phrazzld/todo-app/internal/domain"
)

// Errors carried by a failed Result.
var (
	// ErrOperationFailed reports that the store operation returned an error
	// or panicked. The cause is logged by the worker and not exposed.
	ErrOperationFailed = errors.New("operation failed")

	// ErrPoolClosed is returned for requests submitted after Stop, or before Start.
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrAwaitAborted reports that the caller stopped waiting. The request
	// itself may still complete.
	ErrAwaitAborted = errors.New("gave up waiting for result")
)

// Result is the outcome of one Request. Tasks is set only for ListAll.
type Result struct {
	Tasks []domain.Task
	Err   error
}

// Failed reports whether the request did not succeed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Future is the pending Result of a submitted Request.
type Future struct {
	done   chan struct{}
	once   sync.Once
	result Result
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func resolvedFuture(r Result) *Future {
	f := newFuture()
	f.resolve(r)
	return f
}

// resolve stores r and wakes waiters. Only the first call has any effect.
func (f *Future) resolve(r Result) bool {
	resolved := false
	f.once.Do(func() {
		f.result = r
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the Result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Result is available or ctx is done. It may be
// called any number of times and always returns the same Result once
// resolved.
func (f *Future) Await(ctx context.Context) Result {
	select {
	case <-f.done:
		return f.result
	default:
	}

	select {
	case <-f.done:
		return f.result
	case <-ctx.Done():
		return Result{Err: fmt.Errorf("%w: %w", ErrAwaitAborted, ctx.Err())}
	}
}

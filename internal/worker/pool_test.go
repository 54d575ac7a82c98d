package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/todo-app/internal/domain"
	"github.com/phrazzld/todo-app/internal/platform/logger"
	"github.com/phrazzld/todo-app/internal/platform/memory"
	"github.com/phrazzld/todo-app/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStartedPool starts a pool over src and stops it when the test ends.
func newStartedPool(t *testing.T, src store.ConnSource, cfg PoolConfig) *Pool {
	t.Helper()

	log, _ := logger.NewTestLogger(t)
	p := NewPool(src, cfg, log)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.Stop(ctx)
	})
	return p
}

func TestPool_CreateThenList(t *testing.T) {
	ctx := context.Background()
	p := newStartedPool(t, memory.NewConnSource(memory.NewTaskStore(), 0), PoolConfig{WorkerCount: 3})

	require.False(t, p.Exec(ctx, Create{Description: "walk dog"}).Failed())
	require.False(t, p.Exec(ctx, Create{Description: "buy milk"}).Failed())

	res := p.Exec(ctx, ListAll{})
	require.False(t, res.Failed())
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "buy milk", res.Tasks[0].Description)
	assert.False(t, res.Tasks[0].Completed)
}

func TestPool_ToggleAndDelete(t *testing.T) {
	ctx := context.Background()
	p := newStartedPool(t, memory.NewConnSource(memory.NewTaskStore(), 0), PoolConfig{WorkerCount: 2})

	require.False(t, p.Exec(ctx, Create{Description: "x"}).Failed())

	require.False(t, p.Exec(ctx, Toggle{ID: 1}).Failed())
	res := p.Exec(ctx, ListAll{})
	require.Len(t, res.Tasks, 1)
	assert.True(t, res.Tasks[0].Completed)

	require.False(t, p.Exec(ctx, Toggle{ID: 1}).Failed())
	res = p.Exec(ctx, ListAll{})
	assert.False(t, res.Tasks[0].Completed)

	// Toggling a missing task is a failure, deleting one is not
	assert.ErrorIs(t, p.Exec(ctx, Toggle{ID: 7}).Err, ErrOperationFailed)
	assert.False(t, p.Exec(ctx, Delete{ID: 1}).Failed())
	assert.False(t, p.Exec(ctx, Delete{ID: 1}).Failed())

	res = p.Exec(ctx, ListAll{})
	assert.Empty(t, res.Tasks)
}

func TestPool_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	src := memory.NewConnSource(memory.NewTaskStore(), 3)
	p := newStartedPool(t, src, PoolConfig{WorkerCount: 3})

	const k = 60
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.False(t, p.Exec(ctx, Create{Description: "task"}).Failed())
		}()
	}
	wg.Wait()

	res := p.Exec(ctx, ListAll{})
	require.False(t, res.Failed())
	require.Len(t, res.Tasks, k)

	seen := make(map[int32]bool, k)
	for i, task := range res.Tasks {
		assert.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
		if i > 0 {
			assert.Less(t, task.ID, res.Tasks[i-1].ID, "listing must be newest first")
		}
	}

	// Connections are taken once at start, never per request
	assert.Equal(t, 3, src.Total())
	assert.Equal(t, 3, src.Open())
}

func TestPool_RoundRobin(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{}
	p := newStartedPool(t, src, PoolConfig{WorkerCount: 3})

	for i := 0; i < 9; i++ {
		require.False(t, p.Exec(ctx, ListAll{}).Failed())
	}

	conns := src.all()
	require.Len(t, conns, 3)
	for _, c := range conns {
		assert.EqualValues(t, 3, c.calls.Load(), "conn %d", c.id)
	}
}

func TestPool_FailureIsOpaqueAndWorkerSurvives(t *testing.T) {
	ctx := context.Background()
	var fail atomic.Bool
	fail.Store(true)
	src := &fakeSource{newConn: func(int) *fakeConn {
		return &fakeConn{InsertFn: func(context.Context, domain.NewTask) error {
			if fail.Load() {
				return errors.New("dial postgres://todo:hunter2@db:5432/todo: connection refused")
			}
			return nil
		}}
	}}

	log, buf := logger.NewTestLogger(t)
	p := NewPool(src, PoolConfig{WorkerCount: 1}, log)
	require.NoError(t, p.Start(ctx))
	defer func() { _ = p.Stop(ctx) }()

	res := p.Exec(ctx, Create{Description: "x"})
	require.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, ErrOperationFailed)
	assert.NotContains(t, res.Err.Error(), "hunter2")
	assert.NotContains(t, res.Err.Error(), "connection refused")

	logger.AssertLogContains(t, buf, "request failed")
	logger.AssertLogContains(t, buf, `"request_kind":"create"`)
	assert.NotContains(t, buf.String(), "hunter2")

	fail.Store(false)
	assert.False(t, p.Exec(ctx, Create{Description: "x"}).Failed())
}

func TestPool_PanicBecomesFailure(t *testing.T) {
	ctx := context.Background()
	var panicked atomic.Bool
	src := &fakeSource{newConn: func(int) *fakeConn {
		return &fakeConn{DeleteFn: func(context.Context, int32) error {
			if panicked.CompareAndSwap(false, true) {
				panic("driver bug")
			}
			return nil
		}}
	}}
	p := newStartedPool(t, src, PoolConfig{WorkerCount: 1})

	res := p.Exec(ctx, Delete{ID: 1})
	assert.ErrorIs(t, res.Err, ErrOperationFailed)

	// The same worker keeps serving
	assert.False(t, p.Exec(ctx, Delete{ID: 1}).Failed())
}

func TestPool_NotRunning(t *testing.T) {
	ctx := context.Background()
	log, _ := logger.NewTestLogger(t)
	src := memory.NewConnSource(memory.NewTaskStore(), 0)
	p := NewPool(src, PoolConfig{WorkerCount: 2}, log)

	f := p.Submit(ctx, ListAll{})
	select {
	case <-f.Done():
	default:
		t.Fatal("future for unstarted pool must already be resolved")
	}
	assert.ErrorIs(t, f.Await(ctx).Err, ErrPoolClosed)

	require.NoError(t, p.Start(ctx))
	assert.Error(t, p.Start(ctx), "second start")
	require.NoError(t, p.Stop(ctx))
	assert.Equal(t, 0, src.Open(), "connections are released on stop")

	assert.ErrorIs(t, p.Exec(ctx, ListAll{}).Err, ErrPoolClosed)
	assert.NoError(t, p.Stop(ctx), "stop is idempotent")
}

func TestPool_StartCheckoutFailureReleasesConnections(t *testing.T) {
	src := memory.NewConnSource(memory.NewTaskStore(), 2)
	log, _ := logger.NewTestLogger(t)
	p := NewPool(src, PoolConfig{WorkerCount: 3}, log)

	err := p.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker 2")
	assert.Equal(t, 0, src.Open())
	assert.ErrorIs(t, p.Exec(context.Background(), ListAll{}).Err, ErrPoolClosed)
}

func TestPool_StopDrainsQueuedRequests(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	var done atomic.Int32
	src := &fakeSource{newConn: func(int) *fakeConn {
		return &fakeConn{InsertFn: func(context.Context, domain.NewTask) error {
			<-gate
			done.Add(1)
			return nil
		}}
	}}
	log, _ := logger.NewTestLogger(t)
	p := NewPool(src, PoolConfig{WorkerCount: 1}, log)
	require.NoError(t, p.Start(ctx))

	futures := make([]*Future, 5)
	for i := range futures {
		futures[i] = p.Submit(ctx, Create{Description: "queued"})
	}

	stopped := make(chan error, 1)
	go func() { stopped <- p.Stop(ctx) }()

	// Submissions racing with Stop are rejected, not lost
	require.Eventually(t, func() bool {
		f := p.Submit(ctx, ListAll{})
		select {
		case <-f.Done():
			return errors.Is(f.Await(ctx).Err, ErrPoolClosed)
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	close(gate)
	require.NoError(t, <-stopped)

	for _, f := range futures {
		assert.False(t, f.Await(ctx).Failed())
	}
	assert.EqualValues(t, 5, done.Load())
	assert.True(t, src.all()[0].closed.Load())
}

func TestPool_StopHonorsContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	src := &fakeSource{newConn: func(int) *fakeConn {
		return &fakeConn{AllFn: func(context.Context) ([]domain.Task, error) {
			<-gate
			return nil, nil
		}}
	}}
	log, _ := logger.NewTestLogger(t)
	p := NewPool(src, PoolConfig{WorkerCount: 1}, log)
	require.NoError(t, p.Start(context.Background()))
	p.Submit(context.Background(), ListAll{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPool_ExecTimeoutDoesNotCancelWork(t *testing.T) {
	gate := make(chan struct{})
	var finished atomic.Bool
	src := &fakeSource{newConn: func(int) *fakeConn {
		return &fakeConn{InsertFn: func(ctx context.Context, _ domain.NewTask) error {
			<-gate
			if ctx.Err() == nil {
				finished.Store(true)
			}
			return nil
		}}
	}}
	p := newStartedPool(t, src, PoolConfig{WorkerCount: 1, RequestTimeout: 20 * time.Millisecond})

	res := p.Exec(context.Background(), Create{Description: "slow"})
	assert.ErrorIs(t, res.Err, ErrAwaitAborted)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)

	close(gate)
	assert.Eventually(t, finished.Load, time.Second, time.Millisecond)
}

func TestPool_SubmitterCancellationIgnored(t *testing.T) {
	p := newStartedPool(t, memory.NewConnSource(memory.NewTaskStore(), 0), PoolConfig{WorkerCount: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := p.Submit(ctx, Create{Description: "still runs"})
	assert.False(t, f.Await(context.Background()).Failed())

	res := p.Exec(context.Background(), ListAll{})
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "still runs", res.Tasks[0].Description)
}

func TestPool_RequestLoggerFromContext(t *testing.T) {
	src := &fakeSource{newConn: func(int) *fakeConn {
		return &fakeConn{ToggleFn: func(context.Context, int32) error {
			return errors.New("boom")
		}}
	}}
	p := newStartedPool(t, src, PoolConfig{WorkerCount: 1})

	reqLog, buf := logger.NewTestLogger(t)
	ctx := logger.WithLogger(context.Background(), reqLog.With("trace_id", "trace-1"))
	assert.True(t, p.Exec(ctx, Toggle{ID: 3}).Failed())

	logger.AssertLogContains(t, buf, `"trace_id":"trace-1"`)
	logger.AssertLogContains(t, buf, `"worker_id":0`)
}

func TestPool_Observer(t *testing.T) {
	ctx := context.Background()
	obs := newRecordingObserver()
	src := &fakeSource{newConn: func(int) *fakeConn {
		return &fakeConn{ToggleFn: func(context.Context, int32) error {
			return errors.New("boom")
		}}
	}}
	log, _ := logger.NewTestLogger(t)
	p := NewPool(src, PoolConfig{WorkerCount: 2}, log)
	p.SetObserver(obs)
	require.NoError(t, p.Start(ctx))

	p.Exec(ctx, ListAll{})
	p.Exec(ctx, Toggle{ID: 1})
	require.NoError(t, p.Stop(ctx))

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, obs.queued[KindListAll])
	assert.Equal(t, 1, obs.completed[KindListAll])
	assert.Equal(t, 0, obs.failed[KindListAll])
	assert.Equal(t, 1, obs.failed[KindToggle])
	assert.Equal(t, []int{2, 0}, obs.running)
}

func TestNewPool_InvalidWorkerCount(t *testing.T) {
	log, buf := logger.NewTestLogger(t)
	p := NewPool(&fakeSource{}, PoolConfig{WorkerCount: 0, RequestTimeout: -time.Second}, log)

	assert.Equal(t, 1, p.Size())
	logger.AssertLogContains(t, buf, "invalid worker count")
}

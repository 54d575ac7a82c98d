package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/todo-app/internal/platform/logger"
	"github.com/phrazzld/todo-app/internal/redact"
	"github.com/phrazzld/todo-app/internal/store"
)

// PoolConfig holds configuration options for the worker pool
type PoolConfig struct {
	// WorkerCount is the number of workers, and so the number of database
	// connections held. If zero or negative, defaults to 1.
	WorkerCount int

	// RequestTimeout bounds how long Exec waits for a result. Zero means
	// wait indefinitely. The request keeps running after the deadline.
	RequestTimeout time.Duration
}

// DefaultPoolConfig returns a PoolConfig with reasonable defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount: 3,
	}
}

// Observer receives pool events. The metrics package provides a Prometheus
// implementation.
type Observer interface {
	// RequestQueued is called when a request enters a mailbox.
	RequestQueued(kind Kind)
	// RequestCompleted is called after a request's Future is resolved.
	RequestCompleted(kind Kind, failed bool, wait, run time.Duration)
	// WorkersRunning reports the number of live workers.
	WorkersRunning(n int)
}

type noopObserver struct{}

func (noopObserver) RequestQueued(Kind)                                        {}
func (noopObserver) RequestCompleted(Kind, bool, time.Duration, time.Duration) {}
func (noopObserver) WorkersRunning(int)                                        {}

type poolState int32

const (
	stateNew poolState = iota
	stateRunning
	stateStopped
)

// Pool is a fixed set of workers, each bound to one connection checked out
// of a store.ConnSource at Start. A *Pool is safe for concurrent use and is
// meant to be shared by every request handler.
type Pool struct {
	source   store.ConnSource
	config   PoolConfig
	logger   *slog.Logger
	observer Observer

	// mu guards state and workers. Submit holds it for reading so Stop cannot
	// close a mailbox between the state check and the push.
	mu      sync.RWMutex
	state   poolState
	workers []*worker

	next atomic.Uint64
	wg   sync.WaitGroup
}

// NewPool creates a pool that will draw connections from source.
func NewPool(source store.ConnSource, config PoolConfig, log *slog.Logger) *Pool {
	if config.WorkerCount <= 0 {
		log.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	if config.RequestTimeout < 0 {
		config.RequestTimeout = 0
	}

	return &Pool{
		source:   source,
		config:   config,
		logger:   log.With("component", "worker_pool"),
		observer: noopObserver{},
	}
}

// SetObserver installs o. It must be called before Start.
func (p *Pool) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	p.observer = o
}

// Size returns the configured number of workers.
func (p *Pool) Size() int {
	return p.config.WorkerCount
}

// Start checks out one connection per worker and starts the workers. If any
// checkout fails, connections already acquired are released and the pool
// stays unstarted.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != stateNew {
		return errors.New("worker pool already started")
	}

	workers := make([]*worker, 0, p.config.WorkerCount)
	for i := 0; i < p.config.WorkerCount; i++ {
		conn, err := p.source.Checkout(ctx)
		if err != nil {
			for _, w := range workers {
				_ = w.conn.Close()
			}
			return fmt.Errorf("worker %d: %w", i, err)
		}
		workers = append(workers, &worker{
			id:       i,
			conn:     conn,
			mailbox:  newMailbox(),
			logger:   p.logger,
			observer: p.observer,
		})
	}

	p.workers = workers
	p.state = stateRunning
	for _, w := range workers {
		p.wg.Add(1)
		go func(w *worker) {
			defer p.wg.Done()
			w.run()
		}(w)
	}
	p.observer.WorkersRunning(len(workers))

	p.logger.Info("worker pool started", "worker_count", len(workers))
	return nil
}

// Submit queues req on the next worker and returns its Future without
// blocking. ctx supplies request-scoped values such as the logger; its
// cancellation is not passed on. If the pool is not running the Future is
// already resolved with ErrPoolClosed.
func (p *Pool) Submit(ctx context.Context, req Request) *Future {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state != stateRunning {
		return resolvedFuture(Result{Err: ErrPoolClosed})
	}

	w := p.workers[int(p.next.Add(1)-1)%len(p.workers)]
	env := envelope{
		ctx:      context.WithoutCancel(ctx),
		req:      req,
		future:   newFuture(),
		enqueued: time.Now(),
	}
	if !w.mailbox.push(env) {
		return resolvedFuture(Result{Err: ErrPoolClosed})
	}
	p.observer.RequestQueued(req.Kind())
	return env.future
}

// Exec submits req and waits for its Result, bounded by ctx and by the
// configured RequestTimeout.
func (p *Pool) Exec(ctx context.Context, req Request) Result {
	future := p.Submit(ctx, req)

	if p.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.RequestTimeout)
		defer cancel()
	}

	res := future.Await(ctx)
	if errors.Is(res.Err, ErrAwaitAborted) {
		logger.FromContextOr(ctx, p.logger).Warn("request abandoned before completion",
			"request_kind", req.Kind(),
			"error", res.Err)
	}
	return res
}

// Stop rejects new submissions, lets every worker drain its mailbox, and
// releases the connections. It blocks until all workers have exited or ctx
// is done.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.state != stateRunning {
		p.state = stateStopped
		p.mu.Unlock()
		return nil
	}
	p.state = stateStopped
	for _, w := range p.workers {
		w.mailbox.close()
	}
	p.mu.Unlock()

	p.logger.Info("stopping worker pool, draining queued requests")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.observer.WorkersRunning(0)
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool did not drain: %w", ctx.Err())
	}
}

// worker owns one connection and one mailbox.
type worker struct {
	id       int
	conn     store.TaskConn
	mailbox  *mailbox
	logger   *slog.Logger
	observer Observer
}

func (w *worker) run() {
	log := w.logger.With("worker_id", w.id)
	log.Debug("starting worker")
	defer func() {
		if err := w.conn.Close(); err != nil {
			log.Warn("failed to release connection", "error", redact.Error(err))
		}
		log.Debug("worker stopped")
	}()

	for {
		env, ok := w.mailbox.pop()
		if !ok {
			return
		}
		w.handle(env)
	}
}

func (w *worker) handle(env envelope) {
	start := time.Now()
	res := w.execute(env)
	run := time.Since(start)

	env.future.resolve(res)
	w.observer.RequestCompleted(env.req.Kind(), res.Failed(), start.Sub(env.enqueued), run)
}

// execute runs one request, converting errors and panics into a failed Result.
func (w *worker) execute(env envelope) (res Result) {
	kind := env.req.Kind()
	log := logger.FromContextOr(env.ctx, w.logger).With("worker_id", w.id, "request_kind", kind)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("request panicked", "panic", redact.String(fmt.Sprint(r)))
			res = Result{Err: ErrOperationFailed}
		}
	}()

	tasks, err := env.req.execute(env.ctx, w.conn)
	if err != nil {
		log.Error("request failed",
			"error", redact.Error(err),
			"duration_ms", time.Since(start).Milliseconds())
		return Result{Err: ErrOperationFailed}
	}

	log.Debug("request completed", "duration_ms", time.Since(start).Milliseconds())
	return Result{Tasks: tasks}
}

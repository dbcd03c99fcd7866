// Package worker draws queued image render jobs on a fixed pool of
// goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/wxgrid/internal/adapters/mq/queue"
	"github.com/okian/wxgrid/internal/domain/align"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/pkg/logger"
	"github.com/okian/wxgrid/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Renderer draws one aligned table.
type Renderer interface {
	Render(ctx context.Context, t align.Table, h model.Horizon) ([]byte, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan queue.Job
}

// Worker processes render jobs.
type Worker interface {
	// Run starts the worker loop until the queue is drained or ctx is
	// canceled.
	Run(ctx context.Context)
}

// InMemoryWorker implements Worker for one goroutine.
type InMemoryWorker struct {
	queue    Queue
	renderer Renderer
	name     string

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, r Renderer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		renderer: r,
		name:     "worker",
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Run starts the worker loop. It returns once the queue is closed and
// drained or ctx is canceled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// process renders job and replies. A panic in the renderer becomes an
// error reply so the caller is never left waiting.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	var res queue.Result
	defer func() {
		if r := recover(); r != nil {
			res = queue.Result{Err: fmt.Errorf("render job %s panicked: %v", job.ID, r)}
			metrics.RecordErrorByComponent("worker", "panic")
		}
		metrics.RecordStageLatency("render.queue", float64(time.Since(start).Microseconds())/1000)
		job.Reply <- res
	}()

	body, err := w.renderer.Render(ctx, job.Table, job.Horizon)
	if err != nil {
		w.logger.Debug(ctx, "render job failed", logger.String("job", job.ID), logger.Error(err))
	}
	res = queue.Result{Body: body, Err: err}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	cancel context.CancelFunc
	once   sync.Once

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. workerCount < 1 selects
// runtime.NumCPU(); a nil log discards output.
func NewPool(workerCount int, q Queue, r Renderer, log logger.Logger) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	if log == nil {
		log = logger.Nop()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  log,
	}
	for i := range pool.workers {
		pool.workers[i] = NewInMemoryWorker(q, r, WithLogger(log), WithName("worker-"+strconv.Itoa(i)))
	}
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers. They stop on Shutdown, or when ctx is
// canceled.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateRenderWorkers(len(p.workers))
}

// Shutdown closes the queue, lets workers drain it and waits for them
// until ctx expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}
		if p.cancel == nil {
			return
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
		defer cancel()

		for i, w := range p.workers {
			select {
			case <-w.done:
			case <-shutdownCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
			}
		}
		p.cancel()
		metrics.UpdateRenderWorkers(0)
	})
	return err
}

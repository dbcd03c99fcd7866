// Package queue holds image render jobs until a worker picks them up.
//
// The queue is a bounded in-memory channel. A full queue refuses new jobs
// instead of blocking so callers can shed load.
package queue

import (
	"context"
	"sync"

	"github.com/okian/wxgrid/internal/domain/align"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 64
)

// Rejection reasons reported to metrics.
const (
	reasonClosed    = "closed"
	reasonFull      = "full"
	reasonCancelled = "cancelled"
)

// Result is the outcome of one render job.
type Result struct {
	Body []byte
	Err  error
}

// Job is one table waiting to be drawn. Reply is buffered so a worker never
// blocks on a caller that gave up.
type Job struct {
	ID      string
	Table   align.Table
	Horizon model.Horizon
	Reply   chan Result
}

// NewJob returns a Job with its reply channel allocated.
func NewJob(id string, t align.Table, h model.Horizon) Job {
	return Job{ID: id, Table: t, Horizon: h, Reply: make(chan Result, 1)}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. It returns false if the queue is full, closed or
	// ctx is done.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns the channel workers read jobs from. It is closed
	// once the queue is closed and drained.
	Dequeue() <-chan Job

	// Len returns the current number of queued jobs.
	Len() int

	// Close stops accepting jobs. Queued jobs stay readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)
	metrics.UpdateRenderQueueDepth(0)
	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordRenderQueueRejected(reasonClosed)
		return false
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordRenderQueueRejected(reasonCancelled)
		return false
	}

	select {
	case q.jobs <- j:
		metrics.UpdateRenderQueueDepth(len(q.jobs))
		return true
	default:
		metrics.RecordRenderQueueRejected(reasonFull)
		return false
	}
}

// Dequeue returns the job channel.
func (q *InMemoryQueue) Dequeue() <-chan Job {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len() int {
	size := len(q.jobs)
	metrics.UpdateRenderQueueDepth(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

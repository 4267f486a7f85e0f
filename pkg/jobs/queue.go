// Package jobs provides an in-memory background queue with a fixed worker
// pool. Jobs that fail are requeued with a delay until their retry budget
// is spent; callers that need durable state keep it in their own store.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work. Payload is opaque to the queue.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes one job. A returned error triggers a retry.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

func (c *QueueConfig) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BufferSize <= 0 {
		c.BufferSize = c.Workers * 4
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Queue dispatches jobs to a pool of goroutine workers.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig

	pending chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue that feeds jobs to handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	cfg.applyDefaults()
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		pending: make(chan Job, cfg.BufferSize),
	}
}

// Start launches the worker pool. Calling Start twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.started = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
	q.cfg.Logger.Info("queue started",
		zap.String("queue", q.name),
		zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and blocks until they drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()
	q.cfg.Logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue submits a job. It fails when the queue has not been started or
// has already shut down.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	started := q.started
	ctx := q.ctx
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case q.pending <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.pending:
			if err := q.handler(q.ctx, job); err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue) retry(job Job, cause error) {
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.cfg.Logger.Error("job abandoned after retries",
			zap.String("queue", q.name),
			zap.String("job_id", job.ID),
			zap.String("type", job.Type),
			zap.Error(cause))
		return
	}
	q.cfg.Logger.Warn("job failed, will retry",
		zap.String("queue", q.name),
		zap.String("job_id", job.ID),
		zap.Int("attempt", job.Attempt),
		zap.Error(cause))

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		t := time.NewTimer(q.cfg.RetryDelay)
		defer t.Stop()
		select {
		case <-q.ctx.Done():
		case <-t.C:
			if err := q.Enqueue(job); err != nil {
				q.cfg.Logger.Error("requeue failed",
					zap.String("queue", q.name),
					zap.String("job_id", job.ID),
					zap.Error(err))
			}
		}
	}()
}

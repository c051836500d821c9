package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/pipeline"
)

// Processor is the per-document pipeline; *pipeline.Processor satisfies it.
type Processor interface {
	ProcessFile(ctx context.Context, path string) pipeline.Outcome
}

type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  func(Job, pipeline.Outcome)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithOnDone registers a callback run by the worker after each job.
func WithOnDone(fn func(Job, pipeline.Outcome)) Option {
	return func(q *ProcessorQueue) { q.onDone = fn }
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := common.WithTimeout(context.Background(), q.timeout)
					ctx = common.WithRunID(ctx, job.TraceID)
					out := q.proc.ProcessFile(ctx, job.Path)
					cancel()

					q.logger.Info("job finished",
						"worker_id", workerID,
						"path", job.Path,
						"status", out.Status,
						"wait_ms", time.Since(job.SubmittedAt).Milliseconds()-out.Duration.Milliseconds(),
					)
					if q.onDone != nil {
						q.onDone(job, out)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued file for processing", "path", job.Path, "trace_id", job.TraceID)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

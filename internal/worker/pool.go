package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job is one detached unit of extraction work: the row id plus everything a
// worker needs without touching shared state.
type Job struct {
	FileID      int64
	FileName    string
	ContentType string
	Data        []byte
	TraceID     string
	SubmittedAt time.Time
}

// Processor is what the pool drives. Attempt runs one try; a non-nil error
// means a retryable fault (the row is still processing). Fail finalizes the
// row after the last attempt.
type Processor interface {
	Attempt(ctx context.Context, job Job) error
	Fail(ctx context.Context, job Job, cause error)
}

// ErrQueueClosed is returned by Enqueue after Shutdown has begun.
var ErrQueueClosed = errors.New("worker pool is shut down")

// Pool is a fixed-size worker pool over a bounded in-memory queue. Each job
// is retried in place with exponential backoff on retryable faults; failures
// are isolated per job.
type Pool struct {
	proc        Processor
	log         zerolog.Logger
	workers     int
	timeout     time.Duration
	maxAttempts int
	baseBackoff time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.ch = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithBaseBackoff shortens the retry delay; the tests use it.
func WithBaseBackoff(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.baseBackoff = d
		}
	}
}

func NewPool(proc Processor, log zerolog.Logger, opts ...Option) *Pool {
	p := &Pool{
		proc:        proc,
		log:         log.With().Str("component", "worker_pool").Logger(),
		workers:     4,
		timeout:     3 * time.Minute,
		maxAttempts: 3,
		baseBackoff: 2 * time.Second,
		ch:          make(chan Job, 256),
	}
	for _, o := range opts {
		o(p)
	}
	p.start()
	return p
}

func (p *Pool) start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func(workerID int) {
				defer p.wg.Done()
				p.log.Info().Int("worker_id", workerID).Msg("worker started")

				for job := range p.ch {
					p.run(workerID, job)
				}

				p.log.Info().Int("worker_id", workerID).Msg("worker stopped")
			}(i + 1)
		}
	})
}

// run drives one job to a terminal outcome: success, no-data (both resolved
// inside Attempt), or error after maxAttempts tries.
func (p *Pool) run(workerID int, job Job) {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.proc.Attempt(ctx, job)
		cancel()

		if err == nil {
			return
		}
		lastErr = err
		p.log.Warn().
			Int("worker_id", workerID).
			Int64("file_id", job.FileID).
			Int("attempt", attempt).
			Err(err).
			Msg("attempt failed")

		if attempt < p.maxAttempts {
			// exponential backoff: base, 2*base, 4*base, ...
			time.Sleep(p.baseBackoff << (attempt - 1))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.proc.Fail(ctx, job, lastErr)
	cancel()
}

// Enqueue hands a job to the pool. When the queue is full the send blocks,
// applying backpressure to the caller rather than dropping the job.
func (p *Pool) Enqueue(_ context.Context, job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.log.Warn().Int64("file_id", job.FileID).Msg("cannot enqueue: pool is shutting down")
		return ErrQueueClosed
	}

	select {
	case p.ch <- job:
	default:
		p.log.Warn().Int64("file_id", job.FileID).Msg("queue full, applying backpressure")
		p.ch <- job
	}
	p.log.Info().
		Int64("file_id", job.FileID).
		Str("trace_id", job.TraceID).
		Msg("queued file for processing")
	return nil
}

// Shutdown closes the queue and waits for in-flight jobs to drain, bounded
// by ctx.
func (p *Pool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); p.wg.Wait() }()

	select {
	case <-ctx.Done():
		p.log.Warn().Msg("shutdown interrupted by context")
	case <-done:
		p.log.Info().Msg("queue drained, shutdown complete")
	}
}

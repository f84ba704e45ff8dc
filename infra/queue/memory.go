package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/cespare/xxhash/v2"
)

// MemoryConfig configures the in-process queue.
type MemoryConfig struct {
	Workers    int
	BufferSize int
	Retry      RetryConfig
}

// MemoryQueue is an in-process queue. Jobs for one account always land on the
// same shard, so they are handled one at a time and in publish order.
type MemoryQueue struct {
	shards []chan queue.Job
	// closeCh refuses new publishes; drainCh tells workers that no publisher
	// can still add to a shard.
	closeCh    chan struct{}
	drainCh    chan struct{}
	wg         sync.WaitGroup
	publishers sync.WaitGroup
	mu         sync.RWMutex
	closed     bool
	started    bool

	retry   RetryConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	deadMu sync.Mutex
	dead   []queue.Job
}

// NewMemory creates an in-process queue.
func NewMemory(cfg MemoryConfig, logger *slog.Logger, m *metrics.Metrics) *MemoryQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	shards := make([]chan queue.Job, cfg.Workers)
	for i := range shards {
		shards[i] = make(chan queue.Job, cfg.BufferSize)
	}
	return &MemoryQueue{
		shards:  shards,
		closeCh: make(chan struct{}),
		drainCh: make(chan struct{}),
		retry:   cfg.Retry,
		logger:  logger.With("queue", "memory"),
		metrics: m,
	}
}

func (q *MemoryQueue) shardFor(job queue.Job) chan queue.Job {
	return q.shards[xxhash.Sum64(job.AccountID[:])%uint64(len(q.shards))]
}

var errMemoryClosed = errors.New("memory queue: closed")

// Publish enqueues a job. It blocks while the account's shard is full, until
// ctx is done or the queue is stopped.
func (q *MemoryQueue) Publish(ctx context.Context, job queue.Job) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return errMemoryClosed
	}
	q.publishers.Add(1)
	q.mu.RUnlock()
	defer q.publishers.Done()

	select {
	case <-q.closeCh:
		return errMemoryClosed
	default:
	}
	select {
	case q.shardFor(job) <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeCh:
		return errMemoryClosed
	}
}

// Start launches one worker per shard. Workers outlive ctx: only Stop ends
// them, after every accepted job has been handled or dead-lettered.
func (q *MemoryQueue) Start(ctx context.Context, handler queue.HandlerFunc) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errMemoryClosed
	}
	if q.started {
		return fmt.Errorf("memory queue: already started")
	}
	q.started = true
	workerCtx := context.WithoutCancel(ctx)
	for i, shard := range q.shards {
		q.wg.Add(1)
		go q.worker(workerCtx, i, shard, handler)
	}
	q.logger.Info("memory queue started", "workers", len(q.shards))
	return nil
}

func (q *MemoryQueue) worker(ctx context.Context, id int, shard chan queue.Job, handler queue.HandlerFunc) {
	defer q.wg.Done()
	log := q.logger.With("shard", id)
	for {
		select {
		case job := <-shard:
			q.handle(ctx, log, job, handler)
		case <-q.drainCh:
			for {
				select {
				case job := <-shard:
					q.handle(ctx, log, job, handler)
				default:
					return
				}
			}
		}
	}
}

func (q *MemoryQueue) handle(ctx context.Context, log *slog.Logger, job queue.Job, handler queue.HandlerFunc) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic recovered in job handler", "job_id", job.ID, "kind", job.Kind, "panic", r)
			q.deadLetter(job)
		}
	}()
	if err := process(ctx, q.retry, handler, job); err != nil {
		log.Error("job failed, dead-lettering",
			"job_id", job.ID, "kind", job.Kind, "account_id", job.AccountID, "error", err)
		q.deadLetter(job)
	}
}

func (q *MemoryQueue) deadLetter(job queue.Job) {
	q.metrics.DeadLetter("memory")
	q.deadMu.Lock()
	q.dead = append(q.dead, job)
	q.deadMu.Unlock()
}

// DeadLetters returns the jobs that exhausted their retries.
func (q *MemoryQueue) DeadLetters() []queue.Job {
	q.deadMu.Lock()
	defer q.deadMu.Unlock()
	return append([]queue.Job(nil), q.dead...)
}

// Stop refuses new jobs, waits for in-flight publishers, then lets workers
// drain their shards. Jobs accepted by a queue that was never started are
// dead-lettered.
func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeCh)
	started := q.started
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.publishers.Wait()
		close(q.drainCh)
		q.wg.Wait()
		if !started {
			q.deadLetterBuffered()
		}
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) deadLetterBuffered() {
	for _, shard := range q.shards {
	drain:
		for {
			select {
			case job := <-shard:
				q.logger.Warn("queue stopped before start, dead-lettering", "job_id", job.ID, "account_id", job.AccountID)
				q.deadLetter(job)
			default:
				break drain
			}
		}
	}
}

// Close stops the queue.
func (q *MemoryQueue) Close() error {
	return q.Stop(context.Background())
}

var _ queue.Queue = (*MemoryQueue)(nil)

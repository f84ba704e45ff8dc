package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/ledger/pkg/queue"
)

// InlineQueue runs jobs on the publishing goroutine. The CLI and tests use it
// to observe recomputed balances as soon as a write returns.
type InlineQueue struct {
	mu      sync.RWMutex
	handler queue.HandlerFunc
	retry   RetryConfig
	logger  *slog.Logger

	deadMu sync.Mutex
	dead   []queue.Job
}

// NewInline creates an inline queue.
func NewInline(retry RetryConfig, logger *slog.Logger) *InlineQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &InlineQueue{retry: retry, logger: logger.With("queue", "inline")}
}

// Publish runs the job now. Like the other backends it reports only whether
// the job was accepted: a handler that still fails after the retry policy is
// logged and dead-lettered, so publishers never retry a delivered job.
func (q *InlineQueue) Publish(ctx context.Context, job queue.Job) error {
	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()
	if handler == nil {
		return fmt.Errorf("inline queue: not started")
	}
	if err := process(ctx, q.retry, handler, job); err != nil {
		q.logger.Error("job failed, dead-lettering",
			"job_id", job.ID, "kind", job.Kind, "account_id", job.AccountID, "error", err)
		q.deadMu.Lock()
		q.dead = append(q.dead, job)
		q.deadMu.Unlock()
	}
	return nil
}

// DeadLetters returns the jobs whose handler failed.
func (q *InlineQueue) DeadLetters() []queue.Job {
	q.deadMu.Lock()
	defer q.deadMu.Unlock()
	return append([]queue.Job(nil), q.dead...)
}

// Start sets the handler.
func (q *InlineQueue) Start(_ context.Context, handler queue.HandlerFunc) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = handler
	return nil
}

// Stop clears the handler.
func (q *InlineQueue) Stop(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = nil
	return nil
}

// Close stops the queue.
func (q *InlineQueue) Close() error {
	return q.Stop(context.Background())
}

var _ queue.Queue = (*InlineQueue)(nil)

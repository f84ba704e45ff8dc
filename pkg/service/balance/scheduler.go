package balance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// Scheduler enqueues recomputation jobs once the unit that caused them has
// committed. A job is never published for a rolled back write.
type Scheduler struct {
	publisher       queue.Publisher
	logger          *slog.Logger
	maxRetries      uint64
	initialInterval time.Duration
}

// NewScheduler creates a Scheduler publishing to p.
func NewScheduler(p queue.Publisher, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		publisher:       p,
		logger:          logger.With("component", "balance-scheduler"),
		maxRetries:      3,
		initialInterval: 100 * time.Millisecond,
	}
}

// WithRetry overrides how often a failed publish is retried.
func (s *Scheduler) WithRetry(maxRetries uint64, initial time.Duration) *Scheduler {
	s.maxRetries = maxRetries
	s.initialInterval = initial
	return s
}

// Schedule registers kind jobs for accountIDs on uow's commit.
func (s *Scheduler) Schedule(uow repository.UnitOfWork, kind queue.Kind, accountIDs ...uuid.UUID) {
	ids := unique(accountIDs)
	if len(ids) == 0 {
		return
	}
	uow.AfterCommit(func(ctx context.Context) {
		for _, id := range ids {
			s.publish(ctx, queue.NewJob(kind, id))
		}
	})
}

// Enqueue publishes a job right away. Use it only outside a write unit.
func (s *Scheduler) Enqueue(ctx context.Context, kind queue.Kind, accountID uuid.UUID) error {
	return s.publishWithRetry(ctx, queue.NewJob(kind, accountID))
}

func (s *Scheduler) publish(ctx context.Context, job queue.Job) {
	if err := s.publishWithRetry(ctx, job); err != nil {
		// The write already committed; the next mutation or a verify pass
		// heals the derived columns.
		s.logger.Error("failed to enqueue balance job",
			"job_id", job.ID, "kind", job.Kind, "account_id", job.AccountID, "error", err)
	}
}

func (s *Scheduler) publishWithRetry(ctx context.Context, job queue.Job) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval
	b.MaxElapsedTime = 0
	return backoff.Retry(func() error {
		err := s.publisher.Publish(ctx, job)
		if err != nil && errors.Is(err, domain.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx))
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

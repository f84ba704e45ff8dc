// Package ledger is the write path of the ledger: entry creation, update,
// deletion and restore with their cascades, paired transfers, and settlement
// of payables and receivables.
//
// Every multi-row change runs inside one unit of work. Balance recomputation
// and budget cache invalidation are registered as after-commit hooks, so they
// never observe a half-written unit and never fail the write.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
)

// ErrNotOwner is returned when a user acts on another user's entry or obligation.
var ErrNotOwner = errors.New("not owner")

// BalanceScheduler requests balance recomputation once uow commits.
type BalanceScheduler interface {
	Schedule(uow repository.UnitOfWork, kind queue.Kind, accountIDs ...uuid.UUID)
}

// BudgetInvalidator evicts budget summaries fed by an entry. It must not fail.
type BudgetInvalidator interface {
	EntryChanged(ctx context.Context, userID uuid.UUID, date time.Time, categoryIDs ...uuid.UUID)
}

// Service provides ledger write operations.
type Service struct {
	uow      repository.UnitOfWork
	balances BalanceScheduler
	budgets  BudgetInvalidator
	logger   *slog.Logger
}

// New creates a ledger Service. budgets may be nil when no summary cache is
// configured.
func New(uow repository.UnitOfWork, balances BalanceScheduler, budgets BudgetInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:      uow,
		balances: balances,
		budgets:  budgets,
		logger:   logger.With("component", "ledger"),
	}
}

// effect is what a written entry invalidates once committed.
type effect struct {
	userID     uuid.UUID
	date       time.Time
	accounts   []uuid.UUID
	categories []uuid.UUID
}

// effectOf describes e together with the splits that allocate it.
func effectOf(e *transaction.Transaction, splits []*transaction.Split) effect {
	out := effect{userID: e.UserID, date: e.TransactionDate, accounts: e.AccountIDs()}
	if e.CategoryID != nil {
		out.categories = append(out.categories, *e.CategoryID)
	}
	for _, s := range splits {
		if s.DeletedAt != nil {
			continue
		}
		if c := s.EffectiveCategory(e); c != nil {
			out.categories = append(out.categories, *c)
		}
	}
	return out
}

// commit registers recomputation for every touched account and eviction for
// every touched (date, category).
func (s *Service) commit(uow repository.UnitOfWork, effects ...effect) {
	var accounts []uuid.UUID
	for _, e := range effects {
		accounts = append(accounts, e.accounts...)
	}
	if s.balances != nil && len(accounts) > 0 {
		s.balances.Schedule(uow, queue.KindRecalculateRunningBalances, accounts...)
	}
	if s.budgets == nil {
		return
	}
	uow.AfterCommit(func(ctx context.Context) {
		for _, e := range effects {
			if len(e.categories) > 0 {
				s.budgets.EntryChanged(ctx, e.userID, e.date, e.categories...)
			}
		}
	})
}

// retryOnce reruns a unit that lost an optimistic version race.
func retryOnce(fn func() error) error {
	err := fn()
	if errors.Is(err, domain.ErrConcurrentModification) {
		err = fn()
	}
	return err
}

func immutable(e *transaction.Transaction) error {
	return fmt.Errorf("%w: %w", transaction.ErrImmutable,
		domain.NewValidationError("id", fmt.Sprintf("%s entry %s cannot be edited directly", e.Origin, e.ID)))
}

func checkEntryOwner(e *transaction.Transaction, userID uuid.UUID) error {
	if e.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

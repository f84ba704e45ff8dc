package budget

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/cache"
	"github.com/amirasaad/ledger/pkg/domain/budget"
	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
)

// Invalidator evicts cached budget summaries fed by a changed entry or
// budget. It never fails the caller: lookup and eviction errors are logged
// and counted, and the stale value lives until its TTL.
type Invalidator struct {
	uow     repository.UnitOfWork
	cache   cache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewInvalidator creates an Invalidator.
func NewInvalidator(uow repository.UnitOfWork, c cache.Cache, m *metrics.Metrics, logger *slog.Logger) *Invalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invalidator{uow: uow, cache: c, metrics: m, logger: logger.With("component", "budget-invalidator")}
}

// EntryChanged evicts the summaries of userID's budgets in categoryIDs whose
// range contains date: period budgets through the periods containing date and
// one-time budgets through their own range. Uncategorized entries evict
// nothing.
func (i *Invalidator) EntryChanged(ctx context.Context, userID uuid.UUID, date time.Time, categoryIDs ...uuid.UUID) {
	categories := make(map[uuid.UUID]struct{}, len(categoryIDs))
	for _, c := range categoryIDs {
		if c != uuid.Nil {
			categories[c] = struct{}{}
		}
	}
	if len(categories) == 0 {
		return
	}

	var keys []string
	err := i.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		periodRepo, err := uow.BudgetPeriodRepository()
		if err != nil {
			return err
		}
		budgetRepo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		periods, err := periodRepo.ListContaining(ctx, userID, date)
		if err != nil {
			return err
		}
		periodIDs := make([]uuid.UUID, 0, len(periods))
		for _, p := range periods {
			periodIDs = append(periodIDs, p.ID)
			for c := range categories {
				keys = append(keys, cache.PeriodCategoryKey(p.ID, c))
			}
		}
		budgets, err := budgetRepo.ListByPeriods(ctx, userID, periodIDs)
		if err != nil {
			return err
		}
		oneTime, err := budgetRepo.ListOneTimeCovering(ctx, userID, date)
		if err != nil {
			return err
		}
		for _, b := range append(budgets, oneTime...) {
			if _, ok := categories[b.CategoryID]; ok {
				keys = append(keys, cache.SummaryKey(b.ID))
			}
		}
		return nil
	})
	if err != nil {
		i.metrics.Invalidation(err)
		i.logger.Error("failed to resolve budget cache keys",
			"user_id", userID, "date", date.Format("2006-01-02"), "error", err)
		return
	}
	i.evict(ctx, keys...)
}

// BudgetChanged evicts the summary of b and its period/category slot.
func (i *Invalidator) BudgetChanged(ctx context.Context, b *budget.Budget) {
	keys := []string{cache.SummaryKey(b.ID)}
	if b.PeriodID != nil {
		keys = append(keys, cache.PeriodCategoryKey(*b.PeriodID, b.CategoryID))
	}
	i.evict(ctx, keys...)
}

func (i *Invalidator) evict(ctx context.Context, keys ...string) {
	for _, key := range keys {
		err := i.cache.Invalidate(ctx, key)
		i.metrics.Invalidation(err)
		if err != nil {
			i.logger.Warn("budget cache invalidation failed", "key", key, "error", err)
			continue
		}
		i.logger.Debug("budget cache invalidated", "key", key)
	}
}

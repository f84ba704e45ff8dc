// Package budget manages budget periods and budgets and serves their
// spending summaries through the summary cache.
package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/cache"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/budget"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
)

// ErrNotOwner is returned when a user acts on another user's budget or period.
var ErrNotOwner = errors.New("not owner")

// Service provides budget and budget period operations.
type Service struct {
	uow         repository.UnitOfWork
	cache       cache.Cache
	invalidator *Invalidator
	logger      *slog.Logger
}

// New creates a budget Service.
func New(uow repository.UnitOfWork, c cache.Cache, inv *Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, cache: c, invalidator: inv, logger: logger.With("component", "budget")}
}

// CreatePeriod stores a new period. Names are unique per owner.
func (s *Service) CreatePeriod(ctx context.Context, p *budget.Period) (*budget.Period, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV7())
	}
	p.StartDate, p.EndDate = common.DateOf(p.StartDate), common.DateOf(p.EndDate)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetPeriodRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetByName(ctx, p.UserID, p.Name); err == nil {
			return domain.NewValidationError("name", "a budget period with this name already exists")
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := repo.Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.NewValidationError("name", "a budget period with this name already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("budget period created", "period_id", p.ID, "user_id", p.UserID, "name", p.Name)
	return p, nil
}

// CreateBudget stores a new budget. A user has at most one live budget per
// category and period.
func (s *Service) CreateBudget(ctx context.Context, b *budget.Budget) (*budget.Budget, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.Must(uuid.NewV7())
	}
	normalizeBudget(b)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := s.checkPlacement(ctx, uow, b); err != nil {
			return err
		}
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, b); err != nil {
			return err
		}
		s.afterBudgetWrite(uow, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBudget applies the editable fields of changes to budget id.
func (s *Service) UpdateBudget(ctx context.Context, userID, id uuid.UUID, changes budget.Budget) (*budget.Budget, error) {
	var updated *budget.Budget
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.UserID != userID {
			return ErrNotOwner
		}
		before := *current
		next := *current
		next.CategoryID = changes.CategoryID
		next.PeriodID = changes.PeriodID
		next.Amount = changes.Amount
		next.StartDate = changes.StartDate
		next.EndDate = changes.EndDate
		next.Active = changes.Active
		normalizeBudget(&next)
		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.checkPlacement(ctx, uow, &next); err != nil {
			return err
		}
		if err := repo.Update(ctx, &next); err != nil {
			return err
		}
		s.afterBudgetWrite(uow, &before)
		s.afterBudgetWrite(uow, &next)
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBudget soft-deletes a budget.
func (s *Service) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		b, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return ErrNotOwner
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		s.afterBudgetWrite(uow, b)
		return nil
	})
}

// RestoreBudget restores a soft-deleted budget unless another live budget
// took its category and period in the meantime.
func (s *Service) RestoreBudget(ctx context.Context, userID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		b, err := repo.GetWithDeleted(ctx, id)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return ErrNotOwner
		}
		if b.DeletedAt == nil {
			return nil
		}
		if err := s.checkPlacement(ctx, uow, b); err != nil {
			return err
		}
		if err := repo.Restore(ctx, id); err != nil {
			return err
		}
		s.afterBudgetWrite(uow, b)
		return nil
	})
}

// ForceDeleteBudget removes a budget permanently, live or soft-deleted.
func (s *Service) ForceDeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		b, err := repo.GetWithDeleted(ctx, id)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return ErrNotOwner
		}
		if err := repo.ForceDelete(ctx, id); err != nil {
			return err
		}
		s.afterBudgetWrite(uow, b)
		return nil
	})
}

// SummaryForBudget returns the budget's spending summary, computing it on a
// cache miss.
func (s *Service) SummaryForBudget(ctx context.Context, userID, budgetID uuid.UUID) (budget.Summary, error) {
	return cache.Load(ctx, s.cache, cache.SummaryKey(budgetID), func(ctx context.Context) (budget.Summary, error) {
		return s.computeSummary(ctx, userID, budgetID)
	})
}

// SpendingForPeriod returns what userID spent in categoryID during the period,
// computing it on a cache miss.
func (s *Service) SpendingForPeriod(ctx context.Context, userID, periodID, categoryID uuid.UUID) (budget.Spending, error) {
	key := cache.PeriodCategoryKey(periodID, categoryID)
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) (budget.Spending, error) {
		var out budget.Spending
		err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			periodRepo, err := uow.BudgetPeriodRepository()
			if err != nil {
				return err
			}
			p, err := periodRepo.Get(ctx, periodID)
			if err != nil {
				return err
			}
			if p.UserID != userID {
				return ErrNotOwner
			}
			out, err = spending(ctx, uow, userID, categoryID, p.StartDate, p.EndDate)
			return err
		})
		return out, err
	})
}

func (s *Service) computeSummary(ctx context.Context, userID, budgetID uuid.UUID) (budget.Summary, error) {
	var out budget.Summary
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		budgetRepo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		b, err := budgetRepo.Get(ctx, budgetID)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return ErrNotOwner
		}
		var period *budget.Period
		if b.PeriodID != nil {
			periodRepo, err := uow.BudgetPeriodRepository()
			if err != nil {
				return err
			}
			if period, err = periodRepo.Get(ctx, *b.PeriodID); err != nil {
				return err
			}
		}
		from, to, ok := b.Range(period)
		if !ok {
			return fmt.Errorf("budget %s has no date range", b.ID)
		}
		spent, err := spending(ctx, uow, userID, b.CategoryID, from, to)
		if err != nil {
			return err
		}
		out = budget.Summarize(b, from, to, spent)
		return nil
	})
	return out, err
}

func spending(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID, categoryID uuid.UUID,
	from, to time.Time,
) (budget.Spending, error) {
	txRepo, err := uow.TransactionRepository()
	if err != nil {
		return budget.Spending{}, err
	}
	splitRepo, err := uow.SplitRepository()
	if err != nil {
		return budget.Spending{}, err
	}
	entries, err := txRepo.ListByUserBetween(ctx, userID, from, to, transaction.TypeExpense)
	if err != nil {
		return budget.Spending{}, err
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	splits, err := splitRepo.ListByTransactions(ctx, ids)
	if err != nil {
		return budget.Spending{}, err
	}
	return budget.SpendingFor(categoryID, entries, splits), nil
}

// checkPlacement enforces one live budget per (owner, category, period) and
// that the period belongs to the owner.
func (s *Service) checkPlacement(ctx context.Context, uow repository.UnitOfWork, b *budget.Budget) error {
	if b.Kind != budget.KindPeriod || b.PeriodID == nil {
		return nil
	}
	periodRepo, err := uow.BudgetPeriodRepository()
	if err != nil {
		return err
	}
	p, err := periodRepo.Get(ctx, *b.PeriodID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("period_id", "budget period not found")
		}
		return err
	}
	if p.UserID != b.UserID {
		return ErrNotOwner
	}
	budgetRepo, err := uow.BudgetRepository()
	if err != nil {
		return err
	}
	existing, err := budgetRepo.FindForPeriod(ctx, b.UserID, b.CategoryID, *b.PeriodID)
	switch {
	case err == nil && existing.ID != b.ID:
		return domain.NewValidationError("category_id", "a budget for this category and period already exists")
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return nil
}

func (s *Service) afterBudgetWrite(uow repository.UnitOfWork, b *budget.Budget) {
	if s.invalidator == nil {
		return
	}
	snapshot := *b
	uow.AfterCommit(func(ctx context.Context) {
		s.invalidator.BudgetChanged(ctx, &snapshot)
	})
}

func normalizeBudget(b *budget.Budget) {
	b.Amount = money.Round(b.Amount)
	if b.StartDate != nil {
		d := common.DateOf(*b.StartDate)
		b.StartDate = &d
	}
	if b.EndDate != nil {
		d := common.DateOf(*b.EndDate)
		b.EndDate = &d
	}
}

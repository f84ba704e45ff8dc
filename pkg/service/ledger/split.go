package ledger

import (
	"context"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
)

// CreateSplit allocates part of an income or expense entry to a category.
func (s *Service) CreateSplit(ctx context.Context, userID uuid.UUID, split *transaction.Split) (*transaction.Split, error) {
	if split.ID == uuid.Nil {
		split.ID = uuid.Must(uuid.NewV7())
	}
	split.Amount = money.Round(split.Amount)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		parent, splits, repo, err := s.loadSplits(ctx, uow, userID, split.TransactionID)
		if err != nil {
			return err
		}
		if err := transaction.ValidateSplits(parent, append(splits, split)); err != nil {
			return err
		}
		if err := repo.Create(ctx, split); err != nil {
			return err
		}
		s.invalidateOnly(uow, parent, splits, split)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return split, nil
}

// UpdateSplit changes a split's amount and category.
func (s *Service) UpdateSplit(ctx context.Context, userID uuid.UUID, split *transaction.Split) (*transaction.Split, error) {
	split.Amount = money.Round(split.Amount)
	var updated *transaction.Split
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.SplitRepository()
		if err != nil {
			return err
		}
		current, err := repo.Get(ctx, split.ID)
		if err != nil {
			return err
		}
		parent, splits, _, err := s.loadSplits(ctx, uow, userID, current.TransactionID)
		if err != nil {
			return err
		}
		next := *current
		next.Amount = split.Amount
		next.CategoryID = split.CategoryID
		others := make([]*transaction.Split, 0, len(splits))
		for _, sp := range splits {
			if sp.ID != next.ID {
				others = append(others, sp)
			}
		}
		if err := transaction.ValidateSplits(parent, append(others, &next)); err != nil {
			return err
		}
		if err := repo.Update(ctx, &next); err != nil {
			return err
		}
		s.invalidateOnly(uow, parent, splits, &next)
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSplit soft-deletes a split.
func (s *Service) DeleteSplit(ctx context.Context, userID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.SplitRepository()
		if err != nil {
			return err
		}
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		parent, splits, _, err := s.loadSplits(ctx, uow, userID, current.TransactionID)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		s.invalidateOnly(uow, parent, splits)
		return nil
	})
}

// RestoreSplit restores a soft-deleted split if it still fits its parent.
func (s *Service) RestoreSplit(ctx context.Context, userID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.SplitRepository()
		if err != nil {
			return err
		}
		current, err := repo.GetWithDeleted(ctx, id)
		if err != nil {
			return err
		}
		if current.DeletedAt == nil {
			return nil
		}
		parent, splits, _, err := s.loadSplits(ctx, uow, userID, current.TransactionID)
		if err != nil {
			return err
		}
		if err := transaction.ValidateSplits(parent, append(splits, current)); err != nil {
			return err
		}
		if err := repo.Restore(ctx, id); err != nil {
			return err
		}
		current.DeletedAt = nil
		s.invalidateOnly(uow, parent, splits, current)
		return nil
	})
}

// loadSplits returns the live parent entry and its live splits after checking
// ownership.
func (s *Service) loadSplits(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID, transactionID uuid.UUID,
) (*transaction.Transaction, []*transaction.Split, repository.SplitRepository, error) {
	txRepo, err := uow.TransactionRepository()
	if err != nil {
		return nil, nil, nil, err
	}
	splitRepo, err := uow.SplitRepository()
	if err != nil {
		return nil, nil, nil, err
	}
	parent, err := txRepo.Get(ctx, transactionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := checkEntryOwner(parent, userID); err != nil {
		return nil, nil, nil, err
	}
	if parent.Type != transaction.TypeIncome && parent.Type != transaction.TypeExpense {
		return nil, nil, nil, domain.NewValidationError("transaction_id", "only income and expense entries can be split")
	}
	splits, err := splitRepo.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, nil, nil, err
	}
	return parent, splits, splitRepo, nil
}

// invalidateOnly evicts the summaries fed by parent before and after a split
// write. Splits never change a balance, so nothing is scheduled.
func (s *Service) invalidateOnly(uow repository.UnitOfWork, parent *transaction.Transaction, before []*transaction.Split, changed ...*transaction.Split) {
	if s.budgets == nil {
		return
	}
	effects := []effect{effectOf(parent, before), effectOf(parent, changed)}
	uow.AfterCommit(func(ctx context.Context) {
		for _, e := range effects {
			if len(e.categories) > 0 {
				s.budgets.EntryChanged(ctx, e.userID, e.date, e.categories...)
			}
		}
	})
}

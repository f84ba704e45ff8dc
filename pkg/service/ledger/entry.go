package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryChanges are the editable fields of a manual income or expense entry.
type EntryChanges struct {
	Amount          decimal.Decimal
	TransactionDate time.Time
	CategoryID      *uuid.UUID
	Description     string
}

// Get returns a live entry owned by userID.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if out, err = repo.Get(ctx, id); err != nil {
			return err
		}
		return checkEntryOwner(out, userID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create records an entry typed by the user. Transfers are written as a
// linked pair and the source leg is returned.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in transaction.Transaction) (*transaction.Transaction, error) {
	if in.Type == transaction.TypeTransfer {
		if in.DestinationAccountID == nil {
			return nil, domain.NewValidationError("destination_account_id", "is required for transfer")
		}
		t, err := s.CreateTransfer(ctx, userID, TransferRequest{
			SourceAccountID:      in.AccountID,
			DestinationAccountID: *in.DestinationAccountID,
			Amount:               in.Amount,
			Date:                 in.TransactionDate,
			ConversionRate:       in.ConversionRate,
			Description:          in.Description,
		})
		if err != nil {
			return nil, err
		}
		return t.Out, nil
	}

	entry := &transaction.Transaction{
		ID:              transaction.NewID(),
		UserID:          userID,
		AccountID:       in.AccountID,
		Type:            in.Type,
		Origin:          transaction.OriginManual,
		Amount:          money.Round(in.Amount),
		TransactionDate: in.TransactionDate,
		CategoryID:      in.CategoryID,
		Description:     in.Description,
	}
	entry.Normalize()
	if err := entry.ValidateUserCreate(); err != nil {
		return nil, err
	}

	logger := s.logger.With("user_id", userID, "account_id", entry.AccountID, "type", entry.Type)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		acc, err := accRepo.Get(ctx, entry.AccountID)
		if err != nil {
			return err
		}
		if err := acc.CheckPostable(userID); err != nil {
			return err
		}
		if err := txRepo.Create(ctx, entry); err != nil {
			return err
		}
		s.commit(uow, effectOf(entry, nil))
		return nil
	})
	if err != nil {
		logger.Error("create entry failed", "error", err)
		return nil, err
	}
	logger.Info("entry created", "transaction_id", entry.ID, "amount", entry.Amount.String())
	return entry, nil
}

// Update edits a manual income or expense entry. Entries produced by the
// transfer or settlement coordinators and system entries are immutable.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, changes EntryChanges) (*transaction.Transaction, error) {
	var updated *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		splitRepo, err := uow.SplitRepository()
		if err != nil {
			return err
		}
		current, err := txRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := checkEntryOwner(current, userID); err != nil {
			return err
		}
		if current.Origin != transaction.OriginManual || !current.Type.IsUserCreatable() || current.Type.IsTransfer() {
			return immutable(current)
		}
		splits, err := splitRepo.ListByTransaction(ctx, id)
		if err != nil {
			return err
		}

		next := *current
		next.Amount = money.Round(changes.Amount)
		next.TransactionDate = changes.TransactionDate
		next.CategoryID = changes.CategoryID
		next.Description = changes.Description
		next.Normalize()
		if err := next.ValidateUserCreate(); err != nil {
			return err
		}
		if err := transaction.ValidateSplits(&next, splits); err != nil {
			return err
		}
		if err := txRepo.Update(ctx, &next); err != nil {
			return err
		}
		s.commit(uow, effectOf(current, splits), effectOf(&next, splits))
		updated = &next
		return nil
	})
	if err != nil {
		s.logger.Error("update entry failed", "transaction_id", id, "error", err)
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes an entry. A transfer leg takes its pair with it; a
// settlement entry hard-deletes its payment and rolls back the obligation's
// paid amount and status, all in the same unit.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := retryOnce(func() error {
		return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			txRepo, err := uow.TransactionRepository()
			if err != nil {
				return err
			}
			entry, err := txRepo.Get(ctx, id)
			if err != nil {
				return err
			}
			if err := checkEntryOwner(entry, userID); err != nil {
				return err
			}
			return s.deleteEntry(ctx, uow, entry)
		})
	})
	if err != nil {
		s.logger.Error("delete entry failed", "transaction_id", id, "error", err)
		return err
	}
	s.logger.Info("entry deleted", "transaction_id", id, "user_id", userID)
	return nil
}

func (s *Service) deleteEntry(ctx context.Context, uow repository.UnitOfWork, entry *transaction.Transaction) error {
	txRepo, err := uow.TransactionRepository()
	if err != nil {
		return err
	}
	splitRepo, err := uow.SplitRepository()
	if err != nil {
		return err
	}
	paymentRepo, err := uow.PaymentRepository()
	if err != nil {
		return err
	}

	splits, err := splitRepo.ListByTransaction(ctx, entry.ID)
	if err != nil {
		return err
	}
	if err := txRepo.Delete(ctx, entry.ID); err != nil {
		return err
	}
	effects := []effect{effectOf(entry, splits)}

	if entry.RelatedTransactionID != nil {
		pair, err := txRepo.Get(ctx, *entry.RelatedTransactionID)
		switch {
		case err == nil:
			if err := txRepo.Delete(ctx, pair.ID); err != nil {
				return err
			}
			effects = append(effects, effectOf(pair, nil))
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}

	payment, err := paymentRepo.GetByTransaction(ctx, entry.ID)
	switch {
	case err == nil:
		if err := s.unsettle(ctx, uow, payment); err != nil {
			return err
		}
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	s.commit(uow, effects...)
	return nil
}

// unsettle removes payment and takes its amount off the obligation.
func (s *Service) unsettle(ctx context.Context, uow repository.UnitOfWork, payment *obligation.Payment) error {
	oblRepo, err := uow.ObligationRepository()
	if err != nil {
		return err
	}
	paymentRepo, err := uow.PaymentRepository()
	if err != nil {
		return err
	}
	o, err := oblRepo.Get(ctx, payment.ObligationID)
	if err != nil {
		return err
	}
	if err := paymentRepo.Delete(ctx, payment.ID); err != nil {
		return err
	}
	paid, status, err := o.WithPaid(payment.Amount.Neg())
	if err != nil {
		return err
	}
	if err := oblRepo.UpdatePaid(ctx, o, paid, status); err != nil {
		return err
	}
	s.logger.Info("settlement reversed",
		"obligation_id", o.ID, "payment_id", payment.ID, "amount_paid", paid.String(), "status", status)
	return nil
}

// Restore brings back a soft-deleted entry, and its pair for a transfer leg.
// Settlement entries cannot be restored because their payment is gone.
func (s *Service) Restore(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	var restored *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		splitRepo, err := uow.SplitRepository()
		if err != nil {
			return err
		}
		entry, err := txRepo.GetWithDeleted(ctx, id)
		if err != nil {
			return err
		}
		if err := checkEntryOwner(entry, userID); err != nil {
			return err
		}
		if !entry.IsDeleted() {
			restored = entry
			return nil
		}
		if entry.Origin == transaction.OriginSettlement {
			return domain.NewValidationError("id", "settlement entries cannot be restored; settle the obligation again")
		}
		if err := txRepo.Restore(ctx, id); err != nil {
			return err
		}
		splits, err := splitRepo.ListByTransaction(ctx, id)
		if err != nil {
			return err
		}
		entry.DeletedAt = nil
		effects := []effect{effectOf(entry, splits)}

		if entry.RelatedTransactionID != nil {
			pair, err := txRepo.GetWithDeleted(ctx, *entry.RelatedTransactionID)
			if err != nil {
				return err
			}
			if pair.IsDeleted() {
				if err := txRepo.Restore(ctx, pair.ID); err != nil {
					return err
				}
				pair.DeletedAt = nil
			}
			effects = append(effects, effectOf(pair, nil))
		}
		s.commit(uow, effects...)
		restored = entry
		return nil
	})
	if err != nil {
		s.logger.Error("restore entry failed", "transaction_id", id, "error", err)
		return nil, err
	}
	return restored, nil
}

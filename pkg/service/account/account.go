// Package account opens ledger accounts and records explicit balance
// adjustments.
//
// An account's balance is never written here. Opening balances and
// adjustments are ledger entries like any other, and the balance recalculator
// derives the stored balance from them once the unit commits.
package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/amirasaad/ledger/pkg/service/balance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceScheduler requests balance recomputation once uow commits.
type BalanceScheduler interface {
	Schedule(uow repository.UnitOfWork, kind queue.Kind, accountIDs ...uuid.UUID)
}

// Service provides account operations.
type Service struct {
	uow      repository.UnitOfWork
	balances BalanceScheduler
	logger   *slog.Logger
}

// New creates an account Service.
func New(uow repository.UnitOfWork, balances BalanceScheduler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, balances: balances, logger: logger.With("component", "account")}
}

// OpenRequest describes a new account.
type OpenRequest struct {
	UserID         uuid.UUID
	Name           string
	Currency       money.Code
	Type           account.Type
	InitialBalance decimal.Decimal
	// OpenedAt dates the opening entry. Defaults to today.
	OpenedAt time.Time
}

// Changes are the editable fields of an account.
type Changes struct {
	Name   string
	Type   account.Type
	Active bool
}

// Open creates the account and, for a non-zero opening balance, the entry
// that carries it: initial for a positive amount, adjustment_negative for a
// negative one.
func (s *Service) Open(ctx context.Context, req OpenRequest) (*account.Account, error) {
	typ := req.Type
	if typ == "" {
		typ = account.TypeGeneral
	}
	acc, err := account.New().
		WithUserID(req.UserID).
		WithName(req.Name).
		WithCurrency(req.Currency).
		WithType(typ).
		Build()
	if err != nil {
		return nil, domain.NewValidationError("account", err.Error())
	}
	opened := req.OpenedAt
	if opened.IsZero() {
		opened = time.Now()
	}
	initial := money.Round(req.InitialBalance)

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err := accRepo.Create(ctx, acc); err != nil {
			return err
		}
		if initial.IsZero() {
			return nil
		}
		entryType := transaction.TypeInitial
		if initial.IsNegative() {
			entryType = transaction.TypeAdjustmentNegative
		}
		_, err = s.postEntry(ctx, uow, acc, entryType, initial.Abs(), opened, "Opening balance")
		return err
	})
	if err != nil {
		s.logger.Error("open account failed", "user_id", req.UserID, "error", err)
		return nil, err
	}
	s.logger.Info("account opened",
		"account_id", acc.ID, "user_id", acc.UserID, "currency", acc.Currency, "initial", initial.String())
	return acc, nil
}

// Adjust brings the account's balance to target by posting the difference
// against the entry log as an adjustment. It returns nil when the balance
// already equals target.
func (s *Service) Adjust(
	ctx context.Context,
	userID, accountID uuid.UUID,
	target decimal.Decimal,
	date time.Time,
) (*transaction.Transaction, error) {
	if date.IsZero() {
		date = time.Now()
	}
	target = money.Round(target)
	var entry *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		acc, err := accRepo.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if err := acc.CheckPostable(userID); err != nil {
			return err
		}
		entries, err := txRepo.Timeline(ctx, accountID)
		if err != nil {
			return err
		}
		diff := target.Sub(balance.Sum(accountID, entries))
		if diff.IsZero() {
			return nil
		}
		typ := transaction.TypeAdjustmentPositive
		if diff.IsNegative() {
			typ = transaction.TypeAdjustmentNegative
		}
		entry, err = s.postEntry(ctx, uow, acc, typ, diff.Abs(), date, "Balance adjustment")
		return err
	})
	if err != nil {
		s.logger.Error("adjust balance failed", "account_id", accountID, "error", err)
		return nil, err
	}
	if entry != nil {
		s.logger.Info("balance adjusted",
			"account_id", accountID, "type", entry.Type, "amount", entry.Amount.String(), "target", target.String())
	}
	return entry, nil
}

// Get returns an account owned by userID.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*account.Account, error) {
	var out *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if out, err = repo.Get(ctx, id); err != nil {
			return err
		}
		return out.CheckOwner(userID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns userID's accounts.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var out []*account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		out, err = repo.ListByUser(ctx, userID)
		return err
	})
	return out, err
}

// Update changes name, type and active flag. The balance is untouched.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, changes Changes) (*account.Account, error) {
	if !changes.Type.IsValid() {
		return nil, domain.NewValidationError("type", "invalid account type")
	}
	var out *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acc, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := acc.CheckOwner(userID); err != nil {
			return err
		}
		acc.Name, acc.Type, acc.Active = changes.Name, changes.Type, changes.Active
		if err := repo.Update(ctx, acc); err != nil {
			return err
		}
		out = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// postEntry writes a system entry and schedules recomputation of acc.
func (s *Service) postEntry(
	ctx context.Context,
	uow repository.UnitOfWork,
	acc *account.Account,
	typ transaction.Type,
	amount decimal.Decimal,
	date time.Time,
	description string,
) (*transaction.Transaction, error) {
	txRepo, err := uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	entry := &transaction.Transaction{
		ID:              transaction.NewID(),
		UserID:          acc.UserID,
		AccountID:       acc.ID,
		Type:            typ,
		Origin:          transaction.OriginSystem,
		Amount:          amount,
		TransactionDate: common.DateOf(date),
		Description:     description,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := txRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	if s.balances != nil {
		s.balances.Schedule(uow, queue.KindRecalculateRunningBalances, acc.ID)
	}
	return entry, nil
}

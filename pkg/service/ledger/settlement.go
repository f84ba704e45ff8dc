package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettleRequest pays (or collects) Amount of an obligation through AccountID.
type SettleRequest struct {
	ObligationID uuid.UUID
	AccountID    uuid.UUID
	Amount       decimal.Decimal
	Date         time.Time
	Note         string
	CategoryID   *uuid.UUID
}

// Settlement is what one Settle call wrote.
type Settlement struct {
	Obligation  *obligation.Obligation
	Payment     *obligation.Payment
	Transaction *transaction.Transaction
}

// CreateObligation records a one-off payable or receivable.
func (s *Service) CreateObligation(ctx context.Context, o *obligation.Obligation) (*obligation.Obligation, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.Must(uuid.NewV7())
	}
	o.AmountTotal = money.Round(o.AmountTotal)
	o.AmountPaid = decimal.Zero
	o.Status = obligation.StatusOpen
	o.DueDate = common.DateOf(o.DueDate)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.ObligationRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("obligation created", "obligation_id", o.ID, "kind", o.Kind, "amount_total", o.AmountTotal.String())
	return o, nil
}

// Settle writes the settling entry, the payment pointing at it and the
// obligation's new paid amount and status in one unit. Paying more than the
// outstanding amount is allowed and leaves the obligation paid.
func (s *Service) Settle(ctx context.Context, userID uuid.UUID, req SettleRequest) (*Settlement, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "must be positive")
	}
	if req.Date.IsZero() {
		return nil, domain.NewValidationError("paid_at", "is required")
	}
	amount := money.Round(req.Amount)
	logger := s.logger.With("user_id", userID, "obligation_id", req.ObligationID, "account_id", req.AccountID)

	var out *Settlement
	err := retryOnce(func() error {
		out = nil
		return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			var err error
			out, err = s.settle(ctx, uow, userID, req, amount)
			return err
		})
	})
	if err != nil {
		logger.Error("settlement failed", "error", err)
		return nil, err
	}
	logger.Info("obligation settled",
		"payment_id", out.Payment.ID, "transaction_id", out.Transaction.ID,
		"amount", amount.String(), "amount_paid", out.Obligation.AmountPaid.String(),
		"status", out.Obligation.Status)
	return out, nil
}

func (s *Service) settle(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID uuid.UUID,
	req SettleRequest,
	amount decimal.Decimal,
) (*Settlement, error) {
	oblRepo, err := uow.ObligationRepository()
	if err != nil {
		return nil, err
	}
	paymentRepo, err := uow.PaymentRepository()
	if err != nil {
		return nil, err
	}
	accRepo, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	txRepo, err := uow.TransactionRepository()
	if err != nil {
		return nil, err
	}

	o, err := oblRepo.Get(ctx, req.ObligationID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotOwner
	}
	acc, err := accRepo.Get(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if err := acc.CheckPostable(userID); err != nil {
		return nil, err
	}
	if acc.Currency != o.Currency {
		return nil, domain.NewValidationError("account_id",
			fmt.Sprintf("account currency %s does not match obligation currency %s", acc.Currency, o.Currency))
	}

	description := req.Note
	if description == "" {
		description = o.Description
	}
	entry := &transaction.Transaction{
		ID:              transaction.NewID(),
		UserID:          userID,
		AccountID:       acc.ID,
		Type:            o.Kind.SettlementType(),
		Origin:          transaction.OriginSettlement,
		Amount:          amount,
		TransactionDate: req.Date,
		CategoryID:      req.CategoryID,
		Description:     description,
	}
	entry.Normalize()
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := txRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	txID := entry.ID
	payment := &obligation.Payment{
		ID:            uuid.Must(uuid.NewV7()),
		Kind:          o.Kind,
		ObligationID:  o.ID,
		AccountID:     acc.ID,
		Amount:        amount,
		PaidAt:        entry.TransactionDate,
		Note:          req.Note,
		CategoryID:    req.CategoryID,
		TransactionID: &txID,
	}
	if err := paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	paid, status, err := o.WithPaid(amount)
	if err != nil {
		return nil, err
	}
	if err := oblRepo.UpdatePaid(ctx, o, paid, status); err != nil {
		return nil, err
	}
	s.commit(uow, effectOf(entry, nil))
	return &Settlement{Obligation: o, Payment: payment, Transaction: entry}, nil
}

// ReconcileObligation checks that the obligation's paid amount and status
// match its payments and rewrites them when they do not. It reports whether
// a repair was made.
func (s *Service) ReconcileObligation(ctx context.Context, id uuid.UUID) (bool, error) {
	var repaired bool
	err := retryOnce(func() error {
		repaired = false
		return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			oblRepo, err := uow.ObligationRepository()
			if err != nil {
				return err
			}
			paymentRepo, err := uow.PaymentRepository()
			if err != nil {
				return err
			}
			o, err := oblRepo.Get(ctx, id)
			if err != nil {
				return err
			}
			payments, err := paymentRepo.ListByObligation(ctx, id)
			if err != nil {
				return err
			}
			violation := obligation.CheckConservation(o, payments)
			if violation == nil {
				return nil
			}
			if !errors.Is(violation, domain.ErrConsistencyViolation) {
				return violation
			}
			s.logger.Warn("obligation out of date, repairing", "obligation_id", id, "error", violation)
			paid := obligation.SumPayments(payments)
			if err := oblRepo.UpdatePaid(ctx, o, paid, obligation.DeriveStatus(paid, o.AmountTotal)); err != nil {
				return err
			}
			repaired = true
			return nil
		})
	})
	return repaired, err
}

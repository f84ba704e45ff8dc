package ledger

import (
	"context"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRequest moves Amount from the source to the destination account.
// ConversionRate applies only when the two currencies differ.
type TransferRequest struct {
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
	Date                 time.Time
	ConversionRate       decimal.NullDecimal
	Description          string
}

// Validate checks the request before any account is loaded.
func (r TransferRequest) Validate() error {
	ve := &domain.ValidationError{}
	if r.SourceAccountID == uuid.Nil {
		ve.Add("account_id", "is required")
	}
	if r.DestinationAccountID == uuid.Nil {
		ve.Add("destination_account_id", "is required for transfer")
	} else if r.DestinationAccountID == r.SourceAccountID {
		ve.Add("destination_account_id", "must differ from the source account")
	}
	if !r.Amount.IsPositive() {
		ve.Add("amount", "must be positive")
	}
	if r.Date.IsZero() {
		ve.Add("transaction_date", "is required")
	}
	if r.ConversionRate.Valid && !r.ConversionRate.Decimal.IsPositive() {
		ve.Add("conversion_rate", "must be positive")
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// Transfer is the linked pair written by CreateTransfer.
type Transfer struct {
	Out *transaction.Transaction
	In  *transaction.Transaction
}

// CreateTransfer writes a transfer_out on the source and a transfer_in on the
// destination, each naming the other, in one unit.
func (s *Service) CreateTransfer(ctx context.Context, userID uuid.UUID, req TransferRequest) (*Transfer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	amount := money.Round(req.Amount)
	date := req.Date
	logger := s.logger.With("user_id", userID, "source_account_id", req.SourceAccountID,
		"destination_account_id", req.DestinationAccountID)

	var out Transfer
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		src, err := accRepo.Get(ctx, req.SourceAccountID)
		if err != nil {
			return err
		}
		if err := src.CheckPostable(userID); err != nil {
			return err
		}
		dst, err := accRepo.Get(ctx, req.DestinationAccountID)
		if err != nil {
			return err
		}
		if err := dst.CheckPostable(userID); err != nil {
			return err
		}

		rate := decimal.NullDecimal{}
		converted := decimal.NullDecimal{}
		credited := amount
		if src.Currency != dst.Currency && req.ConversionRate.Valid {
			rate = req.ConversionRate
			credited = money.Convert(amount, rate.Decimal)
			converted = decimal.NewNullDecimal(credited)
		}

		outID, inID := transaction.NewID(), transaction.NewID()
		dstID := dst.ID
		srcID := src.ID
		out.Out = &transaction.Transaction{
			ID:                   outID,
			UserID:               userID,
			AccountID:            src.ID,
			Type:                 transaction.TypeTransferOut,
			Origin:               transaction.OriginTransfer,
			Amount:               amount,
			TransactionDate:      date,
			Description:          req.Description,
			DestinationAccountID: &dstID,
			RelatedTransactionID: &inID,
			ConversionRate:       rate,
			ConvertedAmount:      converted,
		}
		out.In = &transaction.Transaction{
			ID:                   inID,
			UserID:               userID,
			AccountID:            dst.ID,
			Type:                 transaction.TypeTransferIn,
			Origin:               transaction.OriginTransfer,
			Amount:               credited,
			TransactionDate:      date,
			Description:          req.Description,
			DestinationAccountID: &srcID,
			RelatedTransactionID: &outID,
			ConversionRate:       rate,
			ConvertedAmount:      converted,
		}
		for _, leg := range []*transaction.Transaction{out.Out, out.In} {
			leg.Normalize()
			if err := leg.Validate(); err != nil {
				return err
			}
			if err := txRepo.Create(ctx, leg); err != nil {
				return err
			}
		}
		s.commit(uow, effectOf(out.Out, nil), effectOf(out.In, nil))
		return nil
	})
	if err != nil {
		logger.Error("transfer failed", "error", err)
		return nil, err
	}
	logger.Info("transfer created",
		"transfer_out_id", out.Out.ID, "transfer_in_id", out.In.ID,
		"amount", out.Out.Amount.String(), "credited", out.In.Amount.String())
	return &out, nil
}

// DeleteTransfer soft-deletes both legs of the transfer containing id.
func (s *Service) DeleteTransfer(ctx context.Context, userID, id uuid.UUID) error {
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
		if !entry.Type.IsTransfer() {
			return domain.NewValidationError("id", "entry is not a transfer")
		}
		return s.deleteEntry(ctx, uow, entry)
	})
}

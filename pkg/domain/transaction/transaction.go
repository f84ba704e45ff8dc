// Package transaction defines ledger entries, their types and sign rules.
package transaction

import (
	"errors"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrTransactionNotFound is returned when an entry cannot be found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrImmutable is returned when editing an entry owned by a coordinator.
	ErrImmutable = errors.New("transaction is managed by a transfer or settlement")
)

// Type is the closed set of ledger entry kinds.
type Type string

// Entry types.
const (
	TypeIncome             Type = "income"
	TypeExpense            Type = "expense"
	TypeTransfer           Type = "transfer"
	TypeTransferIn         Type = "transfer_in"
	TypeTransferOut        Type = "transfer_out"
	TypeInitial            Type = "initial"
	TypeAdjustmentPositive Type = "adjustment_positive"
	TypeAdjustmentNegative Type = "adjustment_negative"
)

// Types lists every entry type. Every member must have a traits row.
var Types = []Type{
	TypeIncome, TypeExpense, TypeTransfer, TypeTransferIn, TypeTransferOut,
	TypeInitial, TypeAdjustmentPositive, TypeAdjustmentNegative,
}

type traits struct {
	positive        bool
	userCreatable   bool
	requireCategory bool
}

var typeTraits = map[Type]traits{
	TypeIncome:             {positive: true, userCreatable: true, requireCategory: true},
	TypeExpense:            {positive: false, userCreatable: true, requireCategory: true},
	TypeTransfer:           {positive: false, userCreatable: true},
	TypeTransferIn:         {positive: true},
	TypeTransferOut:        {positive: false},
	TypeInitial:            {positive: true},
	TypeAdjustmentPositive: {positive: true},
	TypeAdjustmentNegative: {positive: false},
}

// IsValid reports whether t is a known entry type.
func (t Type) IsValid() bool {
	_, ok := typeTraits[t]
	return ok
}

// IsPositive reports whether entries of this type increase the balance of the
// account they are posted to.
func (t Type) IsPositive() bool {
	return typeTraits[t].positive
}

// IsUserCreatable reports whether a user may create this type directly.
// The remaining types are produced only by coordinators.
func (t Type) IsUserCreatable() bool {
	return typeTraits[t].userCreatable
}

// RequiresCategory reports whether entries of this type must be categorized.
func (t Type) RequiresCategory() bool {
	return typeTraits[t].requireCategory
}

// IsTransfer reports whether t is one of the transfer leg types.
func (t Type) IsTransfer() bool {
	return t == TypeTransfer || t == TypeTransferIn || t == TypeTransferOut
}

// Sign returns +1 or -1.
func (t Type) Sign() int64 {
	if t.IsPositive() {
		return 1
	}
	return -1
}

// Origin records which component produced an entry.
type Origin string

// Entry origins.
const (
	OriginManual     Origin = "manual"
	OriginTransfer   Origin = "transfer"
	OriginSettlement Origin = "settlement"
	OriginSystem     Origin = "system"
)

// Transaction is one signed movement on one account.
//
// Amount is never negative; the sign comes from Type. RunningBalance and
// DestinationRunningBalance are derived and written only by the balance
// recalculator.
type Transaction struct {
	ID                        uuid.UUID
	UserID                    uuid.UUID
	AccountID                 uuid.UUID
	Type                      Type
	Origin                    Origin
	Amount                    decimal.Decimal
	TransactionDate           time.Time
	CategoryID                *uuid.UUID
	Description               string
	DestinationAccountID      *uuid.UUID
	RelatedTransactionID      *uuid.UUID
	ConversionRate            decimal.NullDecimal
	ConvertedAmount           decimal.NullDecimal
	RunningBalance            decimal.Decimal
	DestinationRunningBalance decimal.NullDecimal
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
	DeletedAt                 *time.Time
}

// NewID returns a time-ordered id. Entry ids break ties between entries on
// the same date, so they must sort in creation order.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// Signed returns the entry's effect on its own account.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type.IsPositive() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// IsSingleRowTransfer reports whether the row carries both legs of a transfer:
// a transfer with a destination account and no paired leg.
func (t *Transaction) IsSingleRowTransfer() bool {
	return t.Type == TypeTransfer && t.DestinationAccountID != nil && t.RelatedTransactionID == nil
}

// DestinationAmount is the amount credited to the destination of a transfer.
func (t *Transaction) DestinationAmount() decimal.Decimal {
	if t.ConvertedAmount.Valid {
		return t.ConvertedAmount.Decimal
	}
	return t.Amount
}

// SignedFor returns the entry's effect on accountID. Only single-row
// transfers affect an account other than their own.
func (t *Transaction) SignedFor(accountID uuid.UUID) decimal.Decimal {
	if t.AccountID == accountID {
		return t.Signed()
	}
	if t.IsSingleRowTransfer() && *t.DestinationAccountID == accountID {
		return t.DestinationAmount()
	}
	return decimal.Zero
}

// AccountIDs lists the accounts whose balance this entry affects.
func (t *Transaction) AccountIDs() []uuid.UUID {
	ids := []uuid.UUID{t.AccountID}
	if t.IsSingleRowTransfer() && *t.DestinationAccountID != t.AccountID {
		ids = append(ids, *t.DestinationAccountID)
	}
	return ids
}

// IsDeleted reports whether the entry is tombstoned.
func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Validate checks the structural rules every entry must satisfy.
func (t *Transaction) Validate() error {
	ve := &domain.ValidationError{}
	if !t.Type.IsValid() {
		ve.Add("type", "unknown transaction type")
	}
	if t.AccountID == uuid.Nil {
		ve.Add("account_id", "is required")
	}
	if t.Amount.IsNegative() {
		ve.Add("amount", "must not be negative")
	}
	if t.TransactionDate.IsZero() {
		ve.Add("transaction_date", "is required")
	}
	if t.Type.RequiresCategory() && t.CategoryID == nil && t.Origin != OriginSettlement {
		ve.Add("category_id", "is required for "+string(t.Type))
	}
	if t.Type == TypeTransfer {
		switch {
		case t.DestinationAccountID == nil:
			ve.Add("destination_account_id", "is required for transfer")
		case *t.DestinationAccountID == t.AccountID:
			ve.Add("destination_account_id", "must differ from the source account")
		}
	}
	if t.ConversionRate.Valid && !t.ConversionRate.Decimal.IsPositive() {
		ve.Add("conversion_rate", "must be positive")
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// ValidateUserCreate applies Validate plus the rules for entries created
// directly by a user.
func (t *Transaction) ValidateUserCreate() error {
	if !t.Type.IsUserCreatable() {
		return domain.NewValidationError("type", string(t.Type)+" cannot be created directly")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return domain.NewValidationError("amount", "must be positive")
	}
	return nil
}

// Normalize truncates the date to a calendar date.
func (t *Transaction) Normalize() {
	t.TransactionDate = common.DateOf(t.TransactionDate)
}

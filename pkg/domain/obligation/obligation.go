// Package obligation models payables, receivables, their payments and the
// recurring series that generate them.
//
// Payables ("I owe") and receivables ("owed to me") are structurally
// identical, so one type carries a Kind discriminator.
package obligation

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrObligationNotFound is returned when a payable/receivable cannot be found.
	ErrObligationNotFound = errors.New("obligation not found")
	// ErrSeriesNotFound is returned when a series cannot be found.
	ErrSeriesNotFound = errors.New("series not found")
	// ErrPaymentNotFound is returned when a payment cannot be found.
	ErrPaymentNotFound = errors.New("payment not found")
)

// Kind distinguishes payables from receivables.
type Kind string

// Obligation kinds.
const (
	KindPayable    Kind = "payable"
	KindReceivable Kind = "receivable"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindPayable || k == KindReceivable
}

// SettlementType is the ledger entry type that settles an obligation of this
// kind: paying a payable is an expense, collecting a receivable is income.
func (k Kind) SettlementType() transaction.Type {
	if k == KindReceivable {
		return transaction.TypeIncome
	}
	return transaction.TypeExpense
}

// Status is derived from AmountPaid and AmountTotal.
type Status string

// Obligation statuses.
const (
	StatusOpen    Status = "open"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// DeriveStatus computes the status for a paid amount against a total.
func DeriveStatus(paid, total decimal.Decimal) Status {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusOpen
	}
}

// Obligation is a payable or receivable.
//
// Invariants: AmountPaid equals the sum of the obligation's payments and
// Status equals DeriveStatus(AmountPaid, AmountTotal). Both are written only
// by the settlement unit, guarded by Version.
type Obligation struct {
	ID                  uuid.UUID
	Kind                Kind
	UserID              uuid.UUID
	ContactID           uuid.UUID
	Currency            money.Code
	SeriesID            *uuid.UUID
	Description         string
	AmountTotal         decimal.Decimal
	AmountPaid          decimal.Decimal
	Status              Status
	DueDate             time.Time
	OriginTransactionID *uuid.UUID
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Outstanding returns the unpaid remainder, never below zero.
func (o *Obligation) Outstanding() decimal.Decimal {
	rest := o.AmountTotal.Sub(o.AmountPaid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// WithPaid returns the paid amount and status after applying delta. A
// result below zero means the stored amount disagrees with the payments.
func (o *Obligation) WithPaid(delta decimal.Decimal) (decimal.Decimal, Status, error) {
	paid := o.AmountPaid.Add(delta)
	if paid.IsNegative() {
		return o.AmountPaid, o.Status, fmt.Errorf("%w: obligation %s amount_paid %s would become %s",
			domain.ErrConsistencyViolation, o.ID, o.AmountPaid, paid)
	}
	return paid, DeriveStatus(paid, o.AmountTotal), nil
}

// Validate checks the structural rules of an obligation.
func (o *Obligation) Validate() error {
	ve := &domain.ValidationError{}
	if !o.Kind.IsValid() {
		ve.Add("kind", "must be payable or receivable")
	}
	if o.UserID == uuid.Nil {
		ve.Add("user_id", "is required")
	}
	if !o.AmountTotal.IsPositive() {
		ve.Add("amount_total", "must be positive")
	}
	if o.DueDate.IsZero() {
		ve.Add("due_date", "is required")
	}
	if !o.Currency.IsValid() {
		ve.Add("currency", "invalid currency code")
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// Payment settles part of an obligation through a ledger entry.
type Payment struct {
	ID            uuid.UUID
	Kind          Kind
	ObligationID  uuid.UUID
	AccountID     uuid.UUID
	Amount        decimal.Decimal
	PaidAt        time.Time
	Note          string
	CategoryID    *uuid.UUID
	TransactionID *uuid.UUID
	CreatedAt     time.Time
}

// SumPayments adds the payment amounts.
func SumPayments(payments []*Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// CheckConservation returns ErrConsistencyViolation when the stored paid
// amount disagrees with the payments.
func CheckConservation(o *Obligation, payments []*Payment) error {
	sum := SumPayments(payments)
	if !sum.Equal(o.AmountPaid) {
		return fmt.Errorf("%w: obligation %s amount_paid %s, payments sum %s",
			domain.ErrConsistencyViolation, o.ID, o.AmountPaid, sum)
	}
	if want := DeriveStatus(o.AmountPaid, o.AmountTotal); want != o.Status {
		return fmt.Errorf("%w: obligation %s status %s, expected %s",
			domain.ErrConsistencyViolation, o.ID, o.Status, want)
	}
	return nil
}

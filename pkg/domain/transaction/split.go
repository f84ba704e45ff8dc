package transaction

import (
	"errors"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrSplitNotFound is returned when a split cannot be found.
var ErrSplitNotFound = errors.New("split not found")

// Split allocates part of a transaction's amount to a category.
type Split struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	CategoryID    *uuid.UUID
	Amount        decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// EffectiveCategory is the split's own category, falling back to the parent's.
func (s *Split) EffectiveCategory(parent *Transaction) *uuid.UUID {
	if s.CategoryID != nil {
		return s.CategoryID
	}
	return parent.CategoryID
}

// ValidateSplits checks that live splits do not allocate more than the parent amount.
func ValidateSplits(parent *Transaction, splits []*Split) error {
	total := decimal.Zero
	for _, s := range splits {
		if !s.Amount.IsPositive() {
			return domain.NewValidationError("amount", "split amount must be positive")
		}
		total = total.Add(s.Amount)
	}
	if total.GreaterThan(parent.Amount) {
		return domain.NewValidationError("amount", "splits exceed the transaction amount")
	}
	return nil
}

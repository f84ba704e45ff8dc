package repository

import (
	"context"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/budget"
	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access operations.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	Create(ctx context.Context, a *account.Account) error
	// Update writes name, type and active flag. It never touches balance.
	Update(ctx context.Context, a *account.Account) error
	// UpdateBalance is reserved for the balance recalculator.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TransactionRepository defines the interface for ledger entry data access.
// Reads exclude soft-deleted rows unless the method says otherwise.
type TransactionRepository interface {
	Create(ctx context.Context, tx *transaction.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	GetWithDeleted(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	// Update writes amount, date, category and description.
	Update(ctx context.Context, tx *transaction.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error

	// Timeline lists every live entry affecting accountID ordered by
	// (transaction_date, id): the account's own rows plus single-row
	// transfers whose destination is accountID.
	Timeline(ctx context.Context, accountID uuid.UUID) ([]*transaction.Transaction, error)
	// ListByUserBetween lists live entries of userID dated inside [from, to].
	ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time, types ...transaction.Type) ([]*transaction.Transaction, error)

	// UpdateRunningBalance and UpdateDestinationRunningBalance are reserved
	// for the balance recalculator.
	UpdateRunningBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	UpdateDestinationRunningBalance(ctx context.Context, id uuid.UUID, balance decimal.NullDecimal) error
}

// SplitRepository defines the interface for transaction split data access.
type SplitRepository interface {
	Create(ctx context.Context, s *transaction.Split) error
	Get(ctx context.Context, id uuid.UUID) (*transaction.Split, error)
	GetWithDeleted(ctx context.Context, id uuid.UUID) (*transaction.Split, error)
	Update(ctx context.Context, s *transaction.Split) error
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Split, error)
	ListByTransactions(ctx context.Context, transactionIDs []uuid.UUID) (map[uuid.UUID][]*transaction.Split, error)
}

// ObligationRepository defines the interface for payable/receivable data access.
type ObligationRepository interface {
	Create(ctx context.Context, o *obligation.Obligation) error
	Get(ctx context.Context, id uuid.UUID) (*obligation.Obligation, error)
	// UpdatePaid writes amount_paid and status if o.Version is still current
	// and bumps o.Version. A stale version yields domain.ErrConcurrentModification.
	UpdatePaid(ctx context.Context, o *obligation.Obligation, paid decimal.Decimal, status obligation.Status) error
	ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]*obligation.Obligation, error)
}

// PaymentRepository defines the interface for settlement payment data access.
type PaymentRepository interface {
	Create(ctx context.Context, p *obligation.Payment) error
	GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*obligation.Payment, error)
	// Delete removes the payment row permanently.
	Delete(ctx context.Context, id uuid.UUID) error
	ListByObligation(ctx context.Context, obligationID uuid.UUID) ([]*obligation.Payment, error)
}

// SeriesRepository defines the interface for obligation series data access.
type SeriesRepository interface {
	Create(ctx context.Context, s *obligation.Series) error
	Get(ctx context.Context, id uuid.UUID) (*obligation.Series, error)
	// ListDue lists recurring series whose next due date is on or before today.
	ListDue(ctx context.Context, today time.Time) ([]*obligation.Series, error)
	// Advance moves next_due_date if s.Version is still current and bumps
	// s.Version. A stale version yields domain.ErrConcurrentModification.
	Advance(ctx context.Context, s *obligation.Series, next time.Time) error
}

// BudgetPeriodRepository defines the interface for budget period data access.
type BudgetPeriodRepository interface {
	Create(ctx context.Context, p *budget.Period) error
	Get(ctx context.Context, id uuid.UUID) (*budget.Period, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*budget.Period, error)
	// ListContaining lists userID's periods whose range contains date.
	ListContaining(ctx context.Context, userID uuid.UUID, date time.Time) ([]*budget.Period, error)
}

// BudgetRepository defines the interface for budget data access.
type BudgetRepository interface {
	Create(ctx context.Context, b *budget.Budget) error
	Get(ctx context.Context, id uuid.UUID) (*budget.Budget, error)
	GetWithDeleted(ctx context.Context, id uuid.UUID) (*budget.Budget, error)
	Update(ctx context.Context, b *budget.Budget) error
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	ForceDelete(ctx context.Context, id uuid.UUID) error
	// FindForPeriod returns the live budget for (user, category, period).
	FindForPeriod(ctx context.Context, userID, categoryID, periodID uuid.UUID) (*budget.Budget, error)
	ListByPeriods(ctx context.Context, userID uuid.UUID, periodIDs []uuid.UUID) ([]*budget.Budget, error)
	// ListOneTimeCovering lists live one-time budgets whose range contains date.
	ListOneTimeCovering(ctx context.Context, userID uuid.UUID, date time.Time) ([]*budget.Budget, error)
}

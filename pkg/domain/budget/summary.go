package budget

import (
	"time"

	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is the cached spending view of one budget over one date range.
type Summary struct {
	BudgetID         uuid.UUID       `json:"budget_id"`
	PeriodID         *uuid.UUID      `json:"period_id,omitempty"`
	CategoryID       uuid.UUID       `json:"category_id"`
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	Budgeted         decimal.Decimal `json:"budgeted"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	Remaining        decimal.Decimal `json:"remaining"`
	PercentageUsed   decimal.Decimal `json:"percentage_used"`
	OverBudget       bool            `json:"over_budget"`
	TransactionCount int             `json:"transaction_count"`
}

// Spending is the expense total for one category.
type Spending struct {
	CategoryID       uuid.UUID       `json:"category_id"`
	Total            decimal.Decimal `json:"total"`
	TransactionCount int             `json:"transaction_count"`
}

// SpendingFor totals expense entries allocated to categoryID. Entries with
// live splits are allocated split by split; whatever the splits leave
// unallocated stays with the entry's own category.
func SpendingFor(categoryID uuid.UUID, entries []*transaction.Transaction, splits map[uuid.UUID][]*transaction.Split) Spending {
	out := Spending{CategoryID: categoryID, Total: decimal.Zero}
	for _, tx := range entries {
		if tx.Type != transaction.TypeExpense || tx.IsDeleted() {
			continue
		}
		amount := allocated(categoryID, tx, splits[tx.ID])
		if amount.IsZero() {
			continue
		}
		out.Total = out.Total.Add(amount)
		out.TransactionCount++
	}
	return out
}

func allocated(categoryID uuid.UUID, tx *transaction.Transaction, splits []*transaction.Split) decimal.Decimal {
	total := decimal.Zero
	rest := tx.Amount
	for _, s := range splits {
		if s.DeletedAt != nil {
			continue
		}
		rest = rest.Sub(s.Amount)
		if c := s.EffectiveCategory(tx); c != nil && *c == categoryID {
			total = total.Add(s.Amount)
		}
	}
	if rest.IsPositive() && tx.CategoryID != nil && *tx.CategoryID == categoryID {
		total = total.Add(rest)
	}
	return total
}

// Summarize builds the summary of b over [from, to] from its spending.
func Summarize(b *Budget, from, to time.Time, spent Spending) Summary {
	s := Summary{
		BudgetID:         b.ID,
		PeriodID:         b.PeriodID,
		CategoryID:       b.CategoryID,
		From:             from,
		To:               to,
		Budgeted:         b.Amount,
		TotalSpent:       spent.Total,
		Remaining:        b.Amount.Sub(spent.Total),
		PercentageUsed:   decimal.Zero,
		OverBudget:       spent.Total.GreaterThan(b.Amount),
		TransactionCount: spent.TransactionCount,
	}
	if b.Amount.IsPositive() {
		s.PercentageUsed = spent.Total.Div(b.Amount).Mul(hundred).Round(2)
	}
	return s
}

// Package budget holds budget periods, budgets and the spending summary
// derived from ledger entries.
package budget

import (
	"errors"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrPeriodNotFound is returned when a budget period cannot be found.
	ErrPeriodNotFound = errors.New("budget period not found")
	// ErrBudgetNotFound is returned when a budget cannot be found.
	ErrBudgetNotFound = errors.New("budget not found")
)

// PeriodType classifies a budget period.
type PeriodType string

// Period types.
const (
	PeriodMonthly PeriodType = "monthly"
	PeriodWeekly  PeriodType = "weekly"
	PeriodYearly  PeriodType = "yearly"
	PeriodCustom  PeriodType = "custom"
)

// IsValid reports whether p is a known period type.
func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodMonthly, PeriodWeekly, PeriodYearly, PeriodCustom:
		return true
	}
	return false
}

// Period is a named date range budgets are tracked against.
type Period struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Type      PeriodType
	StartDate time.Time
	EndDate   time.Time
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contains reports whether d falls inside the period, bounds included.
func (p *Period) Contains(d time.Time) bool {
	return common.Between(d, p.StartDate, p.EndDate)
}

// Validate checks the period's fields.
func (p *Period) Validate() error {
	ve := &domain.ValidationError{}
	if p.UserID == uuid.Nil {
		ve.Add("user_id", "is required")
	}
	if p.Name == "" {
		ve.Add("name", "is required")
	}
	if !p.Type.IsValid() {
		ve.Add("type", "must be monthly, weekly, yearly or custom")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		ve.Add("start_date", "start and end dates are required")
	} else if p.EndDate.Before(p.StartDate) {
		ve.Add("end_date", "must not be before start_date")
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// Kind tells period-bound budgets from one-time budgets.
type Kind string

// Budget kinds.
const (
	KindPeriod  Kind = "period"
	KindOneTime Kind = "one_time"
)

// Budget caps spending in one category.
type Budget struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CategoryID uuid.UUID
	Kind       Kind
	PeriodID   *uuid.UUID
	Amount     decimal.Decimal
	StartDate  *time.Time
	EndDate    *time.Time
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Range returns the date range the budget covers. Period-bound budgets use
// their period; one-time budgets use their explicit dates.
func (b *Budget) Range(period *Period) (from, to time.Time, ok bool) {
	if b.Kind == KindOneTime {
		if b.StartDate == nil || b.EndDate == nil {
			return time.Time{}, time.Time{}, false
		}
		return *b.StartDate, *b.EndDate, true
	}
	if period == nil {
		return time.Time{}, time.Time{}, false
	}
	return period.StartDate, period.EndDate, true
}

// Validate checks the budget's fields.
func (b *Budget) Validate() error {
	ve := &domain.ValidationError{}
	if b.UserID == uuid.Nil {
		ve.Add("user_id", "is required")
	}
	if b.CategoryID == uuid.Nil {
		ve.Add("category_id", "is required")
	}
	if !b.Amount.IsPositive() {
		ve.Add("amount", "must be positive")
	}
	switch b.Kind {
	case KindPeriod:
		if b.PeriodID == nil {
			ve.Add("period_id", "is required for period budgets")
		}
	case KindOneTime:
		if b.PeriodID != nil {
			ve.Add("period_id", "must be empty for one-time budgets")
		}
		if b.StartDate == nil || b.EndDate == nil {
			ve.Add("start_date", "one-time budgets need start and end dates")
		} else if b.EndDate.Before(*b.StartDate) {
			ve.Add("end_date", "must not be before start_date")
		}
	default:
		ve.Add("type", "must be period or one_time")
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

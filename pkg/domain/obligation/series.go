package obligation

import (
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FrequencyMonthly is the only supported recurrence frequency.
const FrequencyMonthly = "monthly"

// RecurrenceRule describes when a series falls due.
type RecurrenceRule struct {
	Frequency  string `json:"frequency,omitempty"`
	DayOfMonth *int   `json:"day_of_month,omitempty"`
}

// Validate rejects malformed rules.
func (r RecurrenceRule) Validate() error {
	if r.Frequency != "" && r.Frequency != FrequencyMonthly {
		return domain.NewValidationError("recurrence_rule.frequency", "only monthly recurrence is supported")
	}
	if r.DayOfMonth != nil && (*r.DayOfMonth < 1 || *r.DayOfMonth > 31) {
		return domain.NewValidationError("recurrence_rule.day_of_month", "must be between 1 and 31")
	}
	return nil
}

// Next returns the due date following cursor. Without an explicit day of
// month the cursor's own day is reused.
func (r RecurrenceRule) Next(cursor time.Time) time.Time {
	day := cursor.Day()
	if r.DayOfMonth != nil {
		day = *r.DayOfMonth
	}
	return common.AddMonthClamped(cursor, day)
}

// Series is a template that generates obligation occurrences.
type Series struct {
	ID             uuid.UUID
	Kind           Kind
	UserID         uuid.UUID
	ContactID      uuid.UUID
	Currency       money.Code
	Name           string
	DefaultAmount  decimal.Decimal
	IsRecurring    bool
	RecurrenceRule RecurrenceRule
	NextDueDate    *time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsDue reports whether the series has an occurrence due on or before today.
func (s *Series) IsDue(today time.Time) bool {
	return s.IsRecurring && s.NextDueDate != nil && !s.NextDueDate.After(common.DateOf(today))
}

// Occurrence builds the obligation for the given due date.
func (s *Series) Occurrence(due time.Time) *Obligation {
	id := s.ID
	return &Obligation{
		ID:          uuid.Must(uuid.NewV7()),
		Kind:        s.Kind,
		UserID:      s.UserID,
		ContactID:   s.ContactID,
		Currency:    s.Currency,
		SeriesID:    &id,
		Description: s.Name,
		AmountTotal: s.DefaultAmount,
		AmountPaid:  decimal.Zero,
		Status:      StatusOpen,
		DueDate:     common.DateOf(due),
	}
}

// Validate checks the structural rules of a series.
func (s *Series) Validate() error {
	if err := s.RecurrenceRule.Validate(); err != nil {
		return err
	}
	ve := &domain.ValidationError{}
	if !s.Kind.IsValid() {
		ve.Add("kind", "must be payable or receivable")
	}
	if s.UserID == uuid.Nil {
		ve.Add("user_id", "is required")
	}
	if !s.DefaultAmount.IsPositive() {
		ve.Add("default_amount", "must be positive")
	}
	if s.IsRecurring && s.NextDueDate == nil {
		ve.Add("next_due_date", "is required for recurring series")
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

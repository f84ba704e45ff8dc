package dto

import (
	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationCreate is the payload for a one-off payable or receivable.
type ObligationCreate struct {
	Kind        string `json:"kind" validate:"required,oneof=payable receivable"`
	ContactID   string `json:"contact_id" validate:"required,uuid"`
	Currency    string `json:"currency" validate:"required,currency"`
	Description string `json:"description" validate:"max=500"`
	Amount      string `json:"amount" validate:"required,amount"`
	DueDate     string `json:"due_date" validate:"required,date"`
}

// Obligation converts the payload into an open obligation owned by userID.
func (r ObligationCreate) Obligation(userID uuid.UUID) (*obligation.Obligation, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	contactID, err := parseUUID("contact_id", r.ContactID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return nil, err
	}
	due, err := parseDate("due_date", r.DueDate)
	if err != nil {
		return nil, err
	}
	return &obligation.Obligation{
		Kind:        obligation.Kind(r.Kind),
		UserID:      userID,
		ContactID:   contactID,
		Currency:    money.Code(r.Currency),
		Description: r.Description,
		AmountTotal: amount,
		AmountPaid:  decimal.Zero,
		Status:      obligation.StatusOpen,
		DueDate:     due,
	}, nil
}

// SeriesCreate is the payload for a recurring payable or receivable.
type SeriesCreate struct {
	Kind          string `json:"kind" validate:"required,oneof=payable receivable"`
	ContactID     string `json:"contact_id" validate:"required,uuid"`
	Currency      string `json:"currency" validate:"required,currency"`
	Name          string `json:"name" validate:"required,max=100"`
	DefaultAmount string `json:"default_amount" validate:"required,amount"`
	DayOfMonth    *int   `json:"day_of_month" validate:"omitempty,min=1,max=31"`
	NextDueDate   string `json:"next_due_date" validate:"required,date"`
}

// Series converts the payload into a monthly recurring series owned by userID.
func (r SeriesCreate) Series(userID uuid.UUID) (*obligation.Series, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	contactID, err := parseUUID("contact_id", r.ContactID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("default_amount", r.DefaultAmount)
	if err != nil {
		return nil, err
	}
	next, err := parseDate("next_due_date", r.NextDueDate)
	if err != nil {
		return nil, err
	}
	return &obligation.Series{
		Kind:          obligation.Kind(r.Kind),
		UserID:        userID,
		ContactID:     contactID,
		Currency:      money.Code(r.Currency),
		Name:          r.Name,
		DefaultAmount: amount,
		IsRecurring:   true,
		RecurrenceRule: obligation.RecurrenceRule{
			Frequency:  obligation.FrequencyMonthly,
			DayOfMonth: r.DayOfMonth,
		},
		NextDueDate: &next,
	}, nil
}

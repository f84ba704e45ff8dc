package dto

import (
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/money"
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountOpen is the payload for opening an account.
type AccountOpen struct {
	Name           string `json:"name" validate:"required,max=100"`
	Currency       string `json:"currency" validate:"required,currency"`
	Type           string `json:"type" validate:"omitempty,oneof=savings checking cash bank credit_card general investment debit_card receivable_control payable_control"`
	InitialBalance string `json:"initial_balance" validate:"omitempty,decimal"`
	OpenedAt       string `json:"opened_at" validate:"omitempty,date"`
}

// Request converts the payload into an account open request for userID.
func (r AccountOpen) Request(userID uuid.UUID) (accountsvc.OpenRequest, error) {
	if err := Validate(r); err != nil {
		return accountsvc.OpenRequest{}, err
	}
	initial := decimal.Zero
	if r.InitialBalance != "" {
		var err error
		if initial, err = parseAmount("initial_balance", r.InitialBalance); err != nil {
			return accountsvc.OpenRequest{}, err
		}
	}
	opened, err := optionalDate("opened_at", r.OpenedAt)
	if err != nil {
		return accountsvc.OpenRequest{}, err
	}
	currency, err := money.ParseCode(r.Currency)
	if err != nil {
		return accountsvc.OpenRequest{}, domain.NewValidationError("currency", "must be a 3-letter currency code")
	}
	return accountsvc.OpenRequest{
		UserID:         userID,
		Name:           r.Name,
		Currency:       currency,
		Type:           account.Type(r.Type),
		InitialBalance: initial,
		OpenedAt:       opened,
	}, nil
}

// AccountUpdate is the payload for editing an account's descriptive fields.
type AccountUpdate struct {
	Name   string `json:"name" validate:"required,max=100"`
	Type   string `json:"type" validate:"required,oneof=savings checking cash bank credit_card general investment debit_card receivable_control payable_control"`
	Active bool   `json:"active"`
}

// Changes converts the payload into account changes.
func (r AccountUpdate) Changes() (accountsvc.Changes, error) {
	if err := Validate(r); err != nil {
		return accountsvc.Changes{}, err
	}
	return accountsvc.Changes{Name: r.Name, Type: account.Type(r.Type), Active: r.Active}, nil
}

// AccountAdjust is the payload for bringing an account to a target balance.
type AccountAdjust struct {
	Target string `json:"target" validate:"required,decimal"`
	Date   string `json:"date" validate:"omitempty,date"`
}

// Parse returns the target balance and the adjustment date. The date is zero
// when omitted.
func (r AccountAdjust) Parse() (decimal.Decimal, time.Time, error) {
	if err := Validate(r); err != nil {
		return decimal.Zero, time.Time{}, err
	}
	target, err := parseAmount("target", r.Target)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	date, err := optionalDate("date", r.Date)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	return target, date, nil
}

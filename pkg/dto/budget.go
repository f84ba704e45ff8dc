package dto

import (
	"github.com/amirasaad/ledger/pkg/domain/budget"
	"github.com/google/uuid"
)

// PeriodCreate is the payload for a named budget period.
type PeriodCreate struct {
	Name      string `json:"name" validate:"required,max=100"`
	Type      string `json:"type" validate:"required,oneof=monthly weekly yearly custom"`
	StartDate string `json:"start_date" validate:"required,date"`
	EndDate   string `json:"end_date" validate:"required,date"`
}

// Period converts the payload into a budget.Period owned by userID.
func (r PeriodCreate) Period(userID uuid.UUID) (*budget.Period, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return nil, err
	}
	return &budget.Period{
		UserID:    userID,
		Name:      r.Name,
		Type:      budget.PeriodType(r.Type),
		StartDate: start,
		EndDate:   end,
		Active:    true,
	}, nil
}

// BudgetCreate is the payload for a spending limit on one category, either
// within a period or over an explicit one-time range.
type BudgetCreate struct {
	CategoryID string `json:"category_id" validate:"required,uuid"`
	Type       string `json:"type" validate:"required,oneof=period one_time"`
	PeriodID   string `json:"period_id" validate:"omitempty,uuid"`
	Amount     string `json:"amount" validate:"required,amount"`
	StartDate  string `json:"start_date" validate:"omitempty,date"`
	EndDate    string `json:"end_date" validate:"omitempty,date"`
}

// Budget converts the payload into a budget.Budget owned by userID.
func (r BudgetCreate) Budget(userID uuid.UUID) (*budget.Budget, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	categoryID, err := parseUUID("category_id", r.CategoryID)
	if err != nil {
		return nil, err
	}
	periodID, err := optionalUUID("period_id", r.PeriodID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return nil, err
	}
	b := &budget.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Kind:       budget.Kind(r.Type),
		PeriodID:   periodID,
		Amount:     amount,
		Active:     true,
	}
	if r.StartDate != "" {
		start, err := parseDate("start_date", r.StartDate)
		if err != nil {
			return nil, err
		}
		b.StartDate = &start
	}
	if r.EndDate != "" {
		end, err := parseDate("end_date", r.EndDate)
		if err != nil {
			return nil, err
		}
		b.EndDate = &end
	}
	return b, nil
}

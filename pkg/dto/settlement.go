package dto

import (
	"github.com/amirasaad/ledger/pkg/service/ledger"
)

// SettlementCreate is the payload for recording a payment against a payable
// or receivable.
type SettlementCreate struct {
	ObligationID string `json:"obligation_id" validate:"required,uuid"`
	AccountID    string `json:"account_id" validate:"required,uuid"`
	Amount       string `json:"amount" validate:"required,amount"`
	Date         string `json:"date" validate:"required,date"`
	Note         string `json:"note" validate:"max=500"`
	CategoryID   string `json:"category_id" validate:"omitempty,uuid"`
}

// Request converts the payload into a ledger.SettleRequest.
func (r SettlementCreate) Request() (ledger.SettleRequest, error) {
	if err := Validate(r); err != nil {
		return ledger.SettleRequest{}, err
	}
	obligationID, err := parseUUID("obligation_id", r.ObligationID)
	if err != nil {
		return ledger.SettleRequest{}, err
	}
	accountID, err := parseUUID("account_id", r.AccountID)
	if err != nil {
		return ledger.SettleRequest{}, err
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return ledger.SettleRequest{}, err
	}
	date, err := parseDate("date", r.Date)
	if err != nil {
		return ledger.SettleRequest{}, err
	}
	categoryID, err := optionalUUID("category_id", r.CategoryID)
	if err != nil {
		return ledger.SettleRequest{}, err
	}
	return ledger.SettleRequest{
		ObligationID: obligationID,
		AccountID:    accountID,
		Amount:       amount,
		Date:         date,
		Note:         r.Note,
		CategoryID:   categoryID,
	}, nil
}

package dto

import (
	"github.com/amirasaad/ledger/pkg/service/ledger"
)

// TransferCreate is the payload for moving money between two accounts.
type TransferCreate struct {
	SourceAccountID      string `json:"source_account_id" validate:"required,uuid"`
	DestinationAccountID string `json:"destination_account_id" validate:"required,uuid,nefield=SourceAccountID"`
	Amount               string `json:"amount" validate:"required,amount"`
	Date                 string `json:"date" validate:"required,date"`
	ConversionRate       string `json:"conversion_rate" validate:"omitempty,rate"`
	Description          string `json:"description" validate:"max=500"`
}

// Request converts the payload into a ledger.TransferRequest.
func (r TransferCreate) Request() (ledger.TransferRequest, error) {
	if err := Validate(r); err != nil {
		return ledger.TransferRequest{}, err
	}
	source, err := parseUUID("source_account_id", r.SourceAccountID)
	if err != nil {
		return ledger.TransferRequest{}, err
	}
	destination, err := parseUUID("destination_account_id", r.DestinationAccountID)
	if err != nil {
		return ledger.TransferRequest{}, err
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return ledger.TransferRequest{}, err
	}
	date, err := parseDate("date", r.Date)
	if err != nil {
		return ledger.TransferRequest{}, err
	}
	rate, err := optionalAmount("conversion_rate", r.ConversionRate)
	if err != nil {
		return ledger.TransferRequest{}, err
	}
	return ledger.TransferRequest{
		SourceAccountID:      source,
		DestinationAccountID: destination,
		Amount:               amount,
		Date:                 date,
		ConversionRate:       rate,
		Description:          r.Description,
	}, nil
}

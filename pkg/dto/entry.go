package dto

import (
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/service/ledger"
	"github.com/google/uuid"
)

// EntryCreate is the payload for recording a manual ledger entry. A transfer
// type creates the paired legs.
type EntryCreate struct {
	AccountID            string `json:"account_id" validate:"required,uuid"`
	Type                 string `json:"type" validate:"required,oneof=income expense transfer"`
	Amount               string `json:"amount" validate:"required,amount"`
	Date                 string `json:"date" validate:"required,date"`
	CategoryID           string `json:"category_id" validate:"omitempty,uuid"`
	Description          string `json:"description" validate:"max=500"`
	DestinationAccountID string `json:"destination_account_id" validate:"omitempty,uuid,nefield=AccountID"`
	ConversionRate       string `json:"conversion_rate" validate:"omitempty,rate"`
}

// Transaction converts the payload into the entry passed to ledger.Create.
func (r EntryCreate) Transaction(userID uuid.UUID) (transaction.Transaction, error) {
	if err := Validate(r); err != nil {
		return transaction.Transaction{}, err
	}
	accountID, err := parseUUID("account_id", r.AccountID)
	if err != nil {
		return transaction.Transaction{}, err
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return transaction.Transaction{}, err
	}
	date, err := parseDate("date", r.Date)
	if err != nil {
		return transaction.Transaction{}, err
	}
	categoryID, err := optionalUUID("category_id", r.CategoryID)
	if err != nil {
		return transaction.Transaction{}, err
	}
	destinationID, err := optionalUUID("destination_account_id", r.DestinationAccountID)
	if err != nil {
		return transaction.Transaction{}, err
	}
	rate, err := optionalAmount("conversion_rate", r.ConversionRate)
	if err != nil {
		return transaction.Transaction{}, err
	}
	return transaction.Transaction{
		UserID:               userID,
		AccountID:            accountID,
		Type:                 transaction.Type(r.Type),
		Amount:               amount,
		TransactionDate:      date,
		CategoryID:           categoryID,
		Description:          r.Description,
		DestinationAccountID: destinationID,
		ConversionRate:       rate,
	}, nil
}

// EntryUpdate is the payload for editing a manual entry.
type EntryUpdate struct {
	Amount      string `json:"amount" validate:"required,amount"`
	Date        string `json:"date" validate:"required,date"`
	CategoryID  string `json:"category_id" validate:"omitempty,uuid"`
	Description string `json:"description" validate:"max=500"`
}

// Changes converts the payload into ledger.EntryChanges.
func (r EntryUpdate) Changes() (ledger.EntryChanges, error) {
	if err := Validate(r); err != nil {
		return ledger.EntryChanges{}, err
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return ledger.EntryChanges{}, err
	}
	date, err := parseDate("date", r.Date)
	if err != nil {
		return ledger.EntryChanges{}, err
	}
	categoryID, err := optionalUUID("category_id", r.CategoryID)
	if err != nil {
		return ledger.EntryChanges{}, err
	}
	return ledger.EntryChanges{
		Amount:          amount,
		TransactionDate: date,
		CategoryID:      categoryID,
		Description:     r.Description,
	}, nil
}

// SplitCreate allocates part of an entry to a category.
type SplitCreate struct {
	TransactionID string `json:"transaction_id" validate:"required,uuid"`
	CategoryID    string `json:"category_id" validate:"omitempty,uuid"`
	Amount        string `json:"amount" validate:"required,amount"`
}

// Split converts the payload into a transaction.Split.
func (r SplitCreate) Split() (*transaction.Split, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	txID, err := parseUUID("transaction_id", r.TransactionID)
	if err != nil {
		return nil, err
	}
	categoryID, err := optionalUUID("category_id", r.CategoryID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return nil, err
	}
	return &transaction.Split{TransactionID: txID, CategoryID: categoryID, Amount: amount}, nil
}

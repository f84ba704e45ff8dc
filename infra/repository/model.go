package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account represents an account record in the database.
type Account struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name      string          `gorm:"size:120;not null"`
	Currency  string          `gorm:"type:varchar(3);not null"`
	Type      string          `gorm:"type:varchar(32);not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Active    bool            `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string { return "accounts" }

// Transaction represents a persisted ledger entry.
type Transaction struct {
	ID                        uuid.UUID           `gorm:"type:uuid;primaryKey;index:idx_transactions_account_order,priority:3"`
	UserID                    uuid.UUID           `gorm:"type:uuid;index;not null"`
	AccountID                 uuid.UUID           `gorm:"type:uuid;not null;index:idx_transactions_account_order,priority:1"`
	Type                      string              `gorm:"type:varchar(32);not null"`
	Origin                    string              `gorm:"type:varchar(16);not null"`
	Amount                    decimal.Decimal     `gorm:"type:numeric(20,4);not null"`
	TransactionDate           time.Time           `gorm:"type:date;not null;index:idx_transactions_account_order,priority:2"`
	CategoryID                *uuid.UUID          `gorm:"type:uuid;index"`
	Description               string              `gorm:"size:255"`
	DestinationAccountID      *uuid.UUID          `gorm:"type:uuid;index"`
	RelatedTransactionID      *uuid.UUID          `gorm:"type:uuid;index"`
	ConversionRate            decimal.NullDecimal `gorm:"type:numeric(20,8)"`
	ConvertedAmount           decimal.NullDecimal `gorm:"type:numeric(20,4)"`
	RunningBalance            decimal.Decimal     `gorm:"type:numeric(20,4);not null"`
	DestinationRunningBalance decimal.NullDecimal `gorm:"type:numeric(20,4)"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
	DeletedAt                 gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string { return "transactions" }

// TransactionSplit represents a persisted split of a ledger entry.
type TransactionSplit struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for the TransactionSplit model.
func (TransactionSplit) TableName() string { return "transaction_splits" }

// Obligation represents a persisted payable or receivable.
type Obligation struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Kind                string          `gorm:"type:varchar(16);not null;index"`
	UserID              uuid.UUID       `gorm:"type:uuid;index;not null"`
	ContactID           uuid.UUID       `gorm:"type:uuid"`
	Currency            string          `gorm:"type:varchar(3);not null"`
	SeriesID            *uuid.UUID      `gorm:"type:uuid;index"`
	Description         string          `gorm:"size:255"`
	AmountTotal         decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	AmountPaid          decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Status              string          `gorm:"type:varchar(16);not null"`
	DueDate             time.Time       `gorm:"type:date;not null"`
	OriginTransactionID *uuid.UUID      `gorm:"type:uuid"`
	Version             int64           `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName specifies the table name for the Obligation model.
func (Obligation) TableName() string { return "obligations" }

// ObligationPayment represents a persisted settlement payment.
type ObligationPayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Kind          string          `gorm:"type:varchar(16);not null"`
	ObligationID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	PaidAt        time.Time       `gorm:"type:date;not null"`
	Note          string          `gorm:"size:255"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid"`
	TransactionID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	CreatedAt     time.Time
}

// TableName specifies the table name for the ObligationPayment model.
func (ObligationPayment) TableName() string { return "obligation_payments" }

// ObligationSeries represents a persisted recurring obligation template.
type ObligationSeries struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Kind           string          `gorm:"type:varchar(16);not null"`
	UserID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	ContactID      uuid.UUID       `gorm:"type:uuid"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	Name           string          `gorm:"size:120;not null"`
	DefaultAmount  decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	IsRecurring    bool            `gorm:"not null"`
	RecurrenceRule RuleColumn      `gorm:"type:text"`
	NextDueDate    *time.Time      `gorm:"type:date;index"`
	Version        int64           `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for the ObligationSeries model.
func (ObligationSeries) TableName() string { return "obligation_series" }

// BudgetPeriod represents a persisted budget period.
type BudgetPeriod struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_budget_periods_user_name"`
	Name      string    `gorm:"size:120;not null;uniqueIndex:idx_budget_periods_user_name"`
	Type      string    `gorm:"type:varchar(16);not null"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the BudgetPeriod model.
func (BudgetPeriod) TableName() string { return "budget_periods" }

// Budget represents a persisted budget.
type Budget struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null"`
	Kind       string          `gorm:"column:type;type:varchar(16);not null"`
	PeriodID   *uuid.UUID      `gorm:"type:uuid;index"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	StartDate  *time.Time      `gorm:"type:date"`
	EndDate    *time.Time      `gorm:"type:date"`
	Active     bool            `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for the Budget model.
func (Budget) TableName() string { return "budgets" }

// RuleColumn stores a recurrence rule as JSON.
type RuleColumn obligation.RecurrenceRule

// Value implements driver.Valuer.
func (r RuleColumn) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (r *RuleColumn) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = RuleColumn{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("recurrence rule: unsupported column type %T", src)
	}
	if len(raw) == 0 {
		*r = RuleColumn{}
		return nil
	}
	return json.Unmarshal(raw, r)
}

// Models lists every persisted model, in dependency order.
func Models() []any {
	return []any{
		&Account{}, &Transaction{}, &TransactionSplit{},
		&ObligationSeries{}, &Obligation{}, &ObligationPayment{},
		&BudgetPeriod{}, &Budget{},
	}
}

package account

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/ledger/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNotOwner is returned when a user acts on an account they do not own.
	ErrNotOwner = errors.New("not owner")
	// ErrInactive is returned when posting to a deactivated account.
	ErrInactive = errors.New("account is inactive")
	// ErrInvalidType is returned for an unknown account type.
	ErrInvalidType = errors.New("invalid account type")
)

// Type classifies an account.
type Type string

// Account types.
const (
	TypeSavings           Type = "savings"
	TypeChecking          Type = "checking"
	TypeCash              Type = "cash"
	TypeBank              Type = "bank"
	TypeCreditCard        Type = "credit_card"
	TypeGeneral           Type = "general"
	TypeInvestment        Type = "investment"
	TypeDebitCard         Type = "debit_card"
	TypeReceivableControl Type = "receivable_control"
	TypePayableControl    Type = "payable_control"
)

// Types lists every account type.
var Types = []Type{
	TypeSavings, TypeChecking, TypeCash, TypeBank, TypeCreditCard,
	TypeGeneral, TypeInvestment, TypeDebitCard, TypeReceivableControl, TypePayableControl,
}

// IsValid reports whether t is a known account type.
func (t Type) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Account is a user's ledger account.
//
// Invariants:
//   - Balance equals the signed sum of the account's live transactions. It is
//     written only by the balance recalculator; everything else treats it as
//     read-only.
//   - Currency is a valid ISO 4217 shaped code.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Currency  money.Code
	Type      Type
	Balance   decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id        uuid.UUID
	userID    uuid.UUID
	name      string
	currency  money.Code
	typ       Type
	balance   decimal.Decimal
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

// New creates a new Builder with a fresh time-ordered id, USD and a general account type.
func New() *Builder {
	return &Builder{
		id:        uuid.Must(uuid.NewV7()),
		currency:  money.USD,
		typ:       TypeGeneral,
		active:    true,
		createdAt: time.Now(),
	}
}

// WithID sets the ID for the account being built.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owner. This is a mandatory field.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

// WithName sets the display name.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithCurrency sets the account currency.
func (b *Builder) WithCurrency(code money.Code) *Builder {
	b.currency = code
	return b
}

// WithType sets the account type.
func (b *Builder) WithType(t Type) *Builder {
	b.typ = t
	return b
}

// WithBalance sets the stored balance. Only used for hydration and tests.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

// WithActive sets the active flag.
func (b *Builder) WithActive(active bool) *Builder {
	b.active = active
	return b
}

// WithCreatedAt sets the creation timestamp.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the invariants and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if !b.currency.IsValid() {
		return nil, fmt.Errorf("%w: %q", money.ErrInvalidCurrency, b.currency)
	}
	if !b.typ.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, b.typ)
	}
	if b.userID == uuid.Nil {
		return nil, errors.New("userID is required")
	}
	return &Account{
		ID:        b.id,
		UserID:    b.userID,
		Name:      b.name,
		Currency:  b.currency,
		Type:      b.typ,
		Balance:   b.balance,
		Active:    b.active,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// CheckOwner returns ErrNotOwner unless userID owns the account.
func (a *Account) CheckOwner(userID uuid.UUID) error {
	if a.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

// CheckPostable verifies the account can receive a new entry from userID.
func (a *Account) CheckPostable(userID uuid.UUID) error {
	if err := a.CheckOwner(userID); err != nil {
		return err
	}
	if !a.Active {
		return ErrInactive
	}
	return nil
}

// Package money provides fixed-precision monetary values.
//
// Amounts are decimal values stored with Scale fractional digits. Currency
// metadata (display symbols, minor units) is owned elsewhere; this package only
// carries the code so arithmetic can refuse to mix currencies.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits amounts are persisted with.
const Scale int32 = 4

// Zero is the zero amount.
var Zero = decimal.Zero

// Round rounds an amount to the storage scale.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Parse parses a decimal string into an amount rounded to the storage scale.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Round(d), nil
}

// MustParse is Parse for constants and tests. It panics on malformed input.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Convert applies a conversion rate to an amount and rounds to the storage scale.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(rate))
}

// Sum adds amounts together.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Money represents an amount in a specific currency.
type Money struct {
	amount   decimal.Decimal
	currency Code
}

// New creates a Money value. The amount is rounded to the storage scale.
func New(amount decimal.Decimal, currency Code) (Money, error) {
	if !currency.IsValid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return Money{amount: Round(amount), currency: currency}, nil
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() Code { return m.currency }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsSameCurrency reports whether both values share a currency.
func (m Money) IsSameCurrency(other Money) bool { return m.currency == other.currency }

// Add returns m+other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrMismatchedCurrencies
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m-other. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrMismatchedCurrencies
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Negate returns -m.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Equals reports whether both values have the same currency and amount.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats the value as "<amount> <code>".
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}

// MarshalJSON implements json.Marshaler interface.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"amount":   m.amount.String(),
		"currency": m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (m *Money) UnmarshalJSON(data []byte) error {
	var aux struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v, err := New(aux.Amount, Code(aux.Currency))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

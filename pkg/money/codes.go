package money

import (
	"fmt"
	"strings"
)

// Code is an ISO 4217 style currency code. The ledger stores it verbatim and
// never looks it up: display metadata belongs to the caller.
type Code string

// Codes used across tests and fixtures.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
)

// ParseCode trims and upper-cases s and checks its shape.
func ParseCode(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	return c, nil
}

// IsValid reports whether c is three uppercase ASCII letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

func (c Code) String() string { return string(c) }

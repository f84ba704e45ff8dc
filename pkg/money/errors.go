package money

import "errors"

// Common money package errors
var (
	// ErrMismatchedCurrencies is returned when performing operations on money with
	// different currencies
	ErrMismatchedCurrencies = errors.New("mismatched currencies")

	// ErrInvalidCurrency is returned for a malformed currency code.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrInvalidAmount is returned when an amount string cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")
)

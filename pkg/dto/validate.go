// Package dto holds request payloads for the ledger operations. Each payload
// validates itself with go-playground/validator and converts into the input
// type of the matching service call. Validation failures surface as
// domain.ValidationError keyed by the payload's JSON field names.
package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	custom := map[string]validator.Func{
		"amount":   isPositiveDecimal,
		"decimal":  isDecimal,
		"rate":     isRate,
		"date":     isDate,
		"currency": isCurrency,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("dto: register %s: %v", tag, err))
		}
	}
	return v
}

func isDecimal(fl validator.FieldLevel) bool {
	_, err := money.Parse(fl.Field().String())
	return err == nil
}

func isPositiveDecimal(fl validator.FieldLevel) bool {
	d, err := money.Parse(fl.Field().String())
	return err == nil && d.IsPositive()
}

func isRate(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

func isDate(fl validator.FieldLevel) bool {
	_, err := common.ParseDate(fl.Field().String())
	return err == nil
}

func isCurrency(fl validator.FieldLevel) bool {
	return money.Code(fl.Field().String()).IsValid()
}

// Validate checks a request payload and maps validator failures onto a
// domain.ValidationError.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a UUID"
	case "amount":
		return "must be a positive decimal amount"
	case "decimal":
		return "must be a decimal amount"
	case "rate":
		return "must be a positive decimal rate"
	case "date":
		return "must be a date in YYYY-MM-DD form"
	case "currency":
		return "must be a three letter ISO 4217 code"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return "is invalid"
	}
}

// The parse helpers below run after Validate, so a failure means the payload
// bypassed validation.

func parseUUID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(field, "must be a UUID")
	}
	return id, nil
}

func optionalUUID(field, s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := parseUUID(field, s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := money.Parse(s)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, "must be a decimal amount")
	}
	return d, nil
}

func optionalAmount(field, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, domain.NewValidationError(field, "must be a decimal amount")
	}
	return decimal.NewNullDecimal(d), nil
}

func parseDate(field, s string) (time.Time, error) {
	d, err := common.ParseDate(s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be a date in YYYY-MM-DD form")
	}
	return d, nil
}

func optionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDate(field, s)
}

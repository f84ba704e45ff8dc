package repository

import (
	"errors"
	"fmt"

	"github.com/amirasaad/ledger/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors.
// Traverses the error chain to find GORM errors and maps them to appropriate domain errors.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		}
		currentErr = errors.Unwrap(currentErr)
	}

	return err
}

// WrapError runs a GORM operation and maps its error to the domain.
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}

// mapNotFound maps a missing record to the entity's sentinel, which still
// matches domain.ErrNotFound.
func mapNotFound(err, sentinel error) error {
	mapped := MapGormErrorToDomain(err)
	if errors.Is(mapped, domain.ErrNotFound) {
		return fmt.Errorf("%w: %w", sentinel, domain.ErrNotFound)
	}
	return mapped
}

// checkAffected turns a zero-row update into sentinel, matching
// domain.ErrNotFound.
func checkAffected(res *gorm.DB, sentinel error) error {
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %w", sentinel, domain.ErrNotFound)
	}
	return nil
}

// checkVersion turns a zero-row optimistic update into
// domain.ErrConcurrentModification.
func checkVersion(res *gorm.DB) error {
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

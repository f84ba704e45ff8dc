package repository

import (
	"context"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs the given function in a transaction boundary, providing a UnitOfWork for repository access.
// GetRepository provides type-safe access to repositories using the transaction session.
// Example usage:
//
//	repoAny, err := uow.GetRepository(reflect.TypeOf((*AccountRepository)(nil)).Elem())
//	repo := repoAny.(AccountRepository)
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// The provided function receives a UnitOfWork for repository access.
	// If the function returns an error, the transaction is rolled back.
	// A Do nested inside another joins the outer transaction.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// AfterCommit registers fn to run once the outermost transaction has
	// committed. Hooks of a rolled back transaction are dropped. Outside a
	// transaction fn runs immediately.
	AfterCommit(fn func(ctx context.Context))

	// GetRepository returns a repository of the requested type, bound to the current transaction/session.
	GetRepository(repoType reflect.Type) (any, error)

	// Type-safe repository access methods (convenience methods)
	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	SplitRepository() (SplitRepository, error)
	ObligationRepository() (ObligationRepository, error)
	PaymentRepository() (PaymentRepository, error)
	SeriesRepository() (SeriesRepository, error)
	BudgetPeriodRepository() (BudgetPeriodRepository, error)
	BudgetRepository() (BudgetRepository, error)
}

package repository

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/amirasaad/ledger/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Repositories obtained from a UoW inside Do share its transaction.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	hooks        *commitHooks
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

type commitHooks struct {
	mu  sync.Mutex
	fns []func(ctx context.Context)
}

func (h *commitHooks) add(fn func(ctx context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *commitHooks) run(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ctx)
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			typeOf[repository.AccountRepository]():      func(db *gorm.DB) any { return NewAccountRepository(db) },
			typeOf[repository.TransactionRepository]():  func(db *gorm.DB) any { return NewTransactionRepository(db) },
			typeOf[repository.SplitRepository]():        func(db *gorm.DB) any { return NewSplitRepository(db) },
			typeOf[repository.ObligationRepository]():   func(db *gorm.DB) any { return NewObligationRepository(db) },
			typeOf[repository.PaymentRepository]():      func(db *gorm.DB) any { return NewPaymentRepository(db) },
			typeOf[repository.SeriesRepository]():       func(db *gorm.DB) any { return NewSeriesRepository(db) },
			typeOf[repository.BudgetPeriodRepository](): func(db *gorm.DB) any { return NewBudgetPeriodRepository(db) },
			typeOf[repository.BudgetRepository]():       func(db *gorm.DB) any { return NewBudgetRepository(db) },
		},
	}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
// Hooks registered with AfterCommit run once the transaction has committed,
// with a context that is no longer cancelled by ctx.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	hooks := &commitHooks{}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, hooks: hooks, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
	if err != nil {
		return err
	}
	hooks.run(context.WithoutCancel(ctx))
	return nil
}

// AfterCommit implements repository.UnitOfWork.
func (u *UoW) AfterCommit(fn func(ctx context.Context)) {
	if u.tx == nil {
		fn(context.Background())
		return
	}
	u.hooks.add(fn)
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// GetRepository provides generic, type-safe access to repositories using the transaction session.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

func get[T any](u *UoW) (T, error) {
	var zero T
	repoAny, err := u.GetRepository(typeOf[T]())
	if err != nil {
		return zero, err
	}
	repo, ok := repoAny.(T)
	if !ok {
		return zero, fmt.Errorf("repository registered for %v has type %T", typeOf[T](), repoAny)
	}
	return repo, nil
}

// AccountRepository returns the account repository bound to this unit.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return get[repository.AccountRepository](u)
}

// TransactionRepository returns the ledger entry repository bound to this unit.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return get[repository.TransactionRepository](u)
}

// SplitRepository returns the split repository bound to this unit.
func (u *UoW) SplitRepository() (repository.SplitRepository, error) {
	return get[repository.SplitRepository](u)
}

// ObligationRepository returns the payable/receivable repository bound to this unit.
func (u *UoW) ObligationRepository() (repository.ObligationRepository, error) {
	return get[repository.ObligationRepository](u)
}

// PaymentRepository returns the payment repository bound to this unit.
func (u *UoW) PaymentRepository() (repository.PaymentRepository, error) {
	return get[repository.PaymentRepository](u)
}

// SeriesRepository returns the series repository bound to this unit.
func (u *UoW) SeriesRepository() (repository.SeriesRepository, error) {
	return get[repository.SeriesRepository](u)
}

// BudgetPeriodRepository returns the budget period repository bound to this unit.
func (u *UoW) BudgetPeriodRepository() (repository.BudgetPeriodRepository, error) {
	return get[repository.BudgetPeriodRepository](u)
}

// BudgetRepository returns the budget repository bound to this unit.
func (u *UoW) BudgetRepository() (repository.BudgetRepository, error) {
	return get[repository.BudgetRepository](u)
}

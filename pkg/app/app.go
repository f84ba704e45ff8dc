package app

import (
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/pkg/service/balance"
	"github.com/amirasaad/ledger/pkg/service/budget"
	"github.com/amirasaad/ledger/pkg/service/ledger"
	"github.com/amirasaad/ledger/pkg/service/recurrence"
)

type App struct {
	Deps              *config.Deps
	Config            *config.App
	Scheduler         *balance.Scheduler
	BalanceService    *balance.Service
	Invalidator       *budget.Invalidator
	BudgetService     *budget.Service
	AccountService    *account.Service
	LedgerService     *ledger.Service
	RecurrenceService *recurrence.Generator
}

// New wires every service over deps. Mutations schedule balance jobs on
// deps.Queue; nothing consumes them until StartWorker is called.
func New(deps *config.Deps) *App {
	logger := deps.Logger
	app := &App{
		Deps:   deps,
		Config: deps.Config,
	}
	app.Scheduler = balance.NewScheduler(deps.Queue, logger)
	if q := deps.Config.Queue; q != nil && q.InitialInterval > 0 {
		app.Scheduler = app.Scheduler.WithRetry(q.MaxRetries, q.InitialInterval)
	}
	app.BalanceService = balance.New(deps.Uow, app.Scheduler, deps.Metrics, logger)
	app.Invalidator = budget.NewInvalidator(deps.Uow, deps.Cache, deps.Metrics, logger)
	app.BudgetService = budget.New(deps.Uow, deps.Cache, app.Invalidator, logger)
	app.AccountService = account.New(deps.Uow, app.Scheduler, logger)
	app.LedgerService = ledger.New(deps.Uow, app.Scheduler, app.Invalidator, logger)
	app.RecurrenceService = recurrence.New(deps.Uow, deps.Metrics, logger)
	return app
}

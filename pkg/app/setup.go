package app

import (
	"context"
)

// StartWorker attaches the balance recalculator to the queue consumer. Jobs
// published before the call are delivered once it returns.
func (a *App) StartWorker(ctx context.Context) error {
	a.Deps.Logger.Info("Starting balance worker", "backend", a.Config.Queue.Backend)
	return a.Deps.Queue.Start(ctx, a.BalanceService.Handle)
}

// StopWorker stops consuming and waits for in-flight jobs.
func (a *App) StopWorker(ctx context.Context) error {
	a.Deps.Logger.Info("Stopping balance worker")
	return a.Deps.Queue.Stop(ctx)
}

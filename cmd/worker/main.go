package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/ledger/infra/initializer"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load application configuration: %v", err)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer initializer.Close(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app.New(deps)); err != nil {
		deps.Logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App) error {
	logger := a.Deps.Logger
	srv := &http.Server{
		Addr:              a.Config.Metrics.Addr,
		Handler:           newRouter(a.Deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving ops endpoints", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if err := a.StartWorker(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.StopWorker(shutdownCtx); err != nil {
		logger.Warn("Worker did not drain in time", "error", err)
	}
	return srv.Shutdown(shutdownCtx)
}

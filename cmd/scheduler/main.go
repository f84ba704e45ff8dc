package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/ledger/infra/initializer"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/service/recurrence"
)

func main() {
	date := flag.String("date", "", "run as of this YYYY-MM-DD date (default today)")
	flag.Parse()

	today, err := parseToday(*date, time.Now())
	if err != nil {
		log.Fatal(err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load application configuration: %v", err)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res, err := app.New(deps).RecurrenceService.Run(ctx, today)
	stop()
	initializer.Close(deps)
	os.Exit(exitCode(res, err))
}

func parseToday(date string, now time.Time) (time.Time, error) {
	if date == "" {
		return common.DateOf(now), nil
	}
	d, err := common.ParseDate(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -date %q: %w", date, err)
	}
	return d, nil
}

// exitCode is non-zero when the run could not start or any series failed.
func exitCode(res recurrence.Result, err error) int {
	if err != nil || res.Failed > 0 {
		return 1
	}
	return 0
}

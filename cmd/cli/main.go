package main

import (
	"context"
	"fmt"
	"os"

	"github.com/amirasaad/ledger/infra/initializer"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  recalc <account_id>        rewrite running balances and the stored balance
  recalc-all                 recalc every account
  verify <account_id>        compare derived balances with the entry log and repair
  recurrence [YYYY-MM-DD]    generate due payables and receivables (default today)
  reconcile <obligation_id>  recompute paid amount and status from payments`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load configuration:", err)
		os.Exit(1)
	}
	// Jobs scheduled by a CLI run are handled before the process exits.
	cfg.Queue.Backend = config.QueueInline
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		fmt.Println("Failed to connect:", err)
		os.Exit(1)
	}
	defer initializer.Close(deps)

	a := app.New(deps)
	ctx := context.Background()
	if err := a.StartWorker(ctx); err != nil {
		fmt.Println("Failed to start worker:", err)
		os.Exit(1)
	}
	if err := run(ctx, a, os.Args[1:], os.Stdout); err != nil {
		fmt.Println("Error:", err)
		initializer.Close(deps)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/google/uuid"
)

var errUsage = errors.New(usage)

func run(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "recalc":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		if err := a.BalanceService.RecalculateRunningBalances(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Recalculated account %s\n", id)
	case "recalc-all":
		failed, err := a.BalanceService.RecalculateAll(ctx)
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d accounts failed to recalculate", failed)
		}
		fmt.Fprintln(out, "Recalculated all accounts")
	case "verify":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		report, err := a.BalanceService.Verify(ctx, id)
		if err != nil {
			return err
		}
		if report.Consistent() {
			fmt.Fprintf(out, "Account %s consistent: balance %s\n", id, report.StoredBalance.StringFixed(2))
			return nil
		}
		fmt.Fprintf(out, "Account %s repaired: stored %s, computed %s, %d stale entries\n",
			id, report.StoredBalance.StringFixed(2), report.ComputedBalance.StringFixed(2), report.StaleEntries)
	case "recurrence":
		today := time.Now()
		if len(args) > 1 {
			d, err := common.ParseDate(args[1])
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", args[1], err)
			}
			today = d
		}
		res, err := a.RecurrenceService.Run(ctx, today)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Processed %d series: %d generated, %d skipped, %d failed\n",
			res.Processed, res.Generated, res.Skipped, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d series failed", res.Failed)
		}
	case "reconcile":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		repaired, err := a.LedgerService.ReconcileObligation(ctx, id)
		if err != nil {
			return err
		}
		if repaired {
			fmt.Fprintf(out, "Obligation %s repaired\n", id)
		} else {
			fmt.Fprintf(out, "Obligation %s consistent\n", id)
		}
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
	return nil
}

func idArg(args []string) (uuid.UUID, error) {
	if len(args) < 2 {
		return uuid.Nil, fmt.Errorf("%s needs an id\n%w", args[0], errUsage)
	}
	id, err := uuid.Parse(args[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", args[1], err)
	}
	return id, nil
}

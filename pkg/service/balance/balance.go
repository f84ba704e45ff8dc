// Package balance recomputes the derived balance columns of an account from
// its ledger entries.
//
// Recomputation always walks the full history of the account in
// (transaction_date, id) order, so it is idempotent and the last run to
// commit wins regardless of how runs interleave.
package balance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is the balance recalculator.
type Service struct {
	uow       repository.UnitOfWork
	scheduler *Scheduler
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a balance Service. scheduler may be nil, in which case Verify
// repairs inconsistencies inline.
func New(uow repository.UnitOfWork, scheduler *Scheduler, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:       uow,
		scheduler: scheduler,
		metrics:   m,
		logger:    logger.With("component", "balance"),
	}
}

// RecalculateRunningBalances rewrites the running balance of every live entry
// affecting accountID and the account's stored balance, in one unit.
func (s *Service) RecalculateRunningBalances(ctx context.Context, accountID uuid.UUID) error {
	logger := s.logger.With("account_id", accountID)
	var total decimal.Decimal
	var written int
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		acc, err := accRepo.Get(ctx, accountID)
		if err != nil {
			return err
		}
		entries, err := txRepo.Timeline(ctx, accountID)
		if err != nil {
			return err
		}

		running := decimal.Zero
		for _, e := range entries {
			running = running.Add(e.SignedFor(accountID))
			if e.AccountID != accountID {
				// Inbound single-row transfer: this account is the destination.
				if !sameNull(e.DestinationRunningBalance, running) {
					if err := txRepo.UpdateDestinationRunningBalance(ctx, e.ID, decimal.NewNullDecimal(running)); err != nil {
						return err
					}
					written++
				}
				continue
			}
			if !e.RunningBalance.Equal(running) {
				if err := txRepo.UpdateRunningBalance(ctx, e.ID, running); err != nil {
					return err
				}
				written++
			}
			if e.Type == transaction.TypeTransferIn && e.RelatedTransactionID != nil {
				// The source leg shows where the money landed.
				if err := txRepo.UpdateDestinationRunningBalance(ctx, *e.RelatedTransactionID, decimal.NewNullDecimal(running)); err != nil {
					return err
				}
			}
		}
		total = running
		if acc.Balance.Equal(running) {
			return nil
		}
		return accRepo.UpdateBalance(ctx, accountID, running)
	})
	if err != nil {
		logger.Error("running balance recalculation failed", "error", err)
		return fmt.Errorf("recalculate running balances of %s: %w", accountID, err)
	}
	logger.Debug("running balances recalculated", "balance", total.String(), "rows_written", written)
	return nil
}

// RecalculateBalance rewrites only the account's stored balance.
func (s *Service) RecalculateBalance(ctx context.Context, accountID uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		acc, err := accRepo.Get(ctx, accountID)
		if err != nil {
			return err
		}
		entries, err := txRepo.Timeline(ctx, accountID)
		if err != nil {
			return err
		}
		total := Sum(accountID, entries)
		if acc.Balance.Equal(total) {
			return nil
		}
		return accRepo.UpdateBalance(ctx, accountID, total)
	})
	if err != nil {
		s.logger.Error("balance recalculation failed", "account_id", accountID, "error", err)
		return fmt.Errorf("recalculate balance of %s: %w", accountID, err)
	}
	return nil
}

// RecalculateAll recomputes every account and returns how many failed.
func (s *Service) RecalculateAll(ctx context.Context) (failed int, err error) {
	var ids []uuid.UUID
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ids, err = repo.ListIDs(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.RecalculateRunningBalances(ctx, id); err != nil {
			failed++
		}
	}
	return failed, nil
}

// Handle is the queue handler for balance jobs.
func (s *Service) Handle(ctx context.Context, job queue.Job) error {
	started := time.Now()
	var err error
	switch job.Kind {
	case queue.KindRecalculateRunningBalances:
		err = s.RecalculateRunningBalances(ctx, job.AccountID)
	case queue.KindRecalculateBalance:
		err = s.RecalculateBalance(ctx, job.AccountID)
	default:
		err = fmt.Errorf("unknown balance job kind %q", job.Kind)
	}
	s.metrics.ObserveJob(string(job.Kind), started, err)
	return err
}

// Report is the outcome of Verify.
type Report struct {
	AccountID       uuid.UUID
	StoredBalance   decimal.Decimal
	ComputedBalance decimal.Decimal
	StaleEntries    int
	// Violation wraps domain.ErrConsistencyViolation when anything was stale.
	Violation error
}

// Consistent reports whether every derived column matched the log.
func (r Report) Consistent() bool { return r.Violation == nil }

// Verify compares the account's derived columns with its entries. A mismatch
// is not returned as an error: the matching recomputation is scheduled and
// the report describes what was found.
func (s *Service) Verify(ctx context.Context, accountID uuid.UUID) (Report, error) {
	report := Report{AccountID: accountID}
	var repair queue.Kind
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accRepo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		acc, err := accRepo.Get(ctx, accountID)
		if err != nil {
			return err
		}
		entries, err := txRepo.Timeline(ctx, accountID)
		if err != nil {
			return err
		}

		running := decimal.Zero
		for _, e := range entries {
			running = running.Add(e.SignedFor(accountID))
			var stale bool
			if e.AccountID == accountID {
				stale = !e.RunningBalance.Equal(running)
			} else {
				stale = !sameNull(e.DestinationRunningBalance, running)
			}
			if stale {
				report.StaleEntries++
				s.metrics.Mismatch("running_balance")
			}
		}
		report.StoredBalance = acc.Balance
		report.ComputedBalance = running
		balanceStale := !acc.Balance.Equal(running)
		if balanceStale {
			s.metrics.Mismatch("balance")
		}

		switch {
		case report.StaleEntries > 0:
			repair = queue.KindRecalculateRunningBalances
		case balanceStale:
			repair = queue.KindRecalculateBalance
		default:
			return nil
		}
		report.Violation = fmt.Errorf("%w: account %s stored balance %s, computed %s, %d stale entries",
			domain.ErrConsistencyViolation, accountID, acc.Balance, running, report.StaleEntries)
		if s.scheduler != nil {
			s.scheduler.Schedule(uow, repair, accountID)
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	if report.Violation == nil {
		return report, nil
	}

	s.logger.Warn("derived balance out of date, recomputing",
		"account_id", accountID, "error", report.Violation)
	if s.scheduler == nil {
		if repair == queue.KindRecalculateBalance {
			err = s.RecalculateBalance(ctx, accountID)
		} else {
			err = s.RecalculateRunningBalances(ctx, accountID)
		}
	}
	return report, err
}

// Sum returns the signed total of entries for accountID.
func Sum(accountID uuid.UUID, entries []*transaction.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.IsDeleted() {
			continue
		}
		total = total.Add(e.SignedFor(accountID))
	}
	return total
}

func sameNull(n decimal.NullDecimal, d decimal.Decimal) bool {
	return n.Valid && n.Decimal.Equal(d)
}

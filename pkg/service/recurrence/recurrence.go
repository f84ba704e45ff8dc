// Package recurrence materializes due payable and receivable occurrences
// from recurring series.
package recurrence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
)

// Result summarizes one run.
type Result struct {
	Processed int
	Generated int
	// Skipped counts series another run advanced first.
	Skipped int
	Failed  int
}

// Generator is the daily recurrence batch.
type Generator struct {
	uow     repository.UnitOfWork
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Generator.
func New(uow repository.UnitOfWork, m *metrics.Metrics, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{uow: uow, metrics: m, logger: logger.With("component", "recurrence")}
}

// CreateSeries stores a new series.
func (g *Generator) CreateSeries(ctx context.Context, s *obligation.Series) (*obligation.Series, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.Must(uuid.NewV7())
	}
	s.DefaultAmount = money.Round(s.DefaultAmount)
	if s.NextDueDate != nil {
		d := common.DateOf(*s.NextDueDate)
		s.NextDueDate = &d
	}
	if s.IsRecurring && s.RecurrenceRule.Frequency == "" {
		s.RecurrenceRule.Frequency = obligation.FrequencyMonthly
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	err := g.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.SeriesRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Run generates every occurrence due on or before today. Each series is
// processed in its own unit, so one failing series neither blocks nor rolls
// back the others.
func (g *Generator) Run(ctx context.Context, today time.Time) (Result, error) {
	today = common.DateOf(today)
	var due []*obligation.Series
	err := g.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.SeriesRepository()
		if err != nil {
			return err
		}
		due, err = repo.ListDue(ctx, today)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("list due series: %w", err)
	}

	var res Result
	for _, s := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Processed++
		generated, err := g.RunSeries(ctx, s.ID, today)
		switch {
		case errors.Is(err, domain.ErrConcurrentModification):
			res.Skipped++
			g.logger.Info("series advanced by another run", "series_id", s.ID)
			continue
		case err != nil:
			res.Failed++
			g.metrics.Series(err, 0)
			g.logger.Error("series generation failed", "series_id", s.ID, "error", err)
			continue
		}
		res.Generated += generated
		g.metrics.Series(nil, generated)
	}
	g.logger.Info("recurrence run finished",
		"today", today.Format(common.DateLayout),
		"processed", res.Processed, "generated", res.Generated,
		"skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// RunSeries catches one series up to today and returns how many occurrences
// it created. The occurrences and the new next due date commit together.
func (g *Generator) RunSeries(ctx context.Context, seriesID uuid.UUID, today time.Time) (int, error) {
	today = common.DateOf(today)
	var generated int
	err := g.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		generated = 0
		seriesRepo, err := uow.SeriesRepository()
		if err != nil {
			return err
		}
		oblRepo, err := uow.ObligationRepository()
		if err != nil {
			return err
		}
		s, err := seriesRepo.Get(ctx, seriesID)
		if err != nil {
			return err
		}
		if !s.IsDue(today) {
			return nil
		}
		cursor := *s.NextDueDate
		for !cursor.After(today) {
			if err := oblRepo.Create(ctx, s.Occurrence(cursor)); err != nil {
				return fmt.Errorf("create occurrence %s: %w", cursor.Format(common.DateLayout), err)
			}
			generated++
			cursor = s.RecurrenceRule.Next(cursor)
		}
		return seriesRepo.Advance(ctx, s, cursor)
	})
	if err != nil {
		return 0, err
	}
	if generated > 0 {
		g.logger.Debug("series advanced", "series_id", seriesID, "generated", generated)
	}
	return generated, nil
}

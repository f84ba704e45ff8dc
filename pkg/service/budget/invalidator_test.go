package budget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/ledger/internal/fixtures/mocks"
	"github.com/amirasaad/ledger/pkg/cache"
	domainbudget "github.com/amirasaad/ledger/pkg/domain/budget"
	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/repository"
	budgetsvc "github.com/amirasaad/ledger/pkg/service/budget"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBudgetChangedEvictsSummaryAndSlot(t *testing.T) {
	c := mocks.NewMockCache(t)
	periodID := uuid.New()
	b := &domainbudget.Budget{ID: uuid.New(), CategoryID: uuid.New(), PeriodID: &periodID}

	c.EXPECT().Invalidate(mock.Anything, cache.SummaryKey(b.ID)).Return(nil).Once()
	c.EXPECT().Invalidate(mock.Anything, cache.PeriodCategoryKey(periodID, b.CategoryID)).Return(nil).Once()

	inv := budgetsvc.NewInvalidator(mocks.NewMockUnitOfWork(t), c, nil, testutils.DiscardLogger())
	inv.BudgetChanged(context.Background(), b)
}

func TestBudgetChangedKeepsGoingAfterEvictionError(t *testing.T) {
	c := mocks.NewMockCache(t)
	periodID := uuid.New()
	b := &domainbudget.Budget{ID: uuid.New(), CategoryID: uuid.New(), PeriodID: &periodID}

	c.EXPECT().Invalidate(mock.Anything, cache.SummaryKey(b.ID)).Return(errors.New("conn reset")).Once()
	c.EXPECT().Invalidate(mock.Anything, cache.PeriodCategoryKey(periodID, b.CategoryID)).Return(nil).Once()

	m := metrics.New(prometheus.NewRegistry())
	inv := budgetsvc.NewInvalidator(mocks.NewMockUnitOfWork(t), c, m, testutils.DiscardLogger())
	inv.BudgetChanged(context.Background(), b)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invalidations.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invalidations.WithLabelValues("ok")))
}

func TestEntryChangedSurvivesRepositoryError(t *testing.T) {
	uow := mocks.NewMockUnitOfWork(t)
	uow.EXPECT().Do(mock.Anything, mock.Anything).RunAndReturn(
		func(ctx context.Context, fn func(uow repository.UnitOfWork) error) error { return fn(uow) },
	)
	uow.EXPECT().BudgetPeriodRepository().Return(nil, errors.New("db gone"))

	inv := budgetsvc.NewInvalidator(uow, mocks.NewMockCache(t), nil, testutils.DiscardLogger())
	inv.EntryChanged(context.Background(), uuid.New(), time.Now(), uuid.New())
}

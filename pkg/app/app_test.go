package app_test

import (
	"context"
	"testing"
	"time"

	infra_cache "github.com/amirasaad/ledger/infra/cache"
	infra_queue "github.com/amirasaad/ledger/infra/queue"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/pkg/service/ledger"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *app.App {
	t.Helper()
	uow, _ := testutils.NewTestUoW(t)
	logger := testutils.DiscardLogger()
	deps := &config.Deps{
		Uow:     uow,
		Queue:   infra_queue.NewInline(infra_queue.RetryConfig{}, logger),
		Cache:   infra_cache.NewMemoryCache(time.Minute),
		Metrics: metrics.New(prometheus.NewRegistry()),
		Logger:  logger,
		Config: &config.App{
			Queue: &config.Queue{Backend: config.QueueInline, MaxRetries: 1, InitialInterval: time.Millisecond},
		},
	}
	a := app.New(deps)
	require.NoError(t, a.StartWorker(context.Background()))
	t.Cleanup(func() { _ = a.StopWorker(context.Background()) })
	return a
}

func TestAppWiresLedgerThroughWorker(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	userID := uuid.New()

	checking, err := a.AccountService.Open(ctx, account.OpenRequest{
		UserID:         userID,
		Name:           "Checking",
		Currency:       money.USD,
		InitialBalance: money.MustParse("500"),
		OpenedAt:       common.Date(2025, time.January, 1),
	})
	require.NoError(t, err)
	savings, err := a.AccountService.Open(ctx, account.OpenRequest{
		UserID:   userID,
		Name:     "Savings",
		Currency: money.USD,
	})
	require.NoError(t, err)

	_, err = a.LedgerService.Create(ctx, userID, transaction.Transaction{
		AccountID:       checking.ID,
		Type:            transaction.TypeExpense,
		Amount:          money.MustParse("120"),
		TransactionDate: common.Date(2025, time.January, 5),
		CategoryID:      ptr(uuid.New()),
	})
	require.NoError(t, err)

	_, err = a.LedgerService.CreateTransfer(ctx, userID, ledger.TransferRequest{
		SourceAccountID:      checking.ID,
		DestinationAccountID: savings.ID,
		Amount:               money.MustParse("80"),
		Date:                 common.Date(2025, time.January, 10),
	})
	require.NoError(t, err)

	got, err := a.AccountService.Get(ctx, userID, checking.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.00", got.Balance.StringFixed(2))
	got, err = a.AccountService.Get(ctx, userID, savings.ID)
	require.NoError(t, err)
	assert.Equal(t, "80.00", got.Balance.StringFixed(2))

	report, err := a.BalanceService.Verify(ctx, checking.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func ptr[T any](v T) *T { return &v }

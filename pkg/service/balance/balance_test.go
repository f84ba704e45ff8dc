package balance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	infrarepo "github.com/amirasaad/ledger/infra/repository"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/amirasaad/ledger/pkg/service/balance"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []queue.Job
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, job queue.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *recordingPublisher) published() []queue.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.Job(nil), p.jobs...)
}

type fixture struct {
	ctx    context.Context
	uow    *infrarepo.UoW
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	uow, _ := testutils.NewTestUoW(t)
	return &fixture{ctx: context.Background(), uow: uow, userID: uuid.New()}
}

func (f *fixture) account(t *testing.T) *account.Account {
	t.Helper()
	acc, err := account.New().WithUserID(f.userID).WithName("checking").Build()
	require.NoError(t, err)
	repo, err := f.uow.AccountRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Create(f.ctx, acc))
	return acc
}

// insert writes an entry without touching any derived column.
func (f *fixture) insert(t *testing.T, tx *transaction.Transaction) *transaction.Transaction {
	t.Helper()
	if tx.ID == uuid.Nil {
		tx.ID = transaction.NewID()
	}
	tx.UserID = f.userID
	if tx.Origin == "" {
		tx.Origin = transaction.OriginManual
	}
	repo, err := f.uow.TransactionRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Create(f.ctx, tx))
	return tx
}

func (f *fixture) entry(t *testing.T, accountID uuid.UUID, typ transaction.Type, amount string, date time.Time) *transaction.Transaction {
	t.Helper()
	category := uuid.New()
	return f.insert(t, &transaction.Transaction{
		AccountID:       accountID,
		Type:            typ,
		Amount:          money.MustParse(amount),
		TransactionDate: date,
		CategoryID:      &category,
	})
}

func (f *fixture) balanceOf(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	repo, err := f.uow.AccountRepository()
	require.NoError(t, err)
	acc, err := repo.Get(f.ctx, id)
	require.NoError(t, err)
	return acc.Balance
}

func (f *fixture) timeline(t *testing.T, id uuid.UUID) []*transaction.Transaction {
	t.Helper()
	repo, err := f.uow.TransactionRepository()
	require.NoError(t, err)
	entries, err := repo.Timeline(f.ctx, id)
	require.NoError(t, err)
	return entries
}

func runningBalances(entries []*transaction.Transaction) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.RunningBalance.StringFixed(2))
	}
	return out
}

func TestRecalculateRunningBalancesBackdated(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t)
	svc := balance.New(f.uow, nil, nil, testutils.DiscardLogger())

	f.entry(t, acc.ID, transaction.TypeIncome, "100", common.Date(2025, time.January, 1))
	f.entry(t, acc.ID, transaction.TypeIncome, "50", common.Date(2025, time.January, 10))
	require.NoError(t, svc.RecalculateRunningBalances(f.ctx, acc.ID))
	assert.Equal(t, []string{"100.00", "150.00"}, runningBalances(f.timeline(t, acc.ID)))

	f.entry(t, acc.ID, transaction.TypeExpense, "20", common.Date(2025, time.January, 5))
	require.NoError(t, svc.RecalculateRunningBalances(f.ctx, acc.ID))
	assert.Equal(t, []string{"100.00", "80.00", "130.00"}, runningBalances(f.timeline(t, acc.ID)))
	assert.Equal(t, "130.00", f.balanceOf(t, acc.ID).StringFixed(2))

	require.NoError(t, svc.RecalculateRunningBalances(f.ctx, acc.ID))
	assert.Equal(t, []string{"100.00", "80.00", "130.00"}, runningBalances(f.timeline(t, acc.ID)), "recalculation is idempotent")
}

func TestSameDateEntriesOrderByID(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t)
	svc := balance.New(f.uow, nil, nil, testutils.DiscardLogger())

	day := common.Date(2025, time.March, 3)
	f.entry(t, acc.ID, transaction.TypeIncome, "10", day)
	f.entry(t, acc.ID, transaction.TypeExpense, "4", day)
	f.entry(t, acc.ID, transaction.TypeIncome, "1", day)
	require.NoError(t, svc.RecalculateRunningBalances(f.ctx, acc.ID))

	assert.Equal(t, []string{"10.00", "6.00", "7.00"}, runningBalances(f.timeline(t, acc.ID)))
}

func TestSingleRowTransferCountsForDestination(t *testing.T) {
	f := newFixture(t)
	src := f.account(t)
	dst := f.account(t)
	svc := balance.New(f.uow, nil, nil, testutils.DiscardLogger())

	dest := dst.ID
	legacy := f.insert(t, &transaction.Transaction{
		AccountID:            src.ID,
		Type:                 transaction.TypeTransfer,
		Amount:               money.MustParse("100"),
		TransactionDate:      common.Date(2025, time.January, 2),
		DestinationAccountID: &dest,
		ConversionRate:       decimal.NewNullDecimal(money.MustParse("0.5")),
		ConvertedAmount:      decimal.NewNullDecimal(money.MustParse("50")),
	})

	require.NoError(t, svc.RecalculateRunningBalances(f.ctx, src.ID))
	require.NoError(t, svc.RecalculateRunningBalances(f.ctx, dst.ID))

	assert.Equal(t, "-100.00", f.balanceOf(t, src.ID).StringFixed(2))
	assert.Equal(t, "50.00", f.balanceOf(t, dst.ID).StringFixed(2))

	entries := f.timeline(t, dst.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, legacy.ID, entries[0].ID)
	require.True(t, entries[0].DestinationRunningBalance.Valid)
	assert.Equal(t, "50.00", entries[0].DestinationRunningBalance.Decimal.StringFixed(2))
	assert.Equal(t, "-100.00", entries[0].RunningBalance.StringFixed(2))
}

func TestRecalculateBalanceOnlyTouchesAccount(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t)
	svc := balance.New(f.uow, nil, nil, testutils.DiscardLogger())

	f.entry(t, acc.ID, transaction.TypeIncome, "42", common.Date(2025, time.January, 1))
	require.NoError(t, svc.RecalculateBalance(f.ctx, acc.ID))

	assert.Equal(t, "42.00", f.balanceOf(t, acc.ID).StringFixed(2))
	assert.Equal(t, []string{"0.00"}, runningBalances(f.timeline(t, acc.ID)))
}

func TestHandle(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t)
	m := metrics.New(prometheus.NewRegistry())
	svc := balance.New(f.uow, nil, m, testutils.DiscardLogger())
	f.entry(t, acc.ID, transaction.TypeIncome, "5", common.Date(2025, time.January, 1))

	require.NoError(t, svc.Handle(f.ctx, queue.NewJob(queue.KindRecalculateRunningBalances, acc.ID)))
	assert.Equal(t, "5.00", f.balanceOf(t, acc.ID).StringFixed(2))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsProcessed.WithLabelValues(string(queue.KindRecalculateRunningBalances), "ok")))

	err := svc.Handle(f.ctx, queue.NewJob(queue.KindRecalculateBalance, uuid.New()))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Error(t, svc.Handle(f.ctx, queue.Job{Kind: "bogus", AccountID: acc.ID}))
}

func TestRecalculateAll(t *testing.T) {
	f := newFixture(t)
	a, b := f.account(t), f.account(t)
	svc := balance.New(f.uow, nil, nil, testutils.DiscardLogger())
	f.entry(t, a.ID, transaction.TypeIncome, "1", common.Date(2025, time.January, 1))
	f.entry(t, b.ID, transaction.TypeExpense, "2", common.Date(2025, time.January, 1))

	failed, err := svc.RecalculateAll(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Equal(t, "1.00", f.balanceOf(t, a.ID).StringFixed(2))
	assert.Equal(t, "-2.00", f.balanceOf(t, b.ID).StringFixed(2))
}

func TestVerifyRepairsInline(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t)
	m := metrics.New(prometheus.NewRegistry())
	svc := balance.New(f.uow, nil, m, testutils.DiscardLogger())
	f.entry(t, acc.ID, transaction.TypeIncome, "10", common.Date(2025, time.January, 1))
	require.NoError(t, svc.RecalculateRunningBalances(f.ctx, acc.ID))

	report, err := svc.Verify(f.ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())

	repo, err := f.uow.AccountRepository()
	require.NoError(t, err)
	require.NoError(t, repo.UpdateBalance(f.ctx, acc.ID, money.MustParse("999")))

	report, err = svc.Verify(f.ctx, acc.ID)
	require.NoError(t, err, "a mismatch is reported, not returned")
	assert.False(t, report.Consistent())
	assert.ErrorIs(t, report.Violation, domain.ErrConsistencyViolation)
	assert.Equal(t, "999.00", report.StoredBalance.StringFixed(2))
	assert.Equal(t, "10.00", report.ComputedBalance.StringFixed(2))
	assert.Zero(t, report.StaleEntries)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BalanceMismatches.WithLabelValues("balance")))

	assert.Equal(t, "10.00", f.balanceOf(t, acc.ID).StringFixed(2))
	report, err = svc.Verify(f.ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestVerifySchedulesRepair(t *testing.T) {
	f := newFixture(t)
	acc := f.account(t)
	pub := &recordingPublisher{}
	svc := balance.New(f.uow, balance.NewScheduler(pub, nil), nil, testutils.DiscardLogger())

	f.entry(t, acc.ID, transaction.TypeIncome, "10", common.Date(2025, time.January, 1))
	report, err := svc.Verify(f.ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.StaleEntries)

	jobs := pub.published()
	require.Len(t, jobs, 1)
	assert.Equal(t, queue.KindRecalculateRunningBalances, jobs[0].Kind)
	assert.Equal(t, acc.ID, jobs[0].AccountID)
	assert.Equal(t, "0.00", f.balanceOf(t, acc.ID).StringFixed(2), "repair is deferred to the queue")
}

func TestSchedulerPublishesOnlyAfterCommit(t *testing.T) {
	f := newFixture(t)
	pub := &recordingPublisher{}
	sched := balance.NewScheduler(pub, testutils.DiscardLogger())
	id := uuid.New()

	err := f.uow.Do(f.ctx, func(uow repository.UnitOfWork) error {
		sched.Schedule(uow, queue.KindRecalculateRunningBalances, id, id, uuid.Nil)
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Empty(t, pub.published(), "rolled back writes publish nothing")

	require.NoError(t, f.uow.Do(f.ctx, func(uow repository.UnitOfWork) error {
		sched.Schedule(uow, queue.KindRecalculateRunningBalances, id, id, uuid.Nil)
		assert.Empty(t, pub.published(), "nothing is published before commit")
		return nil
	}))
	jobs := pub.published()
	require.Len(t, jobs, 1, "duplicate and nil ids collapse")
	assert.Equal(t, id, jobs[0].AccountID)
}

func TestSchedulerGivesUpAfterRetries(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	sched := balance.NewScheduler(pub, testutils.DiscardLogger()).WithRetry(2, time.Millisecond)

	err := sched.Enqueue(context.Background(), queue.KindRecalculateBalance, uuid.New())
	assert.ErrorContains(t, err, "broker down")
}

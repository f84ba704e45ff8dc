package ledger_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/amirasaad/ledger/pkg/service/ledger"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errDiskFull = errors.New("disk full")

// failingUoW fails the failOnCreate-th entry insert, counted across the
// unit, or every obligation payment update when failPaid is set.
type failingUoW struct {
	repository.UnitOfWork
	failOnCreate int
	failPaid     bool
	creates      *int
}

func (f failingUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return f.UnitOfWork.Do(ctx, func(uow repository.UnitOfWork) error {
		inner := f
		inner.UnitOfWork = uow
		inner.creates = new(int)
		return fn(inner)
	})
}

func (f failingUoW) TransactionRepository() (repository.TransactionRepository, error) {
	repo, err := f.UnitOfWork.TransactionRepository()
	return failingEntries{TransactionRepository: repo, uow: f}, err
}

func (f failingUoW) ObligationRepository() (repository.ObligationRepository, error) {
	repo, err := f.UnitOfWork.ObligationRepository()
	return failingObligations{ObligationRepository: repo, fail: f.failPaid}, err
}

type failingEntries struct {
	repository.TransactionRepository
	uow failingUoW
}

func (f failingEntries) Create(ctx context.Context, tx *transaction.Transaction) error {
	if f.uow.creates != nil {
		*f.uow.creates++
		if *f.uow.creates == f.uow.failOnCreate {
			return errDiskFull
		}
	}
	return f.TransactionRepository.Create(ctx, tx)
}

type failingObligations struct {
	repository.ObligationRepository
	fail bool
}

func (f failingObligations) UpdatePaid(ctx context.Context, o *obligation.Obligation, paid decimal.Decimal, status obligation.Status) error {
	if f.fail {
		return errDiskFull
	}
	return f.ObligationRepository.UpdatePaid(ctx, o, paid, status)
}

// hookRecorder registers an after-commit hook for every schedule request and
// counts the ones that ran.
type hookRecorder struct {
	fired   atomic.Int32
	budgets atomic.Int32
}

func (h *hookRecorder) Schedule(uow repository.UnitOfWork, _ queue.Kind, _ ...uuid.UUID) {
	uow.AfterCommit(func(context.Context) { h.fired.Add(1) })
}

func (h *hookRecorder) EntryChanged(context.Context, uuid.UUID, time.Time, ...uuid.UUID) {
	h.budgets.Add(1)
}

func (s *LedgerTestSuite) serviceOver(uow repository.UnitOfWork) (*ledger.Service, *hookRecorder) {
	hooks := &hookRecorder{}
	return ledger.New(uow, hooks, hooks, testutils.DiscardLogger()), hooks
}

func (s *LedgerTestSuite) entriesOf(id uuid.UUID) []*transaction.Transaction {
	repo, err := s.uow.TransactionRepository()
	s.Require().NoError(err)
	entries, err := repo.Timeline(s.ctx, id)
	s.Require().NoError(err)
	return entries
}

func (s *LedgerTestSuite) TestTransferRollsBackWhenSecondLegFails() {
	savings := s.openAccount(money.USD)
	req := ledger.TransferRequest{
		SourceAccountID:      s.wallet.ID,
		DestinationAccountID: savings.ID,
		Amount:               money.MustParse("40"),
		Date:                 common.Date(2025, time.January, 2),
	}

	svc, hooks := s.serviceOver(failingUoW{UnitOfWork: s.uow, failOnCreate: 2})
	_, err := svc.CreateTransfer(s.ctx, s.userID, req)
	s.Require().ErrorIs(err, errDiskFull)

	s.Empty(s.entriesOf(s.wallet.ID), "the first leg must not survive")
	s.Empty(s.entriesOf(savings.ID))
	s.assertAmount("0", s.balanceOf(s.wallet.ID))
	s.assertAmount("0", s.balanceOf(savings.ID))
	s.Zero(hooks.fired.Load())
	s.Zero(hooks.budgets.Load())

	svc, hooks = s.serviceOver(failingUoW{UnitOfWork: s.uow})
	_, err = svc.CreateTransfer(s.ctx, s.userID, req)
	s.Require().NoError(err)
	s.Len(s.entriesOf(s.wallet.ID), 1)
	s.Len(s.entriesOf(savings.ID), 1)
	s.Equal(int32(1), hooks.fired.Load())
}

func (s *LedgerTestSuite) TestSettleRollsBackWhenObligationUpdateFails() {
	o := s.obligation("100")
	req := ledger.SettleRequest{
		ObligationID: o.ID,
		AccountID:    s.wallet.ID,
		Amount:       money.MustParse("40"),
		Date:         common.Date(2025, time.January, 20),
	}

	svc, hooks := s.serviceOver(failingUoW{UnitOfWork: s.uow, failPaid: true})
	_, err := svc.Settle(s.ctx, s.userID, req)
	s.Require().ErrorIs(err, errDiskFull)

	stored := s.getObligation(o.ID)
	s.True(stored.AmountPaid.IsZero())
	s.Equal(obligation.StatusOpen, stored.Status)
	paymentRepo, err := s.uow.PaymentRepository()
	s.Require().NoError(err)
	payments, err := paymentRepo.ListByObligation(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Empty(payments)
	s.Empty(s.entriesOf(s.wallet.ID))
	s.assertAmount("0", s.balanceOf(s.wallet.ID))
	s.Zero(hooks.fired.Load())
	s.Zero(hooks.budgets.Load())

	svc, hooks = s.serviceOver(failingUoW{UnitOfWork: s.uow})
	_, err = svc.Settle(s.ctx, s.userID, req)
	s.Require().NoError(err)
	s.Equal(obligation.StatusPartial, s.getObligation(o.ID).Status)
	s.Equal(int32(1), hooks.fired.Load())
}

func (s *LedgerTestSuite) TestDeletingSettlementOfDriftedObligationFails() {
	o := s.obligation("100")
	settled, err := s.svc.Settle(s.ctx, s.userID, ledger.SettleRequest{
		ObligationID: o.ID,
		AccountID:    s.wallet.ID,
		Amount:       money.MustParse("40"),
		Date:         common.Date(2025, time.January, 20),
	})
	s.Require().NoError(err)

	// amount_paid drifts below the recorded payment.
	repo, err := s.uow.ObligationRepository()
	s.Require().NoError(err)
	current := s.getObligation(o.ID)
	s.Require().NoError(repo.UpdatePaid(s.ctx, current, money.MustParse("10"), obligation.StatusPartial))

	err = s.svc.Delete(s.ctx, s.userID, settled.Transaction.ID)
	s.Require().ErrorIs(err, domain.ErrConsistencyViolation)
	s.Len(s.entriesOf(s.wallet.ID), 1, "the entry is kept when the obligation cannot be unwound")

	repaired, err := s.svc.ReconcileObligation(s.ctx, o.ID)
	s.Require().NoError(err)
	s.True(repaired)
	s.Require().NoError(s.svc.Delete(s.ctx, s.userID, settled.Transaction.ID))
	s.True(s.getObligation(o.ID).AmountPaid.IsZero())
}

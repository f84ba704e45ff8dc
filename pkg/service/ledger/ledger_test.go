package ledger_test

import (
	"context"
	"testing"
	"time"

	infracache "github.com/amirasaad/ledger/infra/cache"
	infraqueue "github.com/amirasaad/ledger/infra/queue"
	infrarepo "github.com/amirasaad/ledger/infra/repository"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/budget"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/service/balance"
	budgetsvc "github.com/amirasaad/ledger/pkg/service/budget"
	"github.com/amirasaad/ledger/pkg/service/ledger"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerTestSuite struct {
	suite.Suite
	ctx     context.Context
	uow     *infrarepo.UoW
	svc     *ledger.Service
	budgets *budgetsvc.Service
	userID  uuid.UUID
	wallet  *account.Account
	food    uuid.UUID
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.uow, _ = testutils.NewTestUoW(s.T())
	logger := testutils.DiscardLogger()

	q := infraqueue.NewInline(infraqueue.RetryConfig{}, logger)
	balances := balance.New(s.uow, nil, nil, logger)
	s.Require().NoError(q.Start(s.ctx, balances.Handle))
	s.T().Cleanup(func() { _ = q.Close() })

	c := infracache.NewMemoryCache(0)
	s.T().Cleanup(func() { _ = c.Close() })
	inv := budgetsvc.NewInvalidator(s.uow, c, nil, logger)

	s.svc = ledger.New(s.uow, balance.NewScheduler(q, logger), inv, logger)
	s.budgets = budgetsvc.New(s.uow, c, inv, logger)
	s.userID = uuid.New()
	s.food = uuid.New()
	s.wallet = s.openAccount(money.USD)
}

func (s *LedgerTestSuite) openAccount(currency money.Code) *account.Account {
	acc, err := account.New().WithUserID(s.userID).WithName(string(currency) + " wallet").WithCurrency(currency).Build()
	s.Require().NoError(err)
	repo, err := s.uow.AccountRepository()
	s.Require().NoError(err)
	s.Require().NoError(repo.Create(s.ctx, acc))
	return acc
}

func (s *LedgerTestSuite) post(typ transaction.Type, amount string, date time.Time) *transaction.Transaction {
	category := s.food
	tx, err := s.svc.Create(s.ctx, s.userID, transaction.Transaction{
		AccountID:       s.wallet.ID,
		Type:            typ,
		Amount:          money.MustParse(amount),
		TransactionDate: date,
		CategoryID:      &category,
	})
	s.Require().NoError(err)
	return tx
}

func (s *LedgerTestSuite) assertAmount(want string, got decimal.Decimal, msg ...string) {
	s.Truef(money.MustParse(want).Equal(got), "want %s, got %s %v", want, got.String(), msg)
}

func (s *LedgerTestSuite) balanceOf(id uuid.UUID) decimal.Decimal {
	repo, err := s.uow.AccountRepository()
	s.Require().NoError(err)
	acc, err := repo.Get(s.ctx, id)
	s.Require().NoError(err)
	return acc.Balance
}

func (s *LedgerTestSuite) runningBalances(id uuid.UUID) []string {
	repo, err := s.uow.TransactionRepository()
	s.Require().NoError(err)
	entries, err := repo.Timeline(s.ctx, id)
	s.Require().NoError(err)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.RunningBalance.StringFixed(2))
	}
	return out
}

func (s *LedgerTestSuite) TestCreateRecomputesBalance() {
	s.post(transaction.TypeIncome, "100", common.Date(2025, time.January, 1))
	s.post(transaction.TypeExpense, "30.5", common.Date(2025, time.January, 2))

	s.assertAmount("69.5", s.balanceOf(s.wallet.ID))
	s.Equal([]string{"100.00", "69.50"}, s.runningBalances(s.wallet.ID))
}

func (s *LedgerTestSuite) TestBackdatedEntryRewritesLaterRunningBalances() {
	s.post(transaction.TypeIncome, "100", common.Date(2025, time.January, 1))
	s.post(transaction.TypeIncome, "50", common.Date(2025, time.January, 10))
	s.post(transaction.TypeExpense, "20", common.Date(2025, time.January, 5))

	s.Equal([]string{"100.00", "80.00", "130.00"}, s.runningBalances(s.wallet.ID))
	s.assertAmount("130", s.balanceOf(s.wallet.ID))
}

func (s *LedgerTestSuite) TestCreateRejections() {
	s.Run("missing category", func() {
		_, err := s.svc.Create(s.ctx, s.userID, transaction.Transaction{
			AccountID:       s.wallet.ID,
			Type:            transaction.TypeExpense,
			Amount:          money.MustParse("10"),
			TransactionDate: common.Date(2025, time.January, 1),
		})
		s.ErrorIs(err, domain.ErrValidation)
	})

	s.Run("internal type", func() {
		_, err := s.svc.Create(s.ctx, s.userID, transaction.Transaction{
			AccountID:       s.wallet.ID,
			Type:            transaction.TypeInitial,
			Amount:          money.MustParse("10"),
			TransactionDate: common.Date(2025, time.January, 1),
		})
		s.ErrorIs(err, domain.ErrValidation)
	})

	s.Run("foreign account", func() {
		category := s.food
		_, err := s.svc.Create(s.ctx, uuid.New(), transaction.Transaction{
			AccountID:       s.wallet.ID,
			Type:            transaction.TypeExpense,
			Amount:          money.MustParse("10"),
			TransactionDate: common.Date(2025, time.January, 1),
			CategoryID:      &category,
		})
		s.ErrorIs(err, account.ErrNotOwner)
	})

	s.Run("inactive account", func() {
		closed := s.openAccount(money.USD)
		closed.Active = false
		repo, err := s.uow.AccountRepository()
		s.Require().NoError(err)
		s.Require().NoError(repo.Update(s.ctx, closed))

		category := s.food
		_, err = s.svc.Create(s.ctx, s.userID, transaction.Transaction{
			AccountID:       closed.ID,
			Type:            transaction.TypeExpense,
			Amount:          money.MustParse("10"),
			TransactionDate: common.Date(2025, time.January, 1),
			CategoryID:      &category,
		})
		s.ErrorIs(err, account.ErrInactive)
	})

	s.assertAmount("0", s.balanceOf(s.wallet.ID))
}

func (s *LedgerTestSuite) TestUpdateEntry() {
	s.post(transaction.TypeIncome, "100", common.Date(2025, time.January, 1))
	expense := s.post(transaction.TypeExpense, "30", common.Date(2025, time.January, 2))

	updated, err := s.svc.Update(s.ctx, s.userID, expense.ID, ledger.EntryChanges{
		Amount:          money.MustParse("45"),
		TransactionDate: common.Date(2025, time.January, 3),
		CategoryID:      expense.CategoryID,
		Description:     "groceries",
	})
	s.Require().NoError(err)
	s.Equal("groceries", updated.Description)
	s.assertAmount("55", s.balanceOf(s.wallet.ID))

	_, err = s.svc.Update(s.ctx, uuid.New(), expense.ID, ledger.EntryChanges{
		Amount:          money.MustParse("1"),
		TransactionDate: common.Date(2025, time.January, 3),
		CategoryID:      expense.CategoryID,
	})
	s.ErrorIs(err, ledger.ErrNotOwner)
}

func (s *LedgerTestSuite) TestDeleteAndRestore() {
	s.post(transaction.TypeIncome, "100", common.Date(2025, time.January, 1))
	expense := s.post(transaction.TypeExpense, "40", common.Date(2025, time.January, 2))
	s.assertAmount("60", s.balanceOf(s.wallet.ID))

	s.Require().NoError(s.svc.Delete(s.ctx, s.userID, expense.ID))
	s.assertAmount("100", s.balanceOf(s.wallet.ID))
	_, err := s.svc.Get(s.ctx, s.userID, expense.ID)
	s.ErrorIs(err, domain.ErrNotFound)

	restored, err := s.svc.Restore(s.ctx, s.userID, expense.ID)
	s.Require().NoError(err)
	s.False(restored.IsDeleted())
	s.assertAmount("60", s.balanceOf(s.wallet.ID))

	_, err = s.svc.Restore(s.ctx, s.userID, expense.ID)
	s.NoError(err, "restoring a live entry is a no-op")
	s.assertAmount("60", s.balanceOf(s.wallet.ID))
}

func (s *LedgerTestSuite) TestTransferSameCurrency() {
	savings := s.openAccount(money.USD)
	s.post(transaction.TypeIncome, "100", common.Date(2025, time.January, 1))

	t, err := s.svc.CreateTransfer(s.ctx, s.userID, ledger.TransferRequest{
		SourceAccountID:      s.wallet.ID,
		DestinationAccountID: savings.ID,
		Amount:               money.MustParse("40"),
		Date:                 common.Date(2025, time.January, 2),
	})
	s.Require().NoError(err)
	s.Equal(transaction.TypeTransferOut, t.Out.Type)
	s.Equal(transaction.TypeTransferIn, t.In.Type)
	s.Equal(t.In.ID, *t.Out.RelatedTransactionID)
	s.Equal(t.Out.ID, *t.In.RelatedTransactionID)
	s.False(t.Out.ConversionRate.Valid)

	s.assertAmount("60", s.balanceOf(s.wallet.ID))
	s.assertAmount("40", s.balanceOf(savings.ID))

	_, err = s.svc.Update(s.ctx, s.userID, t.In.ID, ledger.EntryChanges{
		Amount:          money.MustParse("1"),
		TransactionDate: common.Date(2025, time.January, 2),
	})
	s.ErrorIs(err, transaction.ErrImmutable)

	s.Require().NoError(s.svc.Delete(s.ctx, s.userID, t.In.ID))
	s.assertAmount("100", s.balanceOf(s.wallet.ID))
	s.assertAmount("0", s.balanceOf(savings.ID))
	_, err = s.svc.Get(s.ctx, s.userID, t.Out.ID)
	s.ErrorIs(err, domain.ErrNotFound, "deleting one leg deletes its pair")

	_, err = s.svc.Restore(s.ctx, s.userID, t.Out.ID)
	s.Require().NoError(err)
	s.assertAmount("60", s.balanceOf(s.wallet.ID))
	s.assertAmount("40", s.balanceOf(savings.ID))
}

func (s *LedgerTestSuite) TestTransferCrossCurrency() {
	euros := s.openAccount(money.EUR)
	s.post(transaction.TypeIncome, "100", common.Date(2025, time.January, 1))

	t, err := s.svc.CreateTransfer(s.ctx, s.userID, ledger.TransferRequest{
		SourceAccountID:      s.wallet.ID,
		DestinationAccountID: euros.ID,
		Amount:               money.MustParse("100"),
		Date:                 common.Date(2025, time.January, 2),
		ConversionRate:       decimal.NewNullDecimal(money.MustParse("0.9")),
	})
	s.Require().NoError(err)
	s.assertAmount("100", t.Out.Amount)
	s.assertAmount("90", t.In.Amount)
	s.True(t.In.ConvertedAmount.Valid)

	s.assertAmount("0", s.balanceOf(s.wallet.ID))
	s.assertAmount("90", s.balanceOf(euros.ID))
}

func (s *LedgerTestSuite) TestTransferValidation() {
	_, err := s.svc.CreateTransfer(s.ctx, s.userID, ledger.TransferRequest{
		SourceAccountID:      s.wallet.ID,
		DestinationAccountID: s.wallet.ID,
		Amount:               money.MustParse("1"),
		Date:                 common.Date(2025, time.January, 2),
	})
	fields, ok := domain.IsValidation(err)
	s.Require().True(ok)
	s.Contains(fields, "destination_account_id")

	_, err = s.svc.CreateTransfer(s.ctx, s.userID, ledger.TransferRequest{
		SourceAccountID:      s.wallet.ID,
		DestinationAccountID: uuid.New(),
		Amount:               money.MustParse("1"),
		Date:                 common.Date(2025, time.January, 2),
	})
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *LedgerTestSuite) TestCreateWithTransferTypeWritesPair() {
	savings := s.openAccount(money.USD)
	dest := savings.ID
	out, err := s.svc.Create(s.ctx, s.userID, transaction.Transaction{
		AccountID:            s.wallet.ID,
		Type:                 transaction.TypeTransfer,
		Amount:               money.MustParse("25"),
		TransactionDate:      common.Date(2025, time.January, 2),
		DestinationAccountID: &dest,
	})
	s.Require().NoError(err)
	s.Equal(transaction.TypeTransferOut, out.Type)
	s.assertAmount("-25", s.balanceOf(s.wallet.ID))
	s.assertAmount("25", s.balanceOf(savings.ID))
}

func (s *LedgerTestSuite) obligation(total string) *obligation.Obligation {
	o, err := s.svc.CreateObligation(s.ctx, &obligation.Obligation{
		Kind:        obligation.KindPayable,
		UserID:      s.userID,
		ContactID:   uuid.New(),
		Currency:    money.USD,
		Description: "rent",
		AmountTotal: money.MustParse(total),
		DueDate:     common.Date(2025, time.February, 1),
	})
	s.Require().NoError(err)
	return o
}

func (s *LedgerTestSuite) getObligation(id uuid.UUID) *obligation.Obligation {
	repo, err := s.uow.ObligationRepository()
	s.Require().NoError(err)
	o, err := repo.Get(s.ctx, id)
	s.Require().NoError(err)
	return o
}

func (s *LedgerTestSuite) TestSettleAndReverse() {
	o := s.obligation("100")

	first, err := s.svc.Settle(s.ctx, s.userID, ledger.SettleRequest{
		ObligationID: o.ID,
		AccountID:    s.wallet.ID,
		Amount:       money.MustParse("40"),
		Date:         common.Date(2025, time.January, 20),
	})
	s.Require().NoError(err)
	s.Equal(obligation.StatusPartial, first.Obligation.Status)
	s.Equal(transaction.TypeExpense, first.Transaction.Type)
	s.Equal(transaction.OriginSettlement, first.Transaction.Origin)
	s.Equal(first.Transaction.ID, *first.Payment.TransactionID)

	_, err = s.svc.Settle(s.ctx, s.userID, ledger.SettleRequest{
		ObligationID: o.ID,
		AccountID:    s.wallet.ID,
		Amount:       money.MustParse("60"),
		Date:         common.Date(2025, time.January, 25),
	})
	s.Require().NoError(err)
	stored := s.getObligation(o.ID)
	s.Equal(obligation.StatusPaid, stored.Status)
	s.assertAmount("100", stored.AmountPaid)
	s.assertAmount("-100", s.balanceOf(s.wallet.ID))

	s.Require().NoError(s.svc.Delete(s.ctx, s.userID, first.Transaction.ID))
	stored = s.getObligation(o.ID)
	s.Equal(obligation.StatusPartial, stored.Status)
	s.assertAmount("60", stored.AmountPaid)
	s.assertAmount("-60", s.balanceOf(s.wallet.ID))

	payments, err := s.uow.PaymentRepository()
	s.Require().NoError(err)
	list, err := payments.ListByObligation(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
	s.NoError(obligation.CheckConservation(stored, list))

	_, err = s.svc.Restore(s.ctx, s.userID, first.Transaction.ID)
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.svc.Update(s.ctx, s.userID, *list[0].TransactionID, ledger.EntryChanges{})
	s.ErrorIs(err, transaction.ErrImmutable)
}

func (s *LedgerTestSuite) TestSettleRejections() {
	o := s.obligation("100")

	_, err := s.svc.Settle(s.ctx, s.userID, ledger.SettleRequest{
		ObligationID: o.ID,
		AccountID:    s.wallet.ID,
		Amount:       decimal.Zero,
		Date:         common.Date(2025, time.January, 20),
	})
	s.ErrorIs(err, domain.ErrValidation)

	euros := s.openAccount(money.EUR)
	_, err = s.svc.Settle(s.ctx, s.userID, ledger.SettleRequest{
		ObligationID: o.ID,
		AccountID:    euros.ID,
		Amount:       money.MustParse("10"),
		Date:         common.Date(2025, time.January, 20),
	})
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.svc.Settle(s.ctx, uuid.New(), ledger.SettleRequest{
		ObligationID: o.ID,
		AccountID:    s.wallet.ID,
		Amount:       money.MustParse("10"),
		Date:         common.Date(2025, time.January, 20),
	})
	s.ErrorIs(err, ledger.ErrNotOwner)

	stored := s.getObligation(o.ID)
	s.Equal(obligation.StatusOpen, stored.Status)
	s.assertAmount("0", s.balanceOf(s.wallet.ID))
}

func (s *LedgerTestSuite) TestOverpaymentMarksPaid() {
	o := s.obligation("50")
	res, err := s.svc.Settle(s.ctx, s.userID, ledger.SettleRequest{
		ObligationID: o.ID,
		AccountID:    s.wallet.ID,
		Amount:       money.MustParse("75"),
		Date:         common.Date(2025, time.January, 20),
	})
	s.Require().NoError(err)
	s.Equal(obligation.StatusPaid, res.Obligation.Status)
	s.assertAmount("75", res.Obligation.AmountPaid)
	s.True(res.Obligation.Outstanding().IsZero())
}

func (s *LedgerTestSuite) TestReconcileObligation() {
	o := s.obligation("100")
	_, err := s.svc.Settle(s.ctx, s.userID, ledger.SettleRequest{
		ObligationID: o.ID,
		AccountID:    s.wallet.ID,
		Amount:       money.MustParse("30"),
		Date:         common.Date(2025, time.January, 20),
	})
	s.Require().NoError(err)

	repaired, err := s.svc.ReconcileObligation(s.ctx, o.ID)
	s.Require().NoError(err)
	s.False(repaired)

	repo, err := s.uow.ObligationRepository()
	s.Require().NoError(err)
	stale := s.getObligation(o.ID)
	s.Require().NoError(repo.UpdatePaid(s.ctx, stale, money.MustParse("100"), obligation.StatusPaid))

	repaired, err = s.svc.ReconcileObligation(s.ctx, o.ID)
	s.Require().NoError(err)
	s.True(repaired)
	stored := s.getObligation(o.ID)
	s.assertAmount("30", stored.AmountPaid)
	s.Equal(obligation.StatusPartial, stored.Status)
}

func (s *LedgerTestSuite) foodBudget(amount string) *budget.Budget {
	p, err := s.budgets.CreatePeriod(s.ctx, &budget.Period{
		UserID:    s.userID,
		Name:      "January",
		Type:      budget.PeriodMonthly,
		StartDate: common.Date(2025, time.January, 1),
		EndDate:   common.Date(2025, time.January, 31),
		Active:    true,
	})
	s.Require().NoError(err)
	b, err := s.budgets.CreateBudget(s.ctx, &budget.Budget{
		UserID:     s.userID,
		CategoryID: s.food,
		Kind:       budget.KindPeriod,
		PeriodID:   &p.ID,
		Amount:     money.MustParse(amount),
		Active:     true,
	})
	s.Require().NoError(err)
	return b
}

func (s *LedgerTestSuite) spent(b *budget.Budget) decimal.Decimal {
	summary, err := s.budgets.SummaryForBudget(s.ctx, s.userID, b.ID)
	s.Require().NoError(err)
	return summary.TotalSpent
}

func (s *LedgerTestSuite) TestEntryWritesInvalidateBudgetSummary() {
	b := s.foodBudget("200")
	s.assertAmount("0", s.spent(b))

	expense := s.post(transaction.TypeExpense, "50", common.Date(2025, time.January, 15))
	s.assertAmount("50", s.spent(b), "create")

	_, err := s.svc.Update(s.ctx, s.userID, expense.ID, ledger.EntryChanges{
		Amount:          money.MustParse("80"),
		TransactionDate: expense.TransactionDate,
		CategoryID:      expense.CategoryID,
	})
	s.Require().NoError(err)
	s.assertAmount("80", s.spent(b), "update")

	_, err = s.svc.Update(s.ctx, s.userID, expense.ID, ledger.EntryChanges{
		Amount:          money.MustParse("80"),
		TransactionDate: common.Date(2025, time.February, 2),
		CategoryID:      expense.CategoryID,
	})
	s.Require().NoError(err)
	s.assertAmount("0", s.spent(b), "moved out of the period")

	s.Require().NoError(s.svc.Delete(s.ctx, s.userID, expense.ID))
	_, err = s.svc.Restore(s.ctx, s.userID, expense.ID)
	s.Require().NoError(err)
	s.assertAmount("0", s.spent(b), "restored outside the period")

	s.post(transaction.TypeExpense, "20", common.Date(2025, time.January, 31))
	s.assertAmount("20", s.spent(b), "last day of the period")
}

func (s *LedgerTestSuite) TestSplitsReallocateSpending() {
	b := s.foodBudget("200")
	other := uuid.New()
	expense, err := s.svc.Create(s.ctx, s.userID, transaction.Transaction{
		AccountID:       s.wallet.ID,
		Type:            transaction.TypeExpense,
		Amount:          money.MustParse("100"),
		TransactionDate: common.Date(2025, time.January, 10),
		CategoryID:      &other,
	})
	s.Require().NoError(err)
	s.assertAmount("0", s.spent(b))

	food := s.food
	split, err := s.svc.CreateSplit(s.ctx, s.userID, &transaction.Split{
		TransactionID: expense.ID,
		CategoryID:    &food,
		Amount:        money.MustParse("40"),
	})
	s.Require().NoError(err)
	s.assertAmount("40", s.spent(b))

	split.Amount = money.MustParse("70")
	_, err = s.svc.UpdateSplit(s.ctx, s.userID, split)
	s.Require().NoError(err)
	s.assertAmount("70", s.spent(b))

	_, err = s.svc.CreateSplit(s.ctx, s.userID, &transaction.Split{
		TransactionID: expense.ID,
		CategoryID:    &food,
		Amount:        money.MustParse("31"),
	})
	s.ErrorIs(err, domain.ErrValidation, "splits may not exceed the entry")

	s.Require().NoError(s.svc.DeleteSplit(s.ctx, s.userID, split.ID))
	s.assertAmount("0", s.spent(b))

	s.Require().NoError(s.svc.RestoreSplit(s.ctx, s.userID, split.ID))
	s.assertAmount("70", s.spent(b))

	s.assertAmount("-100", s.balanceOf(s.wallet.ID), "splits never move the balance")
}

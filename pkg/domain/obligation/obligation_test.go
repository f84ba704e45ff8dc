package obligation_test

import (
	"testing"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	t.Parallel()
	total := money.MustParse("100")
	assert.Equal(t, obligation.StatusOpen, obligation.DeriveStatus(decimal.Zero, total))
	assert.Equal(t, obligation.StatusPartial, obligation.DeriveStatus(money.MustParse("0.01"), total))
	assert.Equal(t, obligation.StatusPaid, obligation.DeriveStatus(total, total))
	assert.Equal(t, obligation.StatusPaid, obligation.DeriveStatus(money.MustParse("120"), total))
}

func TestSettlementType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, transaction.TypeExpense, obligation.KindPayable.SettlementType())
	assert.Equal(t, transaction.TypeIncome, obligation.KindReceivable.SettlementType())
}

func TestWithPaidAndConservation(t *testing.T) {
	t.Parallel()
	o := &obligation.Obligation{
		ID:          uuid.New(),
		AmountTotal: money.MustParse("50"),
		AmountPaid:  money.MustParse("20"),
		Status:      obligation.StatusPartial,
	}
	paid, status, err := o.WithPaid(money.MustParse("30"))
	require.NoError(t, err)
	assert.Equal(t, "50", paid.String())
	assert.Equal(t, obligation.StatusPaid, status)

	paid, status, err = o.WithPaid(money.MustParse("-20"))
	require.NoError(t, err)
	assert.True(t, paid.IsZero())
	assert.Equal(t, obligation.StatusOpen, status)

	_, _, err = o.WithPaid(money.MustParse("-25"))
	assert.ErrorIs(t, err, domain.ErrConsistencyViolation)

	payments := []*obligation.Payment{{Amount: money.MustParse("20")}}
	assert.NoError(t, obligation.CheckConservation(o, payments))
	payments = append(payments, &obligation.Payment{Amount: money.MustParse("1")})
	assert.ErrorIs(t, obligation.CheckConservation(o, payments), domain.ErrConsistencyViolation)
	assert.Equal(t, "30", o.Outstanding().String())
}

func TestRecurrenceRule(t *testing.T) {
	t.Parallel()
	day := 31
	rule := obligation.RecurrenceRule{Frequency: obligation.FrequencyMonthly, DayOfMonth: &day}
	require.NoError(t, rule.Validate())
	next := rule.Next(common.Date(2025, time.January, 31))
	assert.Equal(t, "2025-02-28", next.Format(common.DateLayout))

	bad := 32
	assert.ErrorIs(t, obligation.RecurrenceRule{DayOfMonth: &bad}.Validate(), domain.ErrValidation)
	assert.ErrorIs(t, obligation.RecurrenceRule{Frequency: "weekly"}.Validate(), domain.ErrValidation)

	implicit := obligation.RecurrenceRule{}
	assert.Equal(t, "2025-03-15", implicit.Next(common.Date(2025, time.February, 15)).Format(common.DateLayout))
}

func TestSeriesOccurrence(t *testing.T) {
	t.Parallel()
	due := common.Date(2025, time.January, 1)
	s := &obligation.Series{
		ID:            uuid.New(),
		Kind:          obligation.KindReceivable,
		UserID:        uuid.New(),
		ContactID:     uuid.New(),
		Currency:      money.EUR,
		Name:          "rent",
		DefaultAmount: money.MustParse("900"),
		IsRecurring:   true,
		NextDueDate:   &due,
	}
	require.NoError(t, s.Validate())
	assert.True(t, s.IsDue(common.Date(2025, time.January, 1)))
	assert.False(t, s.IsDue(common.Date(2024, time.December, 31)))

	o := s.Occurrence(due)
	assert.Equal(t, obligation.StatusOpen, o.Status)
	assert.True(t, o.AmountPaid.IsZero())
	assert.Equal(t, s.ID, *o.SeriesID)
	assert.Nil(t, o.OriginTransactionID)
	assert.NoError(t, o.Validate())
}

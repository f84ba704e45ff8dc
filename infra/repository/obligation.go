package repository

import (
	"context"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/obligation"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type obligationRepository struct {
	db *gorm.DB
}

// NewObligationRepository creates a gorm backed payable/receivable repository.
func NewObligationRepository(db *gorm.DB) repository.ObligationRepository {
	return &obligationRepository{db: db}
}

func (r *obligationRepository) Create(ctx context.Context, o *obligation.Obligation) error {
	m := Obligation{
		ID:                  o.ID,
		Kind:                string(o.Kind),
		UserID:              o.UserID,
		ContactID:           o.ContactID,
		Currency:            o.Currency.String(),
		SeriesID:            o.SeriesID,
		Description:         o.Description,
		AmountTotal:         o.AmountTotal,
		AmountPaid:          o.AmountPaid,
		Status:              string(o.Status),
		DueDate:             common.DateOf(o.DueDate),
		OriginTransactionID: o.OriginTransactionID,
		Version:             o.Version,
	}
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	o.CreatedAt, o.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *obligationRepository) Get(ctx context.Context, id uuid.UUID) (*obligation.Obligation, error) {
	var m Obligation
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, obligation.ErrObligationNotFound)
	}
	return obligationToDomain(&m), nil
}

func (r *obligationRepository) UpdatePaid(
	ctx context.Context,
	o *obligation.Obligation,
	paid decimal.Decimal,
	status obligation.Status,
) error {
	res := r.db.WithContext(ctx).Model(&Obligation{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"amount_paid": paid,
			"status":      string(status),
			"version":     o.Version + 1,
			"updated_at":  time.Now().UTC(),
		})
	if err := checkVersion(res); err != nil {
		return err
	}
	o.AmountPaid, o.Status = paid, status
	o.Version++
	return nil
}

func (r *obligationRepository) ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]*obligation.Obligation, error) {
	var ms []Obligation
	if err := r.db.WithContext(ctx).Where("series_id = ?", seriesID).Order("due_date, id").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*obligation.Obligation, 0, len(ms))
	for i := range ms {
		out = append(out, obligationToDomain(&ms[i]))
	}
	return out, nil
}

func obligationToDomain(m *Obligation) *obligation.Obligation {
	return &obligation.Obligation{
		ID:                  m.ID,
		Kind:                obligation.Kind(m.Kind),
		UserID:              m.UserID,
		ContactID:           m.ContactID,
		Currency:            money.Code(m.Currency),
		SeriesID:            m.SeriesID,
		Description:         m.Description,
		AmountTotal:         m.AmountTotal,
		AmountPaid:          m.AmountPaid,
		Status:              obligation.Status(m.Status),
		DueDate:             common.DateOf(m.DueDate),
		OriginTransactionID: m.OriginTransactionID,
		Version:             m.Version,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a gorm backed settlement payment repository.
func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *obligation.Payment) error {
	m := ObligationPayment{
		ID:            p.ID,
		Kind:          string(p.Kind),
		ObligationID:  p.ObligationID,
		AccountID:     p.AccountID,
		Amount:        p.Amount,
		PaidAt:        common.DateOf(p.PaidAt),
		Note:          p.Note,
		CategoryID:    p.CategoryID,
		TransactionID: p.TransactionID,
	}
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	p.CreatedAt = m.CreatedAt
	return nil
}

func (r *paymentRepository) GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*obligation.Payment, error) {
	var m ObligationPayment
	if err := r.db.WithContext(ctx).First(&m, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, mapNotFound(err, obligation.ErrPaymentNotFound)
	}
	return paymentToDomain(&m), nil
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&ObligationPayment{}, "id = ?", id)
	return checkAffected(res, obligation.ErrPaymentNotFound)
}

func (r *paymentRepository) ListByObligation(ctx context.Context, obligationID uuid.UUID) ([]*obligation.Payment, error) {
	var ms []ObligationPayment
	if err := r.db.WithContext(ctx).Where("obligation_id = ?", obligationID).Order("paid_at, id").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*obligation.Payment, 0, len(ms))
	for i := range ms {
		out = append(out, paymentToDomain(&ms[i]))
	}
	return out, nil
}

func paymentToDomain(m *ObligationPayment) *obligation.Payment {
	return &obligation.Payment{
		ID:            m.ID,
		Kind:          obligation.Kind(m.Kind),
		ObligationID:  m.ObligationID,
		AccountID:     m.AccountID,
		Amount:        m.Amount,
		PaidAt:        common.DateOf(m.PaidAt),
		Note:          m.Note,
		CategoryID:    m.CategoryID,
		TransactionID: m.TransactionID,
		CreatedAt:     m.CreatedAt,
	}
}

type seriesRepository struct {
	db *gorm.DB
}

// NewSeriesRepository creates a gorm backed obligation series repository.
func NewSeriesRepository(db *gorm.DB) repository.SeriesRepository {
	return &seriesRepository{db: db}
}

func (r *seriesRepository) Create(ctx context.Context, s *obligation.Series) error {
	m := ObligationSeries{
		ID:             s.ID,
		Kind:           string(s.Kind),
		UserID:         s.UserID,
		ContactID:      s.ContactID,
		Currency:       s.Currency.String(),
		Name:           s.Name,
		DefaultAmount:  s.DefaultAmount,
		IsRecurring:    s.IsRecurring,
		RecurrenceRule: RuleColumn(s.RecurrenceRule),
		NextDueDate:    datePtr(s.NextDueDate),
		Version:        s.Version,
	}
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	s.CreatedAt, s.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *seriesRepository) Get(ctx context.Context, id uuid.UUID) (*obligation.Series, error) {
	var m ObligationSeries
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, obligation.ErrSeriesNotFound)
	}
	return seriesToDomain(&m), nil
}

func (r *seriesRepository) ListDue(ctx context.Context, today time.Time) ([]*obligation.Series, error) {
	var ms []ObligationSeries
	err := r.db.WithContext(ctx).
		Where("is_recurring = ? AND next_due_date IS NOT NULL AND next_due_date <= ?", true, common.DateOf(today)).
		Order("next_due_date, id").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*obligation.Series, 0, len(ms))
	for i := range ms {
		out = append(out, seriesToDomain(&ms[i]))
	}
	return out, nil
}

func (r *seriesRepository) Advance(ctx context.Context, s *obligation.Series, next time.Time) error {
	next = common.DateOf(next)
	res := r.db.WithContext(ctx).Model(&ObligationSeries{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]any{
			"next_due_date": next,
			"version":       s.Version + 1,
			"updated_at":    time.Now().UTC(),
		})
	if err := checkVersion(res); err != nil {
		return err
	}
	s.NextDueDate = &next
	s.Version++
	return nil
}

func seriesToDomain(m *ObligationSeries) *obligation.Series {
	return &obligation.Series{
		ID:             m.ID,
		Kind:           obligation.Kind(m.Kind),
		UserID:         m.UserID,
		ContactID:      m.ContactID,
		Currency:       money.Code(m.Currency),
		Name:           m.Name,
		DefaultAmount:  m.DefaultAmount,
		IsRecurring:    m.IsRecurring,
		RecurrenceRule: obligation.RecurrenceRule(m.RecurrenceRule),
		NextDueDate:    datePtr(m.NextDueDate),
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := common.DateOf(*t)
	return &d
}

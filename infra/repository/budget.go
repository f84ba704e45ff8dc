package repository

import (
	"context"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/budget"
	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type budgetPeriodRepository struct {
	db *gorm.DB
}

// NewBudgetPeriodRepository creates a gorm backed budget period repository.
func NewBudgetPeriodRepository(db *gorm.DB) repository.BudgetPeriodRepository {
	return &budgetPeriodRepository{db: db}
}

func (r *budgetPeriodRepository) Create(ctx context.Context, p *budget.Period) error {
	m := BudgetPeriod{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Type:      string(p.Type),
		StartDate: common.DateOf(p.StartDate),
		EndDate:   common.DateOf(p.EndDate),
		Active:    p.Active,
	}
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	p.CreatedAt, p.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *budgetPeriodRepository) Get(ctx context.Context, id uuid.UUID) (*budget.Period, error) {
	var m BudgetPeriod
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, budget.ErrPeriodNotFound)
	}
	return periodToDomain(&m), nil
}

func (r *budgetPeriodRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*budget.Period, error) {
	var m BudgetPeriod
	if err := r.db.WithContext(ctx).First(&m, "user_id = ? AND name = ?", userID, name).Error; err != nil {
		return nil, mapNotFound(err, budget.ErrPeriodNotFound)
	}
	return periodToDomain(&m), nil
}

func (r *budgetPeriodRepository) ListContaining(ctx context.Context, userID uuid.UUID, date time.Time) ([]*budget.Period, error) {
	d := common.DateOf(date)
	var ms []BudgetPeriod
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, d, d).
		Order("start_date, id").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*budget.Period, 0, len(ms))
	for i := range ms {
		out = append(out, periodToDomain(&ms[i]))
	}
	return out, nil
}

func periodToDomain(m *BudgetPeriod) *budget.Period {
	return &budget.Period{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Type:      budget.PeriodType(m.Type),
		StartDate: common.DateOf(m.StartDate),
		EndDate:   common.DateOf(m.EndDate),
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a gorm backed budget repository.
func NewBudgetRepository(db *gorm.DB) repository.BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	m := budgetFromDomain(b)
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	b.CreatedAt, b.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *budgetRepository) Get(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	var m Budget
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, budget.ErrBudgetNotFound)
	}
	return budgetToDomain(&m), nil
}

func (r *budgetRepository) GetWithDeleted(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	var m Budget
	if err := r.db.WithContext(ctx).Unscoped().First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, budget.ErrBudgetNotFound)
	}
	return budgetToDomain(&m), nil
}

func (r *budgetRepository) Update(ctx context.Context, b *budget.Budget) error {
	res := r.db.WithContext(ctx).Model(&Budget{}).Where("id = ?", b.ID).Updates(map[string]any{
		"category_id": b.CategoryID,
		"period_id":   b.PeriodID,
		"amount":      b.Amount,
		"start_date":  datePtr(b.StartDate),
		"end_date":    datePtr(b.EndDate),
		"active":      b.Active,
		"updated_at":  time.Now().UTC(),
	})
	return checkAffected(res, budget.ErrBudgetNotFound)
}

func (r *budgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Budget{}, "id = ?", id)
	return checkAffected(res, budget.ErrBudgetNotFound)
}

func (r *budgetRepository) Restore(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&Budget{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	return checkAffected(res, budget.ErrBudgetNotFound)
}

func (r *budgetRepository) ForceDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&Budget{}, "id = ?", id)
	return checkAffected(res, budget.ErrBudgetNotFound)
}

func (r *budgetRepository) FindForPeriod(ctx context.Context, userID, categoryID, periodID uuid.UUID) (*budget.Budget, error) {
	var m Budget
	err := r.db.WithContext(ctx).
		First(&m, "user_id = ? AND category_id = ? AND period_id = ?", userID, categoryID, periodID).Error
	if err != nil {
		return nil, mapNotFound(err, budget.ErrBudgetNotFound)
	}
	return budgetToDomain(&m), nil
}

func (r *budgetRepository) ListByPeriods(ctx context.Context, userID uuid.UUID, periodIDs []uuid.UUID) ([]*budget.Budget, error) {
	if len(periodIDs) == 0 {
		return nil, nil
	}
	var ms []Budget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_id IN ?", userID, periodIDs).
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return budgetsToDomain(ms), nil
}

func (r *budgetRepository) ListOneTimeCovering(ctx context.Context, userID uuid.UUID, date time.Time) ([]*budget.Budget, error) {
	d := common.DateOf(date)
	var ms []Budget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND start_date <= ? AND end_date >= ?",
			userID, string(budget.KindOneTime), d, d).
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return budgetsToDomain(ms), nil
}

func budgetFromDomain(b *budget.Budget) Budget {
	return Budget{
		ID:         b.ID,
		UserID:     b.UserID,
		CategoryID: b.CategoryID,
		Kind:       string(b.Kind),
		PeriodID:   b.PeriodID,
		Amount:     b.Amount,
		StartDate:  datePtr(b.StartDate),
		EndDate:    datePtr(b.EndDate),
		Active:     b.Active,
	}
}

func budgetToDomain(m *Budget) *budget.Budget {
	b := &budget.Budget{
		ID:         m.ID,
		UserID:     m.UserID,
		CategoryID: m.CategoryID,
		Kind:       budget.Kind(m.Kind),
		PeriodID:   m.PeriodID,
		Amount:     m.Amount,
		StartDate:  datePtr(m.StartDate),
		EndDate:    datePtr(m.EndDate),
		Active:     m.Active,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		deleted := m.DeletedAt.Time
		b.DeletedAt = &deleted
	}
	return b
}

func budgetsToDomain(ms []Budget) []*budget.Budget {
	out := make([]*budget.Budget, 0, len(ms))
	for i := range ms {
		out = append(out, budgetToDomain(&ms[i]))
	}
	return out
}

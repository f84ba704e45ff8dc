package repository

import (
	"context"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/money"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a gorm backed account repository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, account.ErrAccountNotFound)
	}
	return accountToDomain(&m), nil
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := accountFromDomain(a)
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	a.CreatedAt, a.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", a.ID).Updates(map[string]any{
		"name":       a.Name,
		"type":       string(a.Type),
		"active":     a.Active,
		"updated_at": time.Now().UTC(),
	})
	return checkAffected(res, account.ErrAccountNotFound)
}

func (r *accountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).Updates(map[string]any{
		"balance":    balance,
		"updated_at": time.Now().UTC(),
	})
	return checkAffected(res, account.ErrAccountNotFound)
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var ms []Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*account.Account, 0, len(ms))
	for i := range ms {
		out = append(out, accountToDomain(&ms[i]))
	}
	return out, nil
}

func (r *accountRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&Account{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return ids, nil
}

func accountFromDomain(a *account.Account) Account {
	return Account{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Currency:  a.Currency.String(),
		Type:      string(a.Type),
		Balance:   a.Balance,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func accountToDomain(m *Account) *account.Account {
	return &account.Account{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Currency:  money.Code(m.Currency),
		Type:      account.Type(m.Type),
		Balance:   m.Balance,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

package repository

import (
	"context"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type splitRepository struct {
	db *gorm.DB
}

// NewSplitRepository creates a gorm backed split repository.
func NewSplitRepository(db *gorm.DB) repository.SplitRepository {
	return &splitRepository{db: db}
}

func (r *splitRepository) Create(ctx context.Context, s *transaction.Split) error {
	m := TransactionSplit{
		ID:            s.ID,
		TransactionID: s.TransactionID,
		CategoryID:    s.CategoryID,
		Amount:        s.Amount,
	}
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	s.CreatedAt, s.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *splitRepository) Get(ctx context.Context, id uuid.UUID) (*transaction.Split, error) {
	var m TransactionSplit
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, transaction.ErrSplitNotFound)
	}
	return splitToDomain(&m), nil
}

func (r *splitRepository) GetWithDeleted(ctx context.Context, id uuid.UUID) (*transaction.Split, error) {
	var m TransactionSplit
	if err := r.db.WithContext(ctx).Unscoped().First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, transaction.ErrSplitNotFound)
	}
	return splitToDomain(&m), nil
}

func (r *splitRepository) Update(ctx context.Context, s *transaction.Split) error {
	res := r.db.WithContext(ctx).Model(&TransactionSplit{}).Where("id = ?", s.ID).Updates(map[string]any{
		"category_id": s.CategoryID,
		"amount":      s.Amount,
		"updated_at":  time.Now().UTC(),
	})
	return checkAffected(res, transaction.ErrSplitNotFound)
}

func (r *splitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&TransactionSplit{}, "id = ?", id)
	return checkAffected(res, transaction.ErrSplitNotFound)
}

func (r *splitRepository) Restore(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&TransactionSplit{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	return checkAffected(res, transaction.ErrSplitNotFound)
}

func (r *splitRepository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Split, error) {
	var ms []TransactionSplit
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Order("id").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*transaction.Split, 0, len(ms))
	for i := range ms {
		out = append(out, splitToDomain(&ms[i]))
	}
	return out, nil
}

func (r *splitRepository) ListByTransactions(ctx context.Context, transactionIDs []uuid.UUID) (map[uuid.UUID][]*transaction.Split, error) {
	out := make(map[uuid.UUID][]*transaction.Split)
	if len(transactionIDs) == 0 {
		return out, nil
	}
	var ms []TransactionSplit
	if err := r.db.WithContext(ctx).Where("transaction_id IN ?", transactionIDs).Order("id").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	for i := range ms {
		s := splitToDomain(&ms[i])
		out[s.TransactionID] = append(out[s.TransactionID], s)
	}
	return out, nil
}

func splitToDomain(m *TransactionSplit) *transaction.Split {
	s := &transaction.Split{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		CategoryID:    m.CategoryID,
		Amount:        m.Amount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		deleted := m.DeletedAt.Time
		s.DeletedAt = &deleted
	}
	return s
}

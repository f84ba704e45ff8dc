package repository

import (
	"context"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/common"
	"github.com/amirasaad/ledger/pkg/domain/transaction"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a gorm backed ledger entry repository.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	m := transactionFromDomain(tx)
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	}); err != nil {
		return err
	}
	tx.CreatedAt, tx.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, transaction.ErrTransactionNotFound)
	}
	return transactionToDomain(&m), nil
}

func (r *transactionRepository) GetWithDeleted(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).Unscoped().First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, transaction.ErrTransactionNotFound)
	}
	return transactionToDomain(&m), nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	res := r.db.WithContext(ctx).Model(&Transaction{}).Where("id = ?", tx.ID).Updates(map[string]any{
		"amount":           tx.Amount,
		"transaction_date": common.DateOf(tx.TransactionDate),
		"category_id":      tx.CategoryID,
		"description":      tx.Description,
		"updated_at":       time.Now().UTC(),
	})
	return checkAffected(res, transaction.ErrTransactionNotFound)
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Transaction{}, "id = ?", id)
	return checkAffected(res, transaction.ErrTransactionNotFound)
}

func (r *transactionRepository) Restore(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&Transaction{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	return checkAffected(res, transaction.ErrTransactionNotFound)
}

func (r *transactionRepository) Timeline(ctx context.Context, accountID uuid.UUID) ([]*transaction.Transaction, error) {
	var ms []Transaction
	err := r.db.WithContext(ctx).
		Where("(account_id = ? OR (type = ? AND destination_account_id = ? AND related_transaction_id IS NULL))",
			accountID, string(transaction.TypeTransfer), accountID).
		Order("transaction_date ASC, id ASC").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return transactionsToDomain(ms), nil
}

func (r *transactionRepository) ListByUserBetween(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
	types ...transaction.Type,
) ([]*transaction.Transaction, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND transaction_date >= ? AND transaction_date <= ?",
			userID, common.DateOf(from), common.DateOf(to))
	if len(types) > 0 {
		names := make([]string, 0, len(types))
		for _, t := range types {
			names = append(names, string(t))
		}
		q = q.Where("type IN ?", names)
	}
	var ms []Transaction
	if err := q.Order("transaction_date ASC, id ASC").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return transactionsToDomain(ms), nil
}

func (r *transactionRepository) UpdateRunningBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&Transaction{}).Where("id = ?", id).
		UpdateColumn("running_balance", balance)
	return checkAffected(res, transaction.ErrTransactionNotFound)
}

func (r *transactionRepository) UpdateDestinationRunningBalance(ctx context.Context, id uuid.UUID, balance decimal.NullDecimal) error {
	res := r.db.WithContext(ctx).Model(&Transaction{}).Where("id = ?", id).
		UpdateColumn("destination_running_balance", balance)
	return MapGormErrorToDomain(res.Error)
}

func transactionFromDomain(t *transaction.Transaction) Transaction {
	m := Transaction{
		ID:                        t.ID,
		UserID:                    t.UserID,
		AccountID:                 t.AccountID,
		Type:                      string(t.Type),
		Origin:                    string(t.Origin),
		Amount:                    t.Amount,
		TransactionDate:           common.DateOf(t.TransactionDate),
		CategoryID:                t.CategoryID,
		Description:               t.Description,
		DestinationAccountID:      t.DestinationAccountID,
		RelatedTransactionID:      t.RelatedTransactionID,
		ConversionRate:            t.ConversionRate,
		ConvertedAmount:           t.ConvertedAmount,
		RunningBalance:            t.RunningBalance,
		DestinationRunningBalance: t.DestinationRunningBalance,
		CreatedAt:                 t.CreatedAt,
		UpdatedAt:                 t.UpdatedAt,
	}
	if t.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	}
	return m
}

func transactionToDomain(m *Transaction) *transaction.Transaction {
	t := &transaction.Transaction{
		ID:                        m.ID,
		UserID:                    m.UserID,
		AccountID:                 m.AccountID,
		Type:                      transaction.Type(m.Type),
		Origin:                    transaction.Origin(m.Origin),
		Amount:                    m.Amount,
		TransactionDate:           common.DateOf(m.TransactionDate),
		CategoryID:                m.CategoryID,
		Description:               m.Description,
		DestinationAccountID:      m.DestinationAccountID,
		RelatedTransactionID:      m.RelatedTransactionID,
		ConversionRate:            m.ConversionRate,
		ConvertedAmount:           m.ConvertedAmount,
		RunningBalance:            m.RunningBalance,
		DestinationRunningBalance: m.DestinationRunningBalance,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		deleted := m.DeletedAt.Time
		t.DeletedAt = &deleted
	}
	return t
}

func transactionsToDomain(ms []Transaction) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, transactionToDomain(&ms[i]))
	}
	return out
}

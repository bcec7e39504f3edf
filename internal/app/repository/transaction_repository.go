package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kursline/kursline/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrTransactionNotFound signals that the requested transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionRepository defines the data access contract for transactions.
// Settle only succeeds while the row is still pending, so the stored status
// can never move between terminal states or back to pending.
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	Get(ctx context.Context, id string) (*model.Transaction, error)
	Settle(ctx context.Context, id string, status model.SettlementStatus, settledAt time.Time) (bool, error)
	FailExpiredPending(ctx context.Context, createdBefore time.Time) (int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository returns a GORM-backed TransactionRepository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepository) Get(ctx context.Context, id string) (*model.Transaction, error) {
	var txn model.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// Settle applies a pending -> terminal transition. It returns false when the
// row was already terminal (or missing), which callers treat as "someone else
// won the race", not an error.
func (r *transactionRepository) Settle(ctx context.Context, id string, status model.SettlementStatus, settledAt time.Time) (bool, error) {
	if !status.Terminal() {
		return false, errors.New("settle requires a terminal status")
	}

	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, model.SettlementPending).
		Updates(map[string]interface{}{
			"status":     status,
			"settled_at": settledAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *transactionRepository) FailExpiredPending(ctx context.Context, createdBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("status = ? AND created_at < ?", model.SettlementPending, createdBefore).
		Updates(map[string]interface{}{
			"status":     model.SettlementFailed,
			"settled_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/kursline/kursline/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrEarningExists signals that the transaction was already credited.
	ErrEarningExists = errors.New("earning already credited for transaction")
)

// EarningRepository defines the data access contract for affiliate earnings.
type EarningRepository interface {
	Create(ctx context.Context, earning *model.AffiliateEarning) error
	SumByReferrer(ctx context.Context, referrerID string) (total int64, count int64, err error)
}

type earningRepository struct {
	db *gorm.DB
}

// NewEarningRepository returns a GORM-backed EarningRepository.
func NewEarningRepository(db *gorm.DB) EarningRepository {
	return &earningRepository{db: db}
}

func (r *earningRepository) Create(ctx context.Context, earning *model.AffiliateEarning) error {
	if err := r.db.WithContext(ctx).Create(earning).Error; err != nil {
		// The unique index on transaction_id is the last line of defence
		// against double-crediting.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrEarningExists
		}
		return err
	}
	return nil
}

func (r *earningRepository) SumByReferrer(ctx context.Context, referrerID string) (int64, int64, error) {
	type row struct {
		Total int64
		Count int64
	}
	var agg row
	err := r.db.WithContext(ctx).Model(&model.AffiliateEarning{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("referrer_id = ?", referrerID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}
	return agg.Total, agg.Count, nil
}

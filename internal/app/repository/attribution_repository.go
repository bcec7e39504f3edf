package repository

import (
	"context"

	"github.com/kursline/kursline/internal/app/model"
	"gorm.io/gorm"
)

// AttributionRepository defines the data access contract for click records.
type AttributionRepository interface {
	Create(ctx context.Context, click *model.AttributionClick) error
	CountByReferrer(ctx context.Context, referrerID string) (int64, error)
}

type attributionRepository struct {
	db *gorm.DB
}

// NewAttributionRepository returns a GORM-backed AttributionRepository.
func NewAttributionRepository(db *gorm.DB) AttributionRepository {
	return &attributionRepository{db: db}
}

func (r *attributionRepository) Create(ctx context.Context, click *model.AttributionClick) error {
	return r.db.WithContext(ctx).Create(click).Error
}

func (r *attributionRepository) CountByReferrer(ctx context.Context, referrerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AttributionClick{}).
		Where("referrer_id = ?", referrerID).
		Count(&count).Error
	return count, err
}

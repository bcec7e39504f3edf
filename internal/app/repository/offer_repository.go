package repository

import (
	"context"
	"errors"

	"github.com/kursline/kursline/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrOfferNotFound signals that the requested offer does not exist.
	ErrOfferNotFound = errors.New("offer not found")
)

// OfferRepository defines the data access contract for offers.
type OfferRepository interface {
	Create(ctx context.Context, offer *model.Offer) error
	Get(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, error)
	List(ctx context.Context, offerType model.OfferType, limit, offset int) ([]model.Offer, error)
	Update(ctx context.Context, offer *model.Offer) error
	Delete(ctx context.Context, offerType model.OfferType, id string) error
}

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository returns a GORM-backed OfferRepository.
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, offer *model.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *offerRepository) Get(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, error) {
	var offer model.Offer
	if err := r.db.WithContext(ctx).
		Where("type = ? AND id = ?", offerType, id).
		First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) List(ctx context.Context, offerType model.OfferType, limit, offset int) ([]model.Offer, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if offerType != "" {
		q = q.Where("type = ?", offerType)
	}

	var result []model.Offer
	if err := q.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *offerRepository) Update(ctx context.Context, offer *model.Offer) error {
	result := r.db.WithContext(ctx).
		Model(&model.Offer{}).
		Where("id = ?", offer.ID).
		Updates(map[string]interface{}{
			"title":                  offer.Title,
			"price":                  offer.Price,
			"currency":               offer.Currency,
			"intro_media_url":        offer.IntroMediaURL,
			"intro_duration_seconds": offer.IntroDurationSeconds,
			"disabled":               offer.Disabled,
			"expires_at":             offer.ExpiresAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOfferNotFound
	}

	return r.db.WithContext(ctx).Where("id = ?", offer.ID).First(offer).Error
}

func (r *offerRepository) Delete(ctx context.Context, offerType model.OfferType, id string) error {
	result := r.db.WithContext(ctx).
		Where("type = ? AND id = ?", offerType, id).
		Delete(&model.Offer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kursline/kursline/internal/app/model"
	"github.com/kursline/kursline/internal/app/repository"
)

// OfferService defines behaviour-level operations on the catalog.
type OfferService interface {
	CreateOffer(ctx context.Context, input CreateOfferInput) (*model.Offer, error)
	GetOffer(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, error)
	ListOffers(ctx context.Context, offerType model.OfferType, limit, offset int) ([]model.Offer, error)
	UpdateOffer(ctx context.Context, offerType model.OfferType, id string, input UpdateOfferInput) (*model.Offer, error)
	DeleteOffer(ctx context.Context, offerType model.OfferType, id string) error
}

type offerService struct {
	repo repository.OfferRepository
}

// NewOfferService returns a service implementation backed by the given repository.
func NewOfferService(repo repository.OfferRepository) OfferService {
	return &offerService{repo: repo}
}

// CreateOfferInput captures data required to create an offer.
type CreateOfferInput struct {
	ID                   string
	Type                 model.OfferType
	Title                string
	Price                int64
	Currency             string
	IntroMediaURL        string
	IntroDurationSeconds int
	Disabled             bool
	ExpiresAt            *time.Time
}

// UpdateOfferInput captures fields that can be changed on an existing offer.
type UpdateOfferInput struct {
	Title                *string
	Price                *int64
	Currency             *string
	IntroMediaURL        *string
	IntroDurationSeconds *int
	Disabled             *bool
	ExpiresAt            *time.Time
}

func (s *offerService) CreateOffer(ctx context.Context, input CreateOfferInput) (*model.Offer, error) {
	offer := &model.Offer{
		ID:                   input.ID,
		Type:                 input.Type,
		Title:                input.Title,
		Price:                input.Price,
		Currency:             input.Currency,
		IntroMediaURL:        input.IntroMediaURL,
		IntroDurationSeconds: input.IntroDurationSeconds,
		Disabled:             input.Disabled,
		ExpiresAt:            input.ExpiresAt,
	}

	if offer.Currency == "" {
		offer.Currency = "USD"
	}

	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	return offer, nil
}

func (s *offerService) GetOffer(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, error) {
	offer, err := s.repo.Get(ctx, offerType, id)
	if err != nil {
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return offer, nil
}

func (s *offerService) ListOffers(ctx context.Context, offerType model.OfferType, limit, offset int) ([]model.Offer, error) {
	offers, err := s.repo.List(ctx, offerType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

func (s *offerService) UpdateOffer(ctx context.Context, offerType model.OfferType, id string, input UpdateOfferInput) (*model.Offer, error) {
	offer, err := s.repo.Get(ctx, offerType, id)
	if err != nil {
		return nil, fmt.Errorf("load offer: %w", err)
	}

	if input.Title != nil {
		offer.Title = *input.Title
	}
	if input.Price != nil {
		offer.Price = *input.Price
	}
	if input.Currency != nil {
		offer.Currency = *input.Currency
	}
	if input.IntroMediaURL != nil {
		offer.IntroMediaURL = *input.IntroMediaURL
	}
	if input.IntroDurationSeconds != nil {
		offer.IntroDurationSeconds = *input.IntroDurationSeconds
	}
	if input.Disabled != nil {
		offer.Disabled = *input.Disabled
	}
	if input.ExpiresAt != nil {
		offer.ExpiresAt = input.ExpiresAt
	}

	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}
	return offer, nil
}

func (s *offerService) DeleteOffer(ctx context.Context, offerType model.OfferType, id string) error {
	if err := s.repo.Delete(ctx, offerType, id); err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	return nil
}

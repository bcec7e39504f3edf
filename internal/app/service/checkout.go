package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kursline/kursline/internal/app/model"
	"github.com/kursline/kursline/internal/app/repository"
	"github.com/kursline/kursline/internal/gateway"
	"go.uber.org/zap"
)

// SessionOpener is the gateway surface checkout needs.
type SessionOpener interface {
	CreateSession(ctx context.Context, txn *model.Transaction) (*gateway.Session, error)
}

// CheckoutInput captures a purchase attempt.
type CheckoutInput struct {
	OfferType  model.OfferType
	OfferID    string
	ReferrerID string
	CouponCode string
}

// CheckoutResult is handed to the settlement page.
type CheckoutResult struct {
	TransactionID string
	PayURL        string
}

// CheckoutService creates pending transactions and opens payment sessions.
type CheckoutService struct {
	logger  *zap.Logger
	offers  repository.OfferRepository
	txns    repository.TransactionRepository
	gateway SessionOpener
	watcher *SettlementWatcher
}

// NewCheckoutService wires checkout with its collaborators. watcher may be
// nil in tests; then no background settlement poll is started.
func NewCheckoutService(logger *zap.Logger, offers repository.OfferRepository, txns repository.TransactionRepository, gw SessionOpener, watcher *SettlementWatcher) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{logger: logger, offers: offers, txns: txns, gateway: gw, watcher: watcher}
}

// Checkout validates the offer, persists a pending transaction, opens the
// gateway session and starts the settlement watcher. Gateway failure leaves
// the transaction pending for the sweep to fail; the caller sees an error and
// must resubmit, never an automatic retry.
func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	offer, err := s.offers.Get(ctx, input.OfferType, input.OfferID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if offer.Disabled {
		return nil, fmt.Errorf("checkout: %w", repository.ErrOfferNotFound)
	}

	txn := &model.Transaction{
		ID:         uuid.New().String(),
		OfferType:  offer.Type,
		OfferID:    offer.ID,
		ReferrerID: input.ReferrerID,
		CouponCode: input.CouponCode,
		Amount:     offer.Price,
		Currency:   offer.Currency,
		Status:     model.SettlementPending,
	}
	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("checkout: create transaction: %w", err)
	}

	session, err := s.gateway.CreateSession(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	if s.watcher != nil {
		// The watcher outlives the request; it carries its own lifetime.
		go s.watcher.Watch(context.Background(), txn.ID)
	}

	s.logger.Info("checkout created",
		zap.String("transaction_id", txn.ID),
		zap.String("offer_id", offer.ID),
		zap.String("referrer_id", input.ReferrerID),
	)

	return &CheckoutResult{TransactionID: txn.ID, PayURL: session.PayURL}, nil
}

// TransactionStatus returns the stored settlement status for the polling
// endpoint.
func (s *CheckoutService) TransactionStatus(ctx context.Context, transactionID string) (model.SettlementStatus, error) {
	if transactionID == "" {
		return "", ErrMissingTransaction
	}
	txn, err := s.txns.Get(ctx, transactionID)
	if err != nil {
		return "", fmt.Errorf("transaction status: %w", err)
	}
	return txn.Status, nil
}

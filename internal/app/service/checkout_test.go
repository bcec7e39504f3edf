package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kursline/kursline/internal/app/model"
	"github.com/kursline/kursline/internal/app/repository"
	"github.com/kursline/kursline/internal/gateway"
)

func courseOffer() *model.Offer {
	return &model.Offer{
		ID:       "go-101",
		Type:     model.OfferTypeCourse,
		Title:    "Go from scratch",
		Price:    4900,
		Currency: "USD",
	}
}

func TestCheckout_CreatesPendingTransaction(t *testing.T) {
	offers := &mockOfferRepository{
		getFn: func(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, error) {
			return courseOffer(), nil
		},
	}

	var created *model.Transaction
	txns := &mockTransactionRepository{
		createFn: func(ctx context.Context, txn *model.Transaction) error {
			created = txn
			return nil
		},
	}

	svc := NewCheckoutService(nil, offers, txns, &mockSessionOpener{}, nil)
	result, err := svc.Checkout(context.Background(), CheckoutInput{
		OfferType:  model.OfferTypeCourse,
		OfferID:    "go-101",
		ReferrerID: "aff-3",
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}

	if created == nil {
		t.Fatal("expected a transaction to be created")
	}
	if created.Status != model.SettlementPending {
		t.Fatalf("expected pending transaction, got %s", created.Status)
	}
	if created.Amount != 4900 {
		t.Fatalf("expected amount 4900, got %d", created.Amount)
	}
	if created.ReferrerID != "aff-3" {
		t.Fatalf("expected referrer carried onto transaction, got %q", created.ReferrerID)
	}
	if result.TransactionID != created.ID {
		t.Fatal("result must reference the created transaction")
	}
	if result.PayURL == "" {
		t.Fatal("expected a pay URL")
	}
}

func TestCheckout_GatewayFailureSurfaces(t *testing.T) {
	offers := &mockOfferRepository{
		getFn: func(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, error) {
			return courseOffer(), nil
		},
	}
	opener := &mockSessionOpener{
		createFn: func(ctx context.Context, txn *model.Transaction) (*gateway.Session, error) {
			return nil, gateway.ErrGatewayUnavailable
		},
	}

	svc := NewCheckoutService(nil, offers, &mockTransactionRepository{}, opener, nil)
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		OfferType: model.OfferTypeCourse,
		OfferID:   "go-101",
	})
	if !errors.Is(err, gateway.ErrGatewayUnavailable) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}

func TestCheckout_DisabledOfferRejected(t *testing.T) {
	offers := &mockOfferRepository{
		getFn: func(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, error) {
			offer := courseOffer()
			offer.Disabled = true
			return offer, nil
		},
	}

	svc := NewCheckoutService(nil, offers, &mockTransactionRepository{}, &mockSessionOpener{}, nil)
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		OfferType: model.OfferTypeCourse,
		OfferID:   "go-101",
	})
	if !errors.Is(err, repository.ErrOfferNotFound) {
		t.Fatalf("expected not-found for disabled offer, got %v", err)
	}
}

func TestTransactionStatus_MissingID(t *testing.T) {
	svc := NewCheckoutService(nil, &mockOfferRepository{}, &mockTransactionRepository{}, &mockSessionOpener{}, nil)

	_, err := svc.TransactionStatus(context.Background(), "")
	if !errors.Is(err, ErrMissingTransaction) {
		t.Fatalf("expected ErrMissingTransaction, got %v", err)
	}
}

func TestTransactionStatus_ReturnsStoredStatus(t *testing.T) {
	txns := &mockTransactionRepository{
		getFn: func(ctx context.Context, id string) (*model.Transaction, error) {
			return &model.Transaction{ID: id, Status: model.SettlementCaptured}, nil
		},
	}
	svc := NewCheckoutService(nil, &mockOfferRepository{}, txns, &mockSessionOpener{}, nil)

	status, err := svc.TransactionStatus(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("TransactionStatus returned error: %v", err)
	}
	if status != model.SettlementCaptured {
		t.Fatalf("expected captured, got %s", status)
	}
}

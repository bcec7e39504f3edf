package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kursline/kursline/internal/app/model"
	"github.com/kursline/kursline/internal/app/repository"
	"go.uber.org/zap"
)

// AffiliateService credits referrers for captured referred purchases and
// serves dashboard aggregates.
type AffiliateService struct {
	logger   *zap.Logger
	txns     repository.TransactionRepository
	earnings repository.EarningRepository
	clicks   repository.AttributionRepository
}

// NewAffiliateService wires the service.
func NewAffiliateService(logger *zap.Logger, txns repository.TransactionRepository, earnings repository.EarningRepository, clicks repository.AttributionRepository) *AffiliateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AffiliateService{logger: logger, txns: txns, earnings: earnings, clicks: clicks}
}

// CreditCapturedTransaction credits the referrer's commission for a captured
// transaction. Crediting is idempotent: a second call for the same
// transaction is a no-op. Transactions without a referrer credit nothing.
func (s *AffiliateService) CreditCapturedTransaction(ctx context.Context, transactionID string) error {
	txn, err := s.txns.Get(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("credit earning: %w", err)
	}
	if txn.ReferrerID == "" {
		return nil
	}
	if txn.Status != model.SettlementCaptured {
		return fmt.Errorf("credit earning: transaction %s is %s, not captured", txn.ID, txn.Status)
	}

	earning := &model.AffiliateEarning{
		ID:            uuid.New().String(),
		ReferrerID:    txn.ReferrerID,
		TransactionID: txn.ID,
		Amount:        txn.Amount * model.CommissionBasisPoints / 10_000,
		Currency:      txn.Currency,
	}
	if err := s.earnings.Create(ctx, earning); err != nil {
		if errors.Is(err, repository.ErrEarningExists) {
			return nil
		}
		return fmt.Errorf("credit earning: %w", err)
	}

	s.logger.Info("affiliate earning credited",
		zap.String("referrer_id", earning.ReferrerID),
		zap.String("transaction_id", earning.TransactionID),
		zap.Int64("amount", earning.Amount),
	)
	return nil
}

// Stats aggregates clicks and earnings for one referrer.
func (s *AffiliateService) Stats(ctx context.Context, referrerID string) (*model.AffiliateStats, error) {
	clicks, err := s.clicks.CountByReferrer(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("affiliate stats: %w", err)
	}
	total, count, err := s.earnings.SumByReferrer(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("affiliate stats: %w", err)
	}
	return &model.AffiliateStats{
		ReferrerID:    referrerID,
		TotalClicks:   clicks,
		TotalEarnings: total,
		EarningCount:  count,
	}, nil
}

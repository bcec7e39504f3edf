package service

import (
	"context"
	"errors"
	"time"

	"github.com/kursline/kursline/internal/app/model"
	"github.com/kursline/kursline/internal/app/repository"
	infraprom "github.com/kursline/kursline/internal/infra/prometheus"
	"go.uber.org/zap"
)

var (
	// ErrMissingTransaction signals settlement was entered without a
	// transaction id. Distinct from a payment failure: no status call is made.
	ErrMissingTransaction = errors.New("no transaction to settle")
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollBudget   = 60 * time.Second
)

// StatusClient is the external payment collaborator's status surface.
type StatusClient interface {
	Status(ctx context.Context, transactionID string) (model.SettlementStatus, error)
}

// SettlementPoller drives a transaction from pending to a terminal status by
// polling the payment collaborator on a fixed cadence within a total budget.
//
// The status is a one-way latch: only pending -> terminal transitions are
// applied, so a stale pending response arriving after a terminal one can
// never fire a transition. Budget exhaustion is itself a failure, not a
// retry trigger.
type SettlementPoller struct {
	logger   *zap.Logger
	client   StatusClient
	clock    Clock
	interval time.Duration
	budget   time.Duration
}

// NewSettlementPoller builds a poller with the given cadence and budget;
// non-positive values fall back to the defaults.
func NewSettlementPoller(logger *zap.Logger, client StatusClient, clock Clock, interval, budget time.Duration) *SettlementPoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = RealClock()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if budget <= 0 {
		budget = DefaultPollBudget
	}
	return &SettlementPoller{
		logger:   logger,
		client:   client,
		clock:    clock,
		interval: interval,
		budget:   budget,
	}
}

// Wait polls until the transaction reaches a terminal status or the budget
// runs out, then returns that terminal status. No polling happens after a
// terminal status is observed. Context cancellation tears the ticker down
// and reports failed.
func (p *SettlementPoller) Wait(ctx context.Context, transactionID string) (model.SettlementStatus, error) {
	if transactionID == "" {
		return "", ErrMissingTransaction
	}

	// One immediate check before the first tick; a payment captured during
	// checkout redirect should not wait a full interval.
	if status := p.check(ctx, transactionID); status.Terminal() {
		return status, nil
	}

	deadline := p.clock.Now().Add(p.budget)
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return model.SettlementFailed, ctx.Err()
		case now := <-ticker.C():
			if !now.Before(deadline) {
				p.logger.Info("settlement budget exhausted, failing transaction",
					zap.String("transaction_id", transactionID),
					zap.Duration("budget", p.budget))
				return model.SettlementFailed, nil
			}
			if status := p.check(ctx, transactionID); status.Terminal() {
				return status, nil
			}
		}
	}
}

// check returns pending on any error: a flaky status endpoint never forces a
// terminal transition on its own, only the budget does.
func (p *SettlementPoller) check(ctx context.Context, transactionID string) model.SettlementStatus {
	status, err := p.client.Status(ctx, transactionID)
	if err != nil {
		p.logger.Warn("settlement status check failed",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return model.SettlementPending
	}
	return status
}

// SettlementWatcher runs a poller per checkout and applies the outcome to the
// stored transaction, crediting the affiliate when a referred purchase is
// captured.
type SettlementWatcher struct {
	logger    *zap.Logger
	poller    *SettlementPoller
	txns      repository.TransactionRepository
	affiliate *AffiliateService
}

// NewSettlementWatcher wires the watcher.
func NewSettlementWatcher(logger *zap.Logger, poller *SettlementPoller, txns repository.TransactionRepository, affiliate *AffiliateService) *SettlementWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementWatcher{logger: logger, poller: poller, txns: txns, affiliate: affiliate}
}

// Watch polls the gateway for the transaction and settles the stored row.
// Safe to run concurrently with the timeout sweep: Settle only moves pending
// rows, so whichever side observes a terminal status first wins and the
// loser's write is a no-op.
func (w *SettlementWatcher) Watch(ctx context.Context, transactionID string) {
	status, err := w.poller.Wait(ctx, transactionID)
	if err != nil {
		if errors.Is(err, ErrMissingTransaction) {
			w.logger.Error("settlement watcher started without a transaction id")
			return
		}
		// Cancelled mid-poll; the timeout sweep will pick the row up.
		w.logger.Warn("settlement watch interrupted",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return
	}

	settled, err := w.txns.Settle(ctx, transactionID, status, w.poller.clock.Now())
	if err != nil {
		w.logger.Error("failed to settle transaction",
			zap.String("transaction_id", transactionID),
			zap.String("status", string(status)), zap.Error(err))
		return
	}
	if !settled {
		// Already terminal; stale outcome discarded.
		return
	}

	infraprom.SettlementsTotal.WithLabelValues(string(status)).Inc()
	w.logger.Info("transaction settled",
		zap.String("transaction_id", transactionID),
		zap.String("status", string(status)))

	if status == model.SettlementCaptured && w.affiliate != nil {
		if err := w.affiliate.CreditCapturedTransaction(ctx, transactionID); err != nil {
			w.logger.Error("failed to credit affiliate earning",
				zap.String("transaction_id", transactionID), zap.Error(err))
		}
	}
}

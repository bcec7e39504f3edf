package service

import (
	"context"
	"time"

	"github.com/kursline/kursline/internal/app/repository"
	"go.uber.org/zap"
)

// SettlementSweep periodically force-fails transactions that have been
// pending longer than the settlement budget. It backstops the per-checkout
// watcher: even if the process restarted mid-poll, no transaction stays
// pending forever.
type SettlementSweep struct {
	logger   *zap.Logger
	txns     repository.TransactionRepository
	budget   time.Duration
	interval time.Duration
	stopChan chan struct{}
}

// NewSettlementSweep creates a sweep over transactions older than budget.
func NewSettlementSweep(logger *zap.Logger, txns repository.TransactionRepository, budget time.Duration) *SettlementSweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	if budget <= 0 {
		budget = DefaultPollBudget
	}
	return &SettlementSweep{
		logger:   logger,
		txns:     txns,
		budget:   budget,
		interval: 30 * time.Second,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (s *SettlementSweep) Start() {
	go s.run()
}

// Stop halts the sweep.
func (s *SettlementSweep) Stop() {
	close(s.stopChan)
}

func (s *SettlementSweep) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.failExpired()
		case <-s.stopChan:
			s.logger.Info("settlement sweep stopped")
			return
		}
	}
}

func (s *SettlementSweep) failExpired() {
	ctx := context.Background()
	expiredBefore := time.Now().Add(-s.budget)

	affected, err := s.txns.FailExpiredPending(ctx, expiredBefore)
	if err != nil {
		s.logger.Error("failed to fail expired pending transactions", zap.Error(err))
		return
	}

	if affected > 0 {
		s.logger.Info("failed expired pending transactions",
			zap.Int64("count", affected),
			zap.Time("expired_before", expiredBefore),
		)
	}
}

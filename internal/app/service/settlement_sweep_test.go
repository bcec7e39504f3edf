package service

import (
	"context"
	"testing"
	"time"
)

func TestSettlementSweep_FailsTransactionsPastBudget(t *testing.T) {
	budget := 90 * time.Second

	var cutoff time.Time
	txns := &mockTransactionRepository{
		failFn: func(ctx context.Context, createdBefore time.Time) (int64, error) {
			cutoff = createdBefore
			return 2, nil
		},
	}

	s := NewSettlementSweep(nil, txns, budget)

	lower := time.Now().Add(-budget)
	s.failExpired()
	upper := time.Now().Add(-budget)

	if cutoff.IsZero() {
		t.Fatal("expected the sweep to call FailExpiredPending")
	}
	if cutoff.Before(lower) || cutoff.After(upper) {
		t.Fatalf("cutoff %v not within budget window [%v, %v]", cutoff, lower, upper)
	}
}

func TestSettlementSweep_StopHaltsTicking(t *testing.T) {
	sweeps := make(chan struct{}, 64)
	txns := &mockTransactionRepository{
		failFn: func(ctx context.Context, createdBefore time.Time) (int64, error) {
			sweeps <- struct{}{}
			return 0, nil
		},
	}

	s := NewSettlementSweep(nil, txns, time.Minute)
	s.interval = 5 * time.Millisecond
	s.Start()

	select {
	case <-sweeps:
	case <-time.After(time.Second):
		t.Fatal("expected at least one sweep before Stop")
	}

	s.Stop()

	// Let an already-selected tick finish, then the loop must stay quiet.
	time.Sleep(100 * time.Millisecond)
	for len(sweeps) > 0 {
		<-sweeps
	}
	time.Sleep(100 * time.Millisecond)
	if len(sweeps) != 0 {
		t.Fatal("sweep fired after Stop")
	}
}

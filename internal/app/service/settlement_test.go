package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kursline/kursline/internal/app/model"
)

func TestSettlementPoller_MissingTransaction(t *testing.T) {
	client := &mockStatusClient{}
	p := NewSettlementPoller(nil, client, newFakeClock(time.Now()), 5*time.Second, 60*time.Second)

	_, err := p.Wait(context.Background(), "")
	if !errors.Is(err, ErrMissingTransaction) {
		t.Fatalf("expected ErrMissingTransaction, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected zero status calls, got %d", client.calls)
	}
}

func TestSettlementPoller_LatchesOnCaptured(t *testing.T) {
	// Arrival order pending, pending, captured; the trailing pending the
	// gateway would keep returning must never be observed.
	responses := []model.SettlementStatus{
		model.SettlementPending,
		model.SettlementPending,
		model.SettlementCaptured,
		model.SettlementPending,
	}
	client := &mockStatusClient{}
	client.statusFn = func(ctx context.Context, id string) (model.SettlementStatus, error) {
		return responses[client.calls-1], nil
	}

	clk := newFakeClock(time.Now())
	p := NewSettlementPoller(nil, client, clk, 5*time.Second, 60*time.Second)

	result := make(chan model.SettlementStatus, 1)
	go func() {
		status, _ := p.Wait(context.Background(), "txn-1")
		result <- status
	}()

	clk.Advance(5 * time.Second)
	clk.Advance(5 * time.Second)

	status := <-result
	if status != model.SettlementCaptured {
		t.Fatalf("expected captured, got %s", status)
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 status calls, got %d", client.calls)
	}
}

func TestSettlementPoller_BudgetExhaustionFails(t *testing.T) {
	client := &mockStatusClient{} // always pending

	clk := newFakeClock(time.Now())
	p := NewSettlementPoller(nil, client, clk, 5*time.Second, 10*time.Second)

	result := make(chan model.SettlementStatus, 1)
	go func() {
		status, _ := p.Wait(context.Background(), "txn-2")
		result <- status
	}()

	clk.Advance(5 * time.Second)
	clk.Advance(5 * time.Second) // reaches the budget; no further poll fires

	status := <-result
	if status != model.SettlementFailed {
		t.Fatalf("expected failed on budget exhaustion, got %s", status)
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 status calls (immediate + one tick), got %d", client.calls)
	}
}

func TestSettlementPoller_StatusErrorKeepsPolling(t *testing.T) {
	client := &mockStatusClient{}
	client.statusFn = func(ctx context.Context, id string) (model.SettlementStatus, error) {
		if client.calls == 1 {
			return "", errors.New("gateway hiccup")
		}
		return model.SettlementCaptured, nil
	}

	clk := newFakeClock(time.Now())
	p := NewSettlementPoller(nil, client, clk, 5*time.Second, 60*time.Second)

	result := make(chan model.SettlementStatus, 1)
	go func() {
		status, _ := p.Wait(context.Background(), "txn-3")
		result <- status
	}()

	clk.Advance(5 * time.Second)

	if status := <-result; status != model.SettlementCaptured {
		t.Fatalf("expected captured after transient error, got %s", status)
	}
}

func TestSettlementWatcher_CreditsAffiliateOnCapture(t *testing.T) {
	client := &mockStatusClient{
		statusFn: func(ctx context.Context, id string) (model.SettlementStatus, error) {
			return model.SettlementCaptured, nil
		},
	}

	settled := 0
	txns := &mockTransactionRepository{
		settleFn: func(ctx context.Context, id string, status model.SettlementStatus, settledAt time.Time) (bool, error) {
			if status != model.SettlementCaptured {
				t.Fatalf("expected captured settle, got %s", status)
			}
			settled++
			return true, nil
		},
		getFn: func(ctx context.Context, id string) (*model.Transaction, error) {
			return &model.Transaction{
				ID:         id,
				ReferrerID: "aff-1",
				Amount:     10_000,
				Currency:   "USD",
				Status:     model.SettlementCaptured,
			}, nil
		},
	}

	credited := 0
	earnings := &mockEarningRepository{
		createFn: func(ctx context.Context, earning *model.AffiliateEarning) error {
			credited++
			if earning.Amount != 2000 {
				t.Fatalf("expected 20%% commission 2000, got %d", earning.Amount)
			}
			return nil
		},
	}

	affiliate := NewAffiliateService(nil, txns, earnings, &mockAttributionRepository{})
	poller := NewSettlementPoller(nil, client, newFakeClock(time.Now()), 5*time.Second, 60*time.Second)
	watcher := NewSettlementWatcher(nil, poller, txns, affiliate)

	watcher.Watch(context.Background(), "txn-4")

	if settled != 1 {
		t.Fatalf("expected 1 settle, got %d", settled)
	}
	if credited != 1 {
		t.Fatalf("expected 1 earning, got %d", credited)
	}
}

func TestSettlementWatcher_StaleOutcomeDiscarded(t *testing.T) {
	client := &mockStatusClient{
		statusFn: func(ctx context.Context, id string) (model.SettlementStatus, error) {
			return model.SettlementCaptured, nil
		},
	}

	// The sweep already failed the row: Settle reports no rows moved, so the
	// watcher must not credit anything.
	txns := &mockTransactionRepository{
		settleFn: func(ctx context.Context, id string, status model.SettlementStatus, settledAt time.Time) (bool, error) {
			return false, nil
		},
	}
	earnings := &mockEarningRepository{
		createFn: func(ctx context.Context, earning *model.AffiliateEarning) error {
			t.Fatal("stale outcome must not credit an earning")
			return nil
		},
	}

	affiliate := NewAffiliateService(nil, txns, earnings, &mockAttributionRepository{})
	poller := NewSettlementPoller(nil, client, newFakeClock(time.Now()), 5*time.Second, 60*time.Second)
	watcher := NewSettlementWatcher(nil, poller, txns, affiliate)

	watcher.Watch(context.Background(), "txn-5")
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/kursline/kursline/internal/app/model"
	"github.com/kursline/kursline/internal/app/repository"
	"github.com/kursline/kursline/internal/gateway"
	"github.com/nats-io/nats.go"
)

type mockOfferRepository struct {
	createFn func(ctx context.Context, offer *model.Offer) error
	getFn    func(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, error)
	listFn   func(ctx context.Context, offerType model.OfferType, limit, offset int) ([]model.Offer, error)
	updateFn func(ctx context.Context, offer *model.Offer) error
	deleteFn func(ctx context.Context, offerType model.OfferType, id string) error
}

func (m *mockOfferRepository) Create(ctx context.Context, offer *model.Offer) error {
	if m.createFn != nil {
		return m.createFn(ctx, offer)
	}
	return nil
}

func (m *mockOfferRepository) Get(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, error) {
	if m.getFn != nil {
		return m.getFn(ctx, offerType, id)
	}
	return nil, repository.ErrOfferNotFound
}

func (m *mockOfferRepository) List(ctx context.Context, offerType model.OfferType, limit, offset int) ([]model.Offer, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offerType, limit, offset)
	}
	return nil, nil
}

func (m *mockOfferRepository) Update(ctx context.Context, offer *model.Offer) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, offer)
	}
	return nil
}

func (m *mockOfferRepository) Delete(ctx context.Context, offerType model.OfferType, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, offerType, id)
	}
	return nil
}

type mockTransactionRepository struct {
	createFn func(ctx context.Context, txn *model.Transaction) error
	getFn    func(ctx context.Context, id string) (*model.Transaction, error)
	settleFn func(ctx context.Context, id string, status model.SettlementStatus, settledAt time.Time) (bool, error)
	failFn   func(ctx context.Context, createdBefore time.Time) (int64, error)
}

func (m *mockTransactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	if m.createFn != nil {
		return m.createFn(ctx, txn)
	}
	return nil
}

func (m *mockTransactionRepository) Get(ctx context.Context, id string) (*model.Transaction, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, repository.ErrTransactionNotFound
}

func (m *mockTransactionRepository) Settle(ctx context.Context, id string, status model.SettlementStatus, settledAt time.Time) (bool, error) {
	if m.settleFn != nil {
		return m.settleFn(ctx, id, status, settledAt)
	}
	return true, nil
}

func (m *mockTransactionRepository) FailExpiredPending(ctx context.Context, createdBefore time.Time) (int64, error) {
	if m.failFn != nil {
		return m.failFn(ctx, createdBefore)
	}
	return 0, nil
}

type mockEarningRepository struct {
	createFn func(ctx context.Context, earning *model.AffiliateEarning) error
	sumFn    func(ctx context.Context, referrerID string) (int64, int64, error)
}

func (m *mockEarningRepository) Create(ctx context.Context, earning *model.AffiliateEarning) error {
	if m.createFn != nil {
		return m.createFn(ctx, earning)
	}
	return nil
}

func (m *mockEarningRepository) SumByReferrer(ctx context.Context, referrerID string) (int64, int64, error) {
	if m.sumFn != nil {
		return m.sumFn(ctx, referrerID)
	}
	return 0, 0, nil
}

type mockAttributionRepository struct {
	createFn func(ctx context.Context, click *model.AttributionClick) error
	countFn  func(ctx context.Context, referrerID string) (int64, error)
}

func (m *mockAttributionRepository) Create(ctx context.Context, click *model.AttributionClick) error {
	if m.createFn != nil {
		return m.createFn(ctx, click)
	}
	return nil
}

func (m *mockAttributionRepository) CountByReferrer(ctx context.Context, referrerID string) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, referrerID)
	}
	return 0, nil
}

type mockKeyStore struct {
	hasFn func(ctx context.Context, key string) (bool, error)
	addFn func(ctx context.Context, key string) error
}

func (m *mockKeyStore) Has(ctx context.Context, key string) (bool, error) {
	if m.hasFn != nil {
		return m.hasFn(ctx, key)
	}
	return false, nil
}

func (m *mockKeyStore) Add(ctx context.Context, key string) error {
	if m.addFn != nil {
		return m.addFn(ctx, key)
	}
	return nil
}

type mockPublisher struct {
	publishFn func(subj string, data []byte) error
	published int
}

func (m *mockPublisher) Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error) {
	m.published++
	if m.publishFn != nil {
		if err := m.publishFn(subj, data); err != nil {
			return nil, err
		}
	}
	return &nats.PubAck{Stream: model.ClickStreamName}, nil
}

type mockStatusClient struct {
	statusFn func(ctx context.Context, transactionID string) (model.SettlementStatus, error)
	calls    int
}

func (m *mockStatusClient) Status(ctx context.Context, transactionID string) (model.SettlementStatus, error) {
	m.calls++
	if m.statusFn != nil {
		return m.statusFn(ctx, transactionID)
	}
	return model.SettlementPending, nil
}

type mockSessionOpener struct {
	createFn func(ctx context.Context, txn *model.Transaction) (*gateway.Session, error)
}

func (m *mockSessionOpener) CreateSession(ctx context.Context, txn *model.Transaction) (*gateway.Session, error) {
	if m.createFn != nil {
		return m.createFn(ctx, txn)
	}
	return &gateway.Session{TransactionID: txn.ID, PayURL: "https://pay.example/" + txn.ID}, nil
}

// fakeClock drives timer-bound components deterministically. Advance moves
// the clock and delivers one tick; the send blocks until the component under
// test consumes it.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	ticks chan time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start, ticks: make(chan time.Time)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(time.Duration) Ticker {
	return &fakeTicker{c: f.ticks}
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	f.mu.Unlock()
	f.ticks <- now
}

type fakeTicker struct {
	c chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               {}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kursline/kursline/internal/app/keystore"
	"github.com/kursline/kursline/internal/app/model"
	infraprom "github.com/kursline/kursline/internal/infra/prometheus"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Click captures one referred landing visit before it becomes a record.
type Click struct {
	VisitorID  string
	OfferType  model.OfferType
	OfferID    string
	ReferrerID string
	IP         string
	UserAgent  string
}

// EventPublisher is the slice of nats.JetStreamContext the tracker needs.
type EventPublisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// AttributionTracker registers referred landing visits at most once per
// visitor per (offerType, offerID, referrerID) tuple.
//
// The check is optimistic (a cheap local/keystore lookup, no registration
// round trip) but the commit is pessimistic: the dedupe key is only added
// after the registration succeeded, so a failed registration is retried on a
// later qualifying visit instead of being lost.
type AttributionTracker struct {
	logger *zap.Logger
	keys   keystore.KeyStore
	js     EventPublisher
}

// NewAttributionTracker wires the tracker with its dedupe store and the
// JetStream context used to publish click events.
func NewAttributionTracker(logger *zap.Logger, keys keystore.KeyStore, js EventPublisher) *AttributionTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttributionTracker{logger: logger, keys: keys, js: js}
}

// ShouldRecord reports whether this visit needs a registration. A visit
// without a referrer is never recorded. An unreadable key store counts as
// "not recorded": re-registering is cheaper than losing attribution.
func (t *AttributionTracker) ShouldRecord(ctx context.Context, visitorID string, offerType model.OfferType, offerID, referrerID string) bool {
	if referrerID == "" || offerID == "" || !offerType.Valid() {
		return false
	}

	key := model.DedupeKey(visitorID, offerType, offerID, referrerID)
	seen, err := t.keys.Has(ctx, key)
	if err != nil {
		t.logger.Warn("dedupe store unreadable, treating key as unrecorded",
			zap.String("key", key), zap.Error(err))
		return true
	}
	if seen {
		infraprom.ClicksDeduped.Inc()
	}
	return !seen
}

// Record registers the click and, only on success, marks the dedupe key.
func (t *AttributionTracker) Record(ctx context.Context, click Click) error {
	if click.ReferrerID == "" {
		return fmt.Errorf("record click: missing referrer")
	}

	event := model.AttributionClick{
		ID:         uuid.New().String(),
		OfferType:  click.OfferType,
		OfferID:    click.OfferID,
		ReferrerID: click.ReferrerID,
		VisitorID:  click.VisitorID,
		IP:         click.IP,
		UserAgent:  click.UserAgent,
		Timestamp:  time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("record click: %w", err)
	}

	if _, err := t.js.Publish(model.ClickStreamSubject, data); err != nil {
		// Key stays unrecorded; a future visit retries.
		return fmt.Errorf("record click: %w", err)
	}

	key := model.DedupeKey(click.VisitorID, click.OfferType, click.OfferID, click.ReferrerID)
	if err := t.keys.Add(ctx, key); err != nil {
		// The click made it into the stream; the worst case here is one
		// duplicate registration on the next visit.
		t.logger.Warn("failed to mark dedupe key after successful registration",
			zap.String("key", key), zap.Error(err))
	}

	infraprom.ClicksRecorded.Inc()
	t.logger.Debug("attribution click recorded",
		zap.String("offer_id", click.OfferID),
		zap.String("referrer_id", click.ReferrerID),
		zap.String("visitor_id", click.VisitorID),
	)
	return nil
}

package model

import (
	"fmt"
	"time"
)

// AttributionClick records a single referred landing-page visit. Rows are
// append-only; dedupe happens before a row is ever created.
type AttributionClick struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	OfferType  OfferType `json:"offer_type" gorm:"size:16;not null"`
	OfferID    string    `json:"offer_id" gorm:"size:64;not null;index"`
	ReferrerID string    `json:"referrer_id" gorm:"size:64;not null;index"`
	VisitorID  string    `json:"visitor_id" gorm:"size:64;not null"`
	IP         string    `json:"ip" gorm:"size:64"`
	UserAgent  string    `json:"user_agent" gorm:"size:1024"`
	Timestamp  time.Time `json:"timestamp" gorm:"index;not null"`
}

// DedupeKey builds the composite key that may be registered at most once per
// visitor. The visitor id scopes the key the same way per-device storage did.
func DedupeKey(visitorID string, offerType OfferType, offerID, referrerID string) string {
	return fmt.Sprintf("%s|%s/%s/%s", visitorID, offerType, offerID, referrerID)
}

const (
	ClickStreamName     = "ATTRIBUTION"
	ClickStreamSubject  = "attribution.clicks"
	ClickConsumerName   = "click-recorder"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)

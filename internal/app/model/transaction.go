package model

import "time"

// SettlementStatus enumerates the payment states of a transaction. Pending is
// the only non-terminal state; a transaction leaves it exactly once.
type SettlementStatus string

const (
	SettlementPending  SettlementStatus = "pending"
	SettlementCaptured SettlementStatus = "captured"
	SettlementFailed   SettlementStatus = "failed"
)

// Terminal reports whether no further automatic transition can occur.
func (s SettlementStatus) Terminal() bool {
	return s == SettlementCaptured || s == SettlementFailed
}

// Transaction is a purchase attempt created at checkout.
type Transaction struct {
	ID         string           `json:"id" gorm:"primaryKey;size:64"`
	OfferType  OfferType        `json:"offer_type" gorm:"size:16;not null"`
	OfferID    string           `json:"offer_id" gorm:"size:64;not null;index"`
	ReferrerID string           `json:"referrer_id,omitempty" gorm:"size:64;index"`
	CouponCode string           `json:"coupon_code,omitempty" gorm:"size:64"`
	Amount     int64            `json:"amount" gorm:"not null"`
	Currency   string           `json:"currency" gorm:"size:8;not null"`
	Status     SettlementStatus `json:"status" gorm:"size:16;not null;default:pending;index"`
	CreatedAt  time.Time        `json:"created_at" gorm:"autoCreateTime;index"`
	SettledAt  *time.Time       `json:"settled_at,omitempty"`
}

package model

import "time"

// AffiliateEarning credits a referrer for a captured referred transaction.
// Created exactly once per transaction; the unique index enforces that even
// if two settlement paths race.
type AffiliateEarning struct {
	ID            string    `json:"id" gorm:"primaryKey;size:64"`
	ReferrerID    string    `json:"referrer_id" gorm:"size:64;not null;index"`
	TransactionID string    `json:"transaction_id" gorm:"size:64;not null;uniqueIndex"`
	Amount        int64     `json:"amount" gorm:"not null"`
	Currency      string    `json:"currency" gorm:"size:8;not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// AffiliateStats is the aggregate an affiliate dashboard renders.
type AffiliateStats struct {
	ReferrerID    string `json:"referrer_id"`
	TotalClicks   int64  `json:"total_clicks"`
	TotalEarnings int64  `json:"total_earnings"`
	EarningCount  int64  `json:"earning_count"`
}

// Commission rate applied to referred captured transactions, in basis points.
const CommissionBasisPoints = 2000 // 20%

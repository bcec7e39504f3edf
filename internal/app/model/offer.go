package model

import "time"

// OfferType distinguishes the two purchasable product kinds.
type OfferType string

const (
	OfferTypeCourse OfferType = "course"
	OfferTypeEbook  OfferType = "ebook"
)

// Valid reports whether t is a known offer type.
func (t OfferType) Valid() bool {
	return t == OfferTypeCourse || t == OfferTypeEbook
}

// Offer describes a purchasable course or ebook stored in Postgres.
type Offer struct {
	ID                   string     `db:"id" gorm:"primaryKey;size:64"`
	Type                 OfferType  `db:"type" gorm:"size:16;not null;index:idx_offers_type_id"`
	Title                string     `db:"title" gorm:"type:text;not null"`
	Price                int64      `db:"price" gorm:"not null"` // minor currency units
	Currency             string     `db:"currency" gorm:"size:8;not null;default:USD"`
	IntroMediaURL        string     `db:"intro_media_url" gorm:"type:text"`
	IntroDurationSeconds int        `db:"intro_duration_seconds" gorm:"not null;default:0"`
	Disabled             bool       `db:"disabled" gorm:"not null;default:false"`
	ExpiresAt            *time.Time `db:"expires_at" gorm:"index"`
	CreatedAt            time.Time  `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time  `db:"updated_at" gorm:"autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	PatronStatusActive    = "active"
	PatronStatusExpired   = "expired"
	PatronStatusSuspended = "suspended"
)

type Patron struct {
	bun.BaseModel `bun:"table:patrons,alias:p"`

	ID         int        `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	Name       string     `bun:",nullzero" json:"name"`
	Email      string     `bun:",nullzero" json:"email"`
	CardNumber string     `bun:",nullzero" json:"card_number"`
	PinHash    string     `bun:",nullzero" json:"-"`
	Status     string     `bun:",nullzero" json:"status"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (p *Patron) IsActive() bool {
	return p.Status == PatronStatusActive
}

// IsExpiredAt reports whether the membership has lapsed as of now. Patrons
// without an expiry date never lapse.
func (p *Patron) IsExpiredAt(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

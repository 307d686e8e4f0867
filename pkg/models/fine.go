package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Fine struct {
	bun.BaseModel `bun:"table:fines,alias:f"`

	ID         int             `bun:",pk,nullzero" json:"id"`
	PatronID   int             `json:"patron_id"`
	CheckoutID *int            `json:"checkout_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `bun:",nullzero" json:"reason"`
	CreatedAt  time.Time       `json:"created_at"`
	Paid       bool            `json:"paid"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`

	Patron *Patron `bun:"rel:belongs-to,join:patron_id=id" json:"patron,omitempty"`
}

func OverdueFineReason(title string) string {
	return fmt.Sprintf("Overdue fine for %q", title)
}

// SumOutstanding totals the unpaid fines.
func SumOutstanding(fines []*Fine) decimal.Decimal {
	total := decimal.Zero
	for _, f := range fines {
		if !f.Paid {
			total = total.Add(f.Amount)
		}
	}
	return total
}

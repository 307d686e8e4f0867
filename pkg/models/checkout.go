package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// MaxRenewals is how many times a single checkout can be renewed.
const MaxRenewals = 2

const day = 24 * time.Hour

// FineRate is charged per whole day late, for every media type.
var FineRate = decimal.RequireFromString("0.45")

type Checkout struct {
	bun.BaseModel `bun:"table:checkouts,alias:co"`

	ID           int        `bun:",pk,nullzero" json:"id"`
	PatronID     int        `json:"patron_id"`
	MediaItemID  int        `json:"media_item_id"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	DueDate      time.Time  `json:"due_date"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	Renewals     int        `json:"renewals"`

	Patron    *Patron    `bun:"rel:belongs-to,join:patron_id=id" json:"patron,omitempty"`
	MediaItem *MediaItem `bun:"rel:belongs-to,join:media_item_id=id" json:"media_item,omitempty"`
}

func (co *Checkout) IsOpen() bool {
	return co.ReturnedAt == nil
}

// checkTime is the moment lateness is measured at: the return time for
// returned checkouts, now otherwise.
func (co *Checkout) checkTime(now time.Time) time.Time {
	if co.ReturnedAt != nil {
		return *co.ReturnedAt
	}
	return now
}

func (co *Checkout) IsOverdue(now time.Time) bool {
	return co.checkTime(now).After(co.DueDate)
}

// DaysOverdue is the number of whole days past the due date, truncated.
func (co *Checkout) DaysOverdue(now time.Time) int {
	late := co.checkTime(now).Sub(co.DueDate)
	if late <= 0 {
		return 0
	}
	return int(late / day)
}

// DaysUntilDue is the number of whole days left on an open checkout. It's 0
// once the checkout is returned or past due.
func (co *Checkout) DaysUntilDue(now time.Time) int {
	if co.ReturnedAt != nil || now.After(co.DueDate) {
		return 0
	}
	return int(co.DueDate.Sub(now) / day)
}

// IsDueSoon matches checkouts with between 1 and 3 whole days left.
func (co *Checkout) IsDueSoon(now time.Time) bool {
	days := co.DaysUntilDue(now)
	return days > 0 && days <= 3
}

// CalculateFine returns the fine owed for the checkout as of now, rounded to
// cents. It's zero when the checkout isn't a whole day late.
func (co *Checkout) CalculateFine(now time.Time) decimal.Decimal {
	return CalculateFine(co.DaysOverdue(now))
}

func CalculateFine(daysOverdue int) decimal.Decimal {
	if daysOverdue <= 0 {
		return decimal.Zero
	}
	return FineRate.Mul(decimal.NewFromInt(int64(daysOverdue))).Round(2)
}

func (co *Checkout) CanRenew(now time.Time) bool {
	if co.ReturnedAt != nil {
		return false
	}
	return co.Renewals < MaxRenewals && !now.After(co.DueDate)
}

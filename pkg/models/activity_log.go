package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ActionCheckout         = "checkout"
	ActionCheckin          = "checkin"
	ActionHoldPlaced       = "hold_placed"
	ActionHoldCancelled    = "hold_cancelled"
	ActionRequestSubmitted = "request_submitted"
	ActionRequestApproved  = "request_approved"
	ActionRequestRejected  = "request_rejected"
	ActionPatronCreated    = "patron_created"
	ActionRenewal          = "renewal"
	ActionFinePaid         = "fine_paid"
)

// ActivityLog rows are only ever inserted. Deleting the patron, item, or
// librarian they point at nulls the reference and keeps the description.
type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_logs,alias:al"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Action      string    `bun:",nullzero" json:"action"`
	PatronID    *int      `json:"patron_id,omitempty"`
	MediaItemID *int      `json:"media_item_id,omitempty"`
	LibrarianID *int      `json:"librarian_id,omitempty"`
	Description string    `json:"description"`
}

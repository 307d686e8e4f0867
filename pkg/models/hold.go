package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	HoldStatusPending   = "pending"
	HoldStatusReady     = "ready"
	HoldStatusInTransit = "in_transit"
	HoldStatusPickedUp  = "picked_up"
	HoldStatusCancelled = "cancelled"
	HoldStatusExpired   = "expired"
)

// DefaultPickupLocation is used when a hold doesn't name a branch.
const DefaultPickupLocation = "Main Branch"

// ActiveHoldStatuses are the statuses that block a patron from placing
// another hold on the same item.
var ActiveHoldStatuses = []string{HoldStatusPending, HoldStatusReady, HoldStatusInTransit}

// ClosedHoldStatuses are the statuses shown in a patron's hold history.
var ClosedHoldStatuses = []string{HoldStatusPickedUp, HoldStatusCancelled, HoldStatusExpired}

type Hold struct {
	bun.BaseModel `bun:"table:holds,alias:h"`

	ID             int        `bun:",pk,nullzero" json:"id"`
	PatronID       int        `json:"patron_id"`
	MediaItemID    int        `json:"media_item_id"`
	PlacedAt       time.Time  `json:"placed_at"`
	Status         string     `bun:",nullzero" json:"status"`
	QueuePosition  int        `json:"queue_position"`
	PickupBy       *time.Time `json:"pickup_by,omitempty"`
	PickupLocation string     `bun:",nullzero" json:"pickup_location"`

	MediaItem *MediaItem `bun:"rel:belongs-to,join:media_item_id=id" json:"media_item,omitempty"`
}

func (h *Hold) IsActive() bool {
	for _, s := range ActiveHoldStatuses {
		if h.Status == s {
			return true
		}
	}
	return false
}

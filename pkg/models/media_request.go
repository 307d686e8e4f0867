package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// RequestMediaTypes extends the catalog types with "other".
var RequestMediaTypes = append(append([]string{}, MediaTypes...), MediaTypeOther)

type MediaRequest struct {
	bun.BaseModel `bun:"table:media_requests,alias:mr"`

	ID                  int        `bun:",pk,nullzero" json:"id"`
	PatronID            int        `json:"patron_id"`
	Title               string     `bun:",nullzero" json:"title"`
	Author              string     `json:"author"`
	MediaType           string     `bun:",nullzero" json:"media_type"`
	Reason              string     `json:"reason"`
	Status              string     `bun:",nullzero" json:"status"`
	NotifyWhenAvailable bool       `json:"notify_when_available"`
	RequestedAt         time.Time  `json:"requested_at"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy          *int       `json:"reviewed_by,omitempty"`

	Patron *Patron `bun:"rel:belongs-to,join:patron_id=id" json:"patron,omitempty"`
}

func (mr *MediaRequest) IsReviewed() bool {
	return mr.Status != RequestStatusPending
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MediaTypeBook      = "book"
	MediaTypeAudiobook = "audiobook"
	MediaTypeDVD       = "dvd"
	MediaTypeCD        = "cd"
	MediaTypeMagazine  = "magazine"
	// MediaTypeOther is only valid on requests.
	MediaTypeOther = "other"
)

const (
	MediaStatusAvailable  = "available"
	MediaStatusCheckedOut = "checked_out"
	MediaStatusOnHold     = "on_hold"
	MediaStatusInTransit  = "in_transit"
	MediaStatusLost       = "lost"
)

// MediaTypes lists the types an item in the catalog can have.
var MediaTypes = []string{
	MediaTypeBook,
	MediaTypeAudiobook,
	MediaTypeDVD,
	MediaTypeCD,
	MediaTypeMagazine,
}

const (
	shortLoanPeriod   = 7 * 24 * time.Hour
	mediumLoanPeriod  = 14 * 24 * time.Hour
	defaultLoanPeriod = 21 * 24 * time.Hour
)

type MediaItem struct {
	bun.BaseModel `bun:"table:media_items,alias:mi"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	AddedAt     time.Time `json:"added_at"`
	Title       string    `bun:",nullzero" json:"title"`
	Author      string    `json:"author"`
	MediaType   string    `bun:",nullzero" json:"media_type"`
	ISBN        *string   `bun:"isbn" json:"isbn,omitempty"`
	Barcode     string    `bun:",nullzero" json:"barcode"`
	Status      string    `bun:",nullzero" json:"status"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	Publisher   string    `json:"publisher"`
	Location    string    `json:"location"`
	Pages       *int      `json:"pages,omitempty"`
}

// LoanPeriod returns how long an item of the given type is lent for.
func LoanPeriod(mediaType string) time.Duration {
	switch mediaType {
	case MediaTypeDVD, MediaTypeCD:
		return shortLoanPeriod
	case MediaTypeMagazine:
		return mediumLoanPeriod
	default:
		return defaultLoanPeriod
	}
}

func (mi *MediaItem) LoanPeriod() time.Duration {
	return LoanPeriod(mi.MediaType)
}

func (mi *MediaItem) IsAvailable() bool {
	return mi.Status == MediaStatusAvailable
}

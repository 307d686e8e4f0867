package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Librarian struct {
	bun.BaseModel `bun:"table:librarians,alias:l"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `bun:",nullzero" json:"username"`
	Email        string    `bun:",nullzero" json:"email"`
	PasswordHash string    `bun:",nullzero" json:"-"`
}

// Package testdb opens migrated in-memory databases and inserts fixtures for
// package tests.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shishobooks/circulation/pkg/migrations"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Epoch is the default time fixtures are created at.
var Epoch = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

var seq atomic.Int64

// New returns a migrated in-memory database. Every connection to ":memory:"
// gets its own database, so the pool is pinned to a single connection.
func New(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func next() int64 {
	return seq.Add(1)
}

// CreatePatron inserts an active patron. Callers can adjust the patron
// before it's inserted.
func CreatePatron(t *testing.T, db bun.IDB, opts ...func(*models.Patron)) *models.Patron {
	t.Helper()

	n := next()
	expires := Epoch.AddDate(1, 0, 0)
	p := &models.Patron{
		CreatedAt:  Epoch,
		Name:       fmt.Sprintf("Patron %d", n),
		Email:      fmt.Sprintf("patron%d@example.com", n),
		CardNumber: fmt.Sprintf("LC-%06d", n),
		PinHash:    "unused",
		Status:     models.PatronStatusActive,
		ExpiresAt:  &expires,
	}
	for _, opt := range opts {
		opt(p)
	}

	_, err := db.NewInsert().Model(p).Exec(context.Background())
	require.NoError(t, err)
	return p
}

func CreateLibrarian(t *testing.T, db bun.IDB, opts ...func(*models.Librarian)) *models.Librarian {
	t.Helper()

	n := next()
	l := &models.Librarian{
		CreatedAt:    Epoch,
		Username:     fmt.Sprintf("librarian%d", n),
		Email:        fmt.Sprintf("librarian%d@example.com", n),
		PasswordHash: "unused",
	}
	for _, opt := range opts {
		opt(l)
	}

	_, err := db.NewInsert().Model(l).Exec(context.Background())
	require.NoError(t, err)
	return l
}

// CreateItem inserts an available book.
func CreateItem(t *testing.T, db bun.IDB, opts ...func(*models.MediaItem)) *models.MediaItem {
	t.Helper()

	n := next()
	mi := &models.MediaItem{
		AddedAt:   Epoch,
		Title:     fmt.Sprintf("Item %d", n),
		Author:    "Ursula K. Le Guin",
		MediaType: models.MediaTypeBook,
		Barcode:   fmt.Sprintf("BC-%09d", n),
		Status:    models.MediaStatusAvailable,
	}
	for _, opt := range opts {
		opt(mi)
	}

	_, err := db.NewInsert().Model(mi).Exec(context.Background())
	require.NoError(t, err)
	return mi
}

// CreateCheckout lends the item to the patron, marking the item checked out.
func CreateCheckout(t *testing.T, db bun.IDB, patron *models.Patron, item *models.MediaItem, checkedOutAt time.Time) *models.Checkout {
	t.Helper()
	ctx := context.Background()

	co := &models.Checkout{
		PatronID:     patron.ID,
		MediaItemID:  item.ID,
		CheckedOutAt: checkedOutAt,
		DueDate:      checkedOutAt.Add(item.LoanPeriod()),
	}
	_, err := db.NewInsert().Model(co).Exec(ctx)
	require.NoError(t, err)

	item.Status = models.MediaStatusCheckedOut
	_, err = db.NewUpdate().Model(item).Column("status").WherePK().Exec(ctx)
	require.NoError(t, err)
	return co
}

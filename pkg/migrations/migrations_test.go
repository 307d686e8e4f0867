package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shishobooks/circulation/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func openDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func tableNames(t *testing.T, db *bun.DB) []string {
	t.Helper()
	var names []string
	err := db.NewSelect().
		TableExpr("sqlite_master").
		Column("name").
		Where("type = 'table'").
		Where("name NOT LIKE 'sqlite_%'").
		Where("name NOT LIKE 'bun_%'").
		Order("name").
		Scan(context.Background(), &names)
	require.NoError(t, err)
	return names
}

func TestBringUpToDate(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	group, err := migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	assert.Equal(t, []string{
		"activity_logs",
		"checkouts",
		"fines",
		"holds",
		"librarians",
		"media_items",
		"media_requests",
		"patrons",
	}, tableNames(t, db))

	// Running again is a no-op.
	group, err = migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)
}

func TestOpenCheckoutIndex(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	_, err := migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO patrons (name, email, card_number, pin_hash) VALUES ('A', 'a@example.com', 'LC-000001', 'x')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO media_items (title, media_type, barcode) VALUES ('Dune', 'book', 'BC-000000001')`)
	require.NoError(t, err)

	insert := `INSERT INTO checkouts (patron_id, media_item_id, checked_out_at, due_date, returned_at) VALUES (1, 1, '2025-03-01', '2025-03-22', ?)`

	_, err = db.ExecContext(ctx, insert, "2025-03-05")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, nil)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestRollback(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	_, err := migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)

	migrator := migrations.NewMigrator(db)
	group, err := migrator.Rollback(ctx)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	assert.Empty(t, tableNames(t, db))
}

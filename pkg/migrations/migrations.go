package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds every schema change, registered from each file's init.
var Migrations = migrate.NewMigrations()

// NewMigrator returns a migrator over Migrations. A migration is only
// recorded as applied once its up func succeeds.
func NewMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations, migrate.WithMarkAppliedOnSuccess(true))
}

// BringUpToDate creates the bookkeeping tables if needed and applies every
// pending migration. The returned group has a zero ID when nothing ran.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := NewMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to apply circulation migrations")
	}
	return group, nil
}

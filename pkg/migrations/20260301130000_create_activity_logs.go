package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE activity_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL,
				action TEXT NOT NULL,
				patron_id INTEGER REFERENCES patrons (id) ON DELETE SET NULL,
				media_item_id INTEGER REFERENCES media_items (id) ON DELETE SET NULL,
				librarian_id INTEGER REFERENCES librarians (id) ON DELETE SET NULL,
				description TEXT NOT NULL DEFAULT ''
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE INDEX ix_activity_logs_created_at ON activity_logs (created_at)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE INDEX ix_activity_logs_patron_id ON activity_logs (patron_id)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP TABLE IF EXISTS activity_logs`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}

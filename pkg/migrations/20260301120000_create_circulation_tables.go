package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE patrons (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				card_number TEXT NOT NULL,
				pin_hash TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'active',
				expires_at TIMESTAMPTZ
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_patrons_email ON patrons (email COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_patrons_card_number ON patrons (card_number)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_patrons_status_expires_at ON patrons (status, expires_at)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE librarians (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				username TEXT NOT NULL,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_librarians_username ON librarians (username)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_librarians_email ON librarians (email COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE media_items (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				added_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				title TEXT NOT NULL,
				author TEXT NOT NULL DEFAULT '',
				media_type TEXT NOT NULL,
				isbn TEXT,
				barcode TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'available',
				description TEXT NOT NULL DEFAULT '',
				genre TEXT NOT NULL DEFAULT '',
				publisher TEXT NOT NULL DEFAULT '',
				location TEXT NOT NULL DEFAULT '',
				pages INTEGER
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_media_items_barcode ON media_items (barcode)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_media_items_status ON media_items (status)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE checkouts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				patron_id INTEGER REFERENCES patrons (id) ON DELETE CASCADE NOT NULL,
				media_item_id INTEGER REFERENCES media_items (id) ON DELETE CASCADE NOT NULL,
				checked_out_at TIMESTAMPTZ NOT NULL,
				due_date TIMESTAMPTZ NOT NULL,
				returned_at TIMESTAMPTZ,
				renewals INTEGER NOT NULL DEFAULT 0
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		// An item can only be lent to one patron at a time.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_checkouts_open_media_item ON checkouts (media_item_id) WHERE returned_at IS NULL`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_checkouts_patron_id ON checkouts (patron_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_checkouts_returned_at ON checkouts (returned_at)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE holds (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				patron_id INTEGER REFERENCES patrons (id) ON DELETE CASCADE NOT NULL,
				media_item_id INTEGER REFERENCES media_items (id) ON DELETE CASCADE NOT NULL,
				placed_at TIMESTAMPTZ NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				queue_position INTEGER NOT NULL,
				pickup_by TIMESTAMPTZ,
				pickup_location TEXT NOT NULL DEFAULT 'Main Branch'
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_holds_media_item_status ON holds (media_item_id, status)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_holds_patron_id ON holds (patron_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE media_requests (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				patron_id INTEGER REFERENCES patrons (id) ON DELETE CASCADE NOT NULL,
				title TEXT NOT NULL,
				author TEXT NOT NULL DEFAULT '',
				media_type TEXT NOT NULL,
				reason TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'pending',
				notify_when_available BOOLEAN NOT NULL DEFAULT TRUE,
				requested_at TIMESTAMPTZ NOT NULL,
				reviewed_at TIMESTAMPTZ,
				reviewed_by INTEGER REFERENCES librarians (id) ON DELETE SET NULL
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_media_requests_status ON media_requests (status)`)
		if err != nil {
			return errors.WithStack(err)
		}

		// amount is TEXT so decimals round-trip exactly.
		_, err = db.Exec(`
			CREATE TABLE fines (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				patron_id INTEGER REFERENCES patrons (id) ON DELETE CASCADE NOT NULL,
				checkout_id INTEGER REFERENCES checkouts (id) ON DELETE CASCADE,
				amount TEXT NOT NULL,
				reason TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				paid BOOLEAN NOT NULL DEFAULT FALSE,
				paid_at TIMESTAMPTZ
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_fines_patron_id_paid ON fines (patron_id, paid)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"fines", "media_requests", "holds", "checkouts", "media_items", "librarians", "patrons"} {
			if _, err := db.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}

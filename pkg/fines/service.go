package fines

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/activity"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Service struct {
	db       *bun.DB
	clock    clock.Clock
	activity *activity.Service
}

func NewService(db *bun.DB, clk clock.Clock, activityService *activity.Service) *Service {
	return &Service{db: db, clock: clk, activity: activityService}
}

// ListForPatron returns every fine charged to the patron, unpaid first, and
// the outstanding total.
func (svc *Service) ListForPatron(ctx context.Context, patronID int) ([]*models.Fine, decimal.Decimal, error) {
	fines := []*models.Fine{}
	err := svc.db.NewSelect().
		Model(&fines).
		Where("f.patron_id = ?", patronID).
		Order("f.paid ASC", "f.created_at DESC", "f.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, decimal.Zero, errors.WithStack(err)
	}
	return fines, models.SumOutstanding(fines), nil
}

// Outstanding totals the unpaid fines for each of the given patrons.
func (svc *Service) Outstanding(ctx context.Context, patronIDs []int) (map[int]decimal.Decimal, error) {
	totals := make(map[int]decimal.Decimal, len(patronIDs))
	if len(patronIDs) == 0 {
		return totals, nil
	}

	fines := []*models.Fine{}
	err := svc.db.NewSelect().
		Model(&fines).
		Where("f.patron_id IN (?)", bun.In(patronIDs)).
		Where("f.paid = ?", false).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, f := range fines {
		totals[f.PatronID] = totals[f.PatronID].Add(f.Amount)
	}
	return totals, nil
}

// MarkPaid settles a fine in full. Paying an already paid fine is rejected.
func (svc *Service) MarkPaid(ctx context.Context, librarianID, fineID int) (*models.Fine, error) {
	fine := &models.Fine{}
	err := svc.db.NewSelect().
		Model(fine).
		Relation("Patron").
		Where("f.id = ?", fineID).
		Scan(ctx)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errcodes.NotFound("Fine")
		}
		return nil, errors.WithStack(err)
	}
	if fine.Paid {
		return nil, errcodes.ValidationError("Fine has already been paid.")
	}

	now := svc.clock.Now()
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Fine)(nil)).
			Set("paid = ?", true).
			Set("paid_at = ?", now).
			Where("id = ?", fine.ID).
			Where("paid = ?", false).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if n == 0 {
			return errcodes.ValidationError("Fine has already been paid.")
		}

		_, err = svc.activity.Record(ctx, tx, activity.Entry{
			Action:      models.ActionFinePaid,
			PatronID:    fine.PatronID,
			LibrarianID: librarianID,
			Description: fmt.Sprintf("Fine of $%s paid by %s", fine.Amount.StringFixed(2), fine.Patron.Name),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	fine.Paid = true
	fine.PaidAt = &now
	return fine, nil
}

package checkouts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/activity"
	"github.com/shishobooks/circulation/pkg/catalog"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/metrics"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/patrons"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

const (
	// FormLimit bounds the patrons and items offered on the checkout form.
	FormLimit = 20
	// RecentCheckinsLimit is how many returns the check-in desk shows.
	RecentCheckinsLimit = 10
)

var (
	errNotRenewable  = errcodes.ValidationError("Cannot renew this item.")
	errNotCheckedOut = errcodes.ValidationError("This item is not currently checked out.")
	errInactive      = errcodes.ValidationError("Patron account is not active.")
)

type Service struct {
	db       *bun.DB
	clock    clock.Clock
	activity *activity.Service
	patrons  *patrons.Service
	catalog  *catalog.Service
	metrics  *metrics.CirculationMetrics
}

type ServiceOptions struct {
	Activity *activity.Service
	Patrons  *patrons.Service
	Catalog  *catalog.Service
	Metrics  *metrics.CirculationMetrics
}

func NewService(db *bun.DB, clk clock.Clock, opts ServiceOptions) *Service {
	return &Service{
		db:       db,
		clock:    clk,
		activity: opts.Activity,
		patrons:  opts.Patrons,
		catalog:  opts.Catalog,
		metrics:  opts.Metrics,
	}
}

type CreateOptions struct {
	PatronID    int
	LibrarianID int
	ItemIDs     []int
}

// SkippedItem is an item a batch checkout could not lend.
type SkippedItem struct {
	ItemID int    `json:"item_id"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}

type CreateResult struct {
	Patron    *models.Patron     `json:"patron"`
	Checkouts []*models.Checkout `json:"checkouts"`
	Skipped   []SkippedItem      `json:"skipped"`
}

// Create lends every available item in opts.ItemIDs to the patron. Items
// that aren't on the shelf are skipped and reported.
func (svc *Service) Create(ctx context.Context, opts CreateOptions) (*CreateResult, error) {
	patron, err := svc.patrons.Retrieve(ctx, opts.PatronID)
	if err != nil {
		return nil, err
	}
	if !patron.IsActive() {
		return nil, errInactive
	}

	now := svc.clock.Now()
	result := &CreateResult{
		Patron:    patron,
		Checkouts: []*models.Checkout{},
		Skipped:   []SkippedItem{},
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, itemID := range opts.ItemIDs {
			item := &models.MediaItem{}
			err := tx.NewSelect().Model(item).Where("mi.id = ?", itemID).Scan(ctx)
			if err != nil {
				if database.IsNoRows(err) {
					result.Skipped = append(result.Skipped, SkippedItem{ItemID: itemID, Reason: "Item not found."})
					continue
				}
				return errors.WithStack(err)
			}

			// The status guard stops a second desk lending the same copy.
			res, err := tx.NewUpdate().
				Model((*models.MediaItem)(nil)).
				Set("status = ?", models.MediaStatusCheckedOut).
				Where("id = ?", item.ID).
				Where("status = ?", models.MediaStatusAvailable).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return errors.WithStack(err)
			}
			if n == 0 {
				result.Skipped = append(result.Skipped, SkippedItem{
					ItemID: item.ID,
					Title:  item.Title,
					Reason: "Item is not available.",
				})
				continue
			}
			item.Status = models.MediaStatusCheckedOut

			co := &models.Checkout{
				PatronID:     patron.ID,
				MediaItemID:  item.ID,
				CheckedOutAt: now,
				DueDate:      now.Add(item.LoanPeriod()),
				MediaItem:    item,
			}
			if _, err := tx.NewInsert().Model(co).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}

			_, err = svc.activity.Record(ctx, tx, activity.Entry{
				Action:      models.ActionCheckout,
				PatronID:    patron.ID,
				MediaItemID: item.ID,
				LibrarianID: opts.LibrarianID,
				Description: fmt.Sprintf("%s checked out %q", patron.Name, item.Title),
			})
			if err != nil {
				return err
			}

			result.Checkouts = append(result.Checkouts, co)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("items checked out", logger.Data{
		"patron_id":    patron.ID,
		"librarian_id": opts.LibrarianID,
		"checked_out":  len(result.Checkouts),
		"skipped":      len(result.Skipped),
	})

	return result, nil
}

// Renew extends one of the patron's own checkouts by a fresh loan period
// from now.
func (svc *Service) Renew(ctx context.Context, patronID, checkoutID int) (*models.Checkout, error) {
	co := &models.Checkout{}
	err := svc.db.NewSelect().
		Model(co).
		Relation("MediaItem").
		Where("co.id = ?", checkoutID).
		Where("co.patron_id = ?", patronID).
		Scan(ctx)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errcodes.NotFound("Checkout")
		}
		return nil, errors.WithStack(err)
	}

	now := svc.clock.Now()
	if !co.CanRenew(now) {
		return nil, errNotRenewable
	}

	dueDate := now.Add(co.MediaItem.LoanPeriod())
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Guarded on the renewal count read above so concurrent renewals from
		// the same state can't both land.
		res, err := tx.NewUpdate().
			Model((*models.Checkout)(nil)).
			Set("due_date = ?", dueDate).
			Set("renewals = renewals + 1").
			Where("id = ?", co.ID).
			Where("renewals = ?", co.Renewals).
			Where("returned_at IS NULL").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if n == 0 {
			return errNotRenewable
		}

		_, err = svc.activity.Record(ctx, tx, activity.Entry{
			Action:      models.ActionRenewal,
			PatronID:    patronID,
			MediaItemID: co.MediaItemID,
			Description: fmt.Sprintf("Renewed %q, now due %s", co.MediaItem.Title, dueDate.Format(time.DateOnly)),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	co.DueDate = dueDate
	co.Renewals++
	return co, nil
}

// CheckinResult describes a return at the desk.
type CheckinResult struct {
	Item        *models.MediaItem `json:"item"`
	Patron      *models.Patron    `json:"patron"`
	DueDate     time.Time         `json:"due_date"`
	IsOverdue   bool              `json:"is_overdue"`
	DaysOverdue int               `json:"days_overdue"`
	Fine        decimal.Decimal   `json:"fine"`
	FineID      *int              `json:"fine_id,omitempty"`
}

// CheckIn closes the open checkout for the item with the given barcode and
// charges an overdue fine for every whole day late.
func (svc *Service) CheckIn(ctx context.Context, librarianID int, barcode string) (*CheckinResult, error) {
	item := &models.MediaItem{}
	err := svc.db.NewSelect().Model(item).Where("mi.barcode = ?", barcode).Scan(ctx)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errcodes.NotFound("Item")
		}
		return nil, errors.WithStack(err)
	}

	co := &models.Checkout{}
	err = svc.db.NewSelect().
		Model(co).
		Relation("Patron").
		Where("co.media_item_id = ?", item.ID).
		Where("co.returned_at IS NULL").
		Scan(ctx)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errNotCheckedOut
		}
		return nil, errors.WithStack(err)
	}

	now := svc.clock.Now()
	co.ReturnedAt = &now
	result := &CheckinResult{
		Item:        item,
		Patron:      co.Patron,
		DueDate:     co.DueDate,
		IsOverdue:   co.IsOverdue(now),
		DaysOverdue: co.DaysOverdue(now),
		Fine:        co.CalculateFine(now),
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Checkout)(nil)).
			Set("returned_at = ?", now).
			Where("id = ?", co.ID).
			Where("returned_at IS NULL").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if n == 0 {
			return errNotCheckedOut
		}

		item.Status = models.MediaStatusAvailable
		_, err = tx.NewUpdate().Model(item).Column("status").WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if result.Fine.IsPositive() {
			fine := &models.Fine{
				PatronID:   co.PatronID,
				CheckoutID: &co.ID,
				Amount:     result.Fine,
				Reason:     models.OverdueFineReason(item.Title),
				CreatedAt:  now,
			}
			if _, err := tx.NewInsert().Model(fine).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
			result.FineID = &fine.ID
		}

		description := fmt.Sprintf("%s returned %q", co.Patron.Name, item.Title)
		if result.IsOverdue {
			description += fmt.Sprintf(" (%d days late)", result.DaysOverdue)
		}
		_, err = svc.activity.Record(ctx, tx, activity.Entry{
			Action:      models.ActionCheckin,
			PatronID:    co.PatronID,
			MediaItemID: item.ID,
			LibrarianID: librarianID,
			Description: description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.FineID != nil {
		svc.metrics.ObserveFine(result.Fine)
	}

	logger.FromContext(ctx).Info("item checked in", logger.Data{
		"item_id":      item.ID,
		"patron_id":    co.PatronID,
		"librarian_id": librarianID,
		"days_overdue": result.DaysOverdue,
		"fine":         result.Fine.StringFixed(2),
	})

	return result, nil
}

// Active returns the patron's open checkouts, soonest due first.
func (svc *Service) Active(ctx context.Context, patronID int) ([]*models.Checkout, error) {
	checkouts := []*models.Checkout{}
	err := svc.db.NewSelect().
		Model(&checkouts).
		Relation("MediaItem").
		Where("co.patron_id = ?", patronID).
		Where("co.returned_at IS NULL").
		Order("co.due_date ASC", "co.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return checkouts, nil
}

// RecentCheckins returns the latest returns across all patrons.
func (svc *Service) RecentCheckins(ctx context.Context, limit int) ([]*models.Checkout, error) {
	checkouts := []*models.Checkout{}
	err := svc.db.NewSelect().
		Model(&checkouts).
		Relation("Patron").
		Relation("MediaItem").
		Where("co.returned_at IS NOT NULL").
		Order("co.returned_at DESC", "co.id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return checkouts, nil
}

// Form is what the desk needs to start a checkout.
type Form struct {
	Patrons []*models.Patron    `json:"patrons"`
	Items   []*models.MediaItem `json:"items"`
}

func (svc *Service) Form(ctx context.Context) (*Form, error) {
	ps, _, err := svc.patrons.List(ctx, patrons.ListOptions{
		Status: models.PatronStatusActive,
		Limit:  FormLimit,
	})
	if err != nil {
		return nil, err
	}
	items, err := svc.catalog.Available(ctx, FormLimit)
	if err != nil {
		return nil, err
	}
	return &Form{Patrons: ps, Items: items}, nil
}

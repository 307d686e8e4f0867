package holds

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/activity"
	"github.com/shishobooks/circulation/pkg/catalog"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

// HistoryLimit is how many closed holds a patron sees.
const HistoryLimit = 10

type Service struct {
	db       *bun.DB
	clock    clock.Clock
	activity *activity.Service
	catalog  *catalog.Service
}

func NewService(db *bun.DB, clk clock.Clock, activityService *activity.Service, catalogService *catalog.Service) *Service {
	return &Service{
		db:       db,
		clock:    clk,
		activity: activityService,
		catalog:  catalogService,
	}
}

// Place queues a hold for the patron. The queue position is fixed when the
// hold is placed and isn't renumbered when earlier holds close.
func (svc *Service) Place(ctx context.Context, patronID, itemID int) (*models.Hold, error) {
	item, err := svc.catalog.Retrieve(ctx, itemID)
	if err != nil {
		return nil, err
	}

	hold := &models.Hold{
		PatronID:       patronID,
		MediaItemID:    item.ID,
		PlacedAt:       svc.clock.Now(),
		Status:         models.HoldStatusPending,
		PickupLocation: models.DefaultPickupLocation,
		MediaItem:      item,
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Hold)(nil)).
			Where("h.patron_id = ?", patronID).
			Where("h.media_item_id = ?", item.ID).
			Where("h.status IN (?)", bun.In(models.ActiveHoldStatuses)).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.ValidationError("You already have a hold on this item.")
		}

		pending, err := tx.NewSelect().
			Model((*models.Hold)(nil)).
			Where("h.media_item_id = ?", item.ID).
			Where("h.status = ?", models.HoldStatusPending).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		hold.QueuePosition = pending + 1

		if _, err := tx.NewInsert().Model(hold).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}

		_, err = svc.activity.Record(ctx, tx, activity.Entry{
			Action:      models.ActionHoldPlaced,
			PatronID:    patronID,
			MediaItemID: item.ID,
			Description: fmt.Sprintf("Hold placed on %q (position %d)", item.Title, hold.QueuePosition),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return hold, nil
}

// Cancel cancels one of the patron's own active holds.
func (svc *Service) Cancel(ctx context.Context, patronID, holdID int) (*models.Hold, error) {
	hold := &models.Hold{}
	err := svc.db.NewSelect().
		Model(hold).
		Relation("MediaItem").
		Where("h.id = ?", holdID).
		Where("h.patron_id = ?", patronID).
		Scan(ctx)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errcodes.NotFound("Hold")
		}
		return nil, errors.WithStack(err)
	}
	if !hold.IsActive() {
		return nil, errcodes.ValidationError("This hold is no longer active.")
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		hold.Status = models.HoldStatusCancelled
		if _, err := tx.NewUpdate().Model(hold).Column("status").WherePK().Exec(ctx); err != nil {
			return errors.WithStack(err)
		}

		_, err := svc.activity.Record(ctx, tx, activity.Entry{
			Action:      models.ActionHoldCancelled,
			PatronID:    patronID,
			MediaItemID: hold.MediaItemID,
			Description: fmt.Sprintf("Hold cancelled on %q", hold.MediaItem.Title),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return hold, nil
}

type List struct {
	Active  []*models.Hold `json:"active"`
	History []*models.Hold `json:"history"`
}

// ListForPatron returns the patron's active holds oldest first and their
// latest closed holds.
func (svc *Service) ListForPatron(ctx context.Context, patronID int) (*List, error) {
	list := &List{Active: []*models.Hold{}, History: []*models.Hold{}}

	err := svc.db.NewSelect().
		Model(&list.Active).
		Relation("MediaItem").
		Where("h.patron_id = ?", patronID).
		Where("h.status IN (?)", bun.In(models.ActiveHoldStatuses)).
		Order("h.placed_at ASC", "h.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		Model(&list.History).
		Relation("MediaItem").
		Where("h.patron_id = ?", patronID).
		Where("h.status IN (?)", bun.In(models.ClosedHoldStatuses)).
		Order("h.placed_at DESC", "h.id DESC").
		Limit(HistoryLimit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return list, nil
}

package patrons

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/activity"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

// cardNumberAttempts bounds how many generated card numbers are tried before
// signup gives up.
const cardNumberAttempts = 10

type Service struct {
	db             *bun.DB
	clock          clock.Clock
	activity       *activity.Service
	membershipDays int
}

func NewService(db *bun.DB, clk clock.Clock, activityService *activity.Service, membershipDays int) *Service {
	return &Service{
		db:             db,
		clock:          clk,
		activity:       activityService,
		membershipDays: membershipDays,
	}
}

// GenerateCardNumber returns a random card number. Uniqueness is enforced by
// the database index.
func GenerateCardNumber() string {
	return fmt.Sprintf("LC-%06d", rand.IntN(1_000_000))
}

type SignupOptions struct {
	Name       string
	Email      string
	PIN        string
	ConfirmPIN string
}

func (svc *Service) Signup(ctx context.Context, opts SignupOptions) (*models.Patron, error) {
	if opts.PIN != opts.ConfirmPIN {
		return nil, errcodes.ValidationError("PINs do not match.")
	}

	exists, err := svc.db.NewSelect().
		Model((*models.Patron)(nil)).
		Where("p.email = ? COLLATE NOCASE", opts.Email).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.ValidationError("Email already registered.")
	}

	pinHash, err := auth.HashSecret(opts.PIN)
	if err != nil {
		return nil, err
	}

	now := svc.clock.Now()
	expiresAt := now.AddDate(0, 0, svc.membershipDays)
	patron := &models.Patron{
		CreatedAt: now,
		Name:      opts.Name,
		Email:     opts.Email,
		PinHash:   pinHash,
		Status:    models.PatronStatusActive,
		ExpiresAt: &expiresAt,
	}

	for attempt := 0; ; attempt++ {
		patron.CardNumber = GenerateCardNumber()
		err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewInsert().Model(patron).Exec(ctx); err != nil {
				return err
			}
			_, err := svc.activity.Record(ctx, tx, activity.Entry{
				Action:      models.ActionPatronCreated,
				PatronID:    patron.ID,
				Description: fmt.Sprintf("New patron %s registered with card %s", patron.Name, patron.CardNumber),
			})
			return err
		})
		if err == nil {
			break
		}
		if !database.IsUniqueViolation(err) {
			return nil, errors.WithStack(err)
		}
		// The email index catches a concurrent signup with the same address.
		if strings.Contains(err.Error(), "email") {
			return nil, errcodes.ValidationError("Email already registered.")
		}
		if attempt+1 >= cardNumberAttempts {
			return nil, errors.Wrap(err, "could not generate a unique card number")
		}
		patron.ID = 0
	}

	logger.FromContext(ctx).Info("patron signed up", logger.Data{"patron_id": patron.ID})

	return patron, nil
}

func (svc *Service) Retrieve(ctx context.Context, id int) (*models.Patron, error) {
	patron := &models.Patron{}
	err := svc.db.NewSelect().
		Model(patron).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errcodes.NotFound("Patron")
		}
		return nil, errors.WithStack(err)
	}
	return patron, nil
}

type ListOptions struct {
	Query  string
	Status string
	Limit  int
	Offset int
}

// List matches the query against name, email and card number.
func (svc *Service) List(ctx context.Context, opts ListOptions) ([]*models.Patron, int, error) {
	patrons := []*models.Patron{}

	q := svc.db.NewSelect().
		Model(&patrons).
		Order("p.name ASC", "p.id ASC")

	if like := database.ContainsPattern(opts.Query); like != "" {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`p.name LIKE ? ESCAPE '\'`, like).
				WhereOr(`p.email LIKE ? ESCAPE '\'`, like).
				WhereOr(`p.card_number LIKE ? ESCAPE '\'`, like)
		})
	}
	if opts.Status != "" {
		q = q.Where("p.status = ?", opts.Status)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return patrons, total, nil
}

// Delete removes the patron with their checkouts, holds, fines and requests.
// Items the patron still had out go back on the shelf. Activity entries keep
// their text with the patron reference cleared.
func (svc *Service) Delete(ctx context.Context, id int) (*models.Patron, error) {
	patron, err := svc.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		openItems := tx.NewSelect().
			Model((*models.Checkout)(nil)).
			Column("media_item_id").
			Where("patron_id = ?", id).
			Where("returned_at IS NULL")
		_, err := tx.NewUpdate().
			Model((*models.MediaItem)(nil)).
			Set("status = ?", models.MediaStatusAvailable).
			Where("id IN (?)", openItems).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, model := range []interface{}{
			(*models.Fine)(nil),
			(*models.Hold)(nil),
			(*models.MediaRequest)(nil),
			(*models.Checkout)(nil),
		} {
			if _, err := tx.NewDelete().Model(model).Where("patron_id = ?", id).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		}

		if err := svc.activity.DetachPatron(ctx, tx, id); err != nil {
			return err
		}

		_, err = tx.NewDelete().Model((*models.Patron)(nil)).Where("id = ?", id).Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return patron, nil
}

// ExpireLapsed moves active patrons whose membership ended before now to
// expired, returning how many were changed.
func (svc *Service) ExpireLapsed(ctx context.Context) (int, error) {
	res, err := svc.db.NewUpdate().
		Model((*models.Patron)(nil)).
		Set("status = ?", models.PatronStatusExpired).
		Where("status = ?", models.PatronStatusActive).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", svc.clock.Now()).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return int(n), nil
}

// Dashboard summarizes a patron's account.
type Dashboard struct {
	Patron         *models.Patron        `json:"patron"`
	CheckedOut     int                   `json:"checked_out"`
	ActiveHolds    int                   `json:"active_holds"`
	DueSoon        int                   `json:"due_soon"`
	ReadyForPickup int                   `json:"ready_for_pickup"`
	TotalFines     string                `json:"total_fines"`
	RecentActivity []*models.ActivityLog `json:"recent_activity"`
}

const dueSoonWindow = 3 * 24 * time.Hour

func (svc *Service) Dashboard(ctx context.Context, patronID int) (*Dashboard, error) {
	patron, err := svc.Retrieve(ctx, patronID)
	if err != nil {
		return nil, err
	}
	now := svc.clock.Now()
	d := &Dashboard{Patron: patron}

	openCheckouts := func() *bun.SelectQuery {
		return svc.db.NewSelect().
			Model((*models.Checkout)(nil)).
			Where("co.patron_id = ?", patronID).
			Where("co.returned_at IS NULL")
	}
	if d.CheckedOut, err = openCheckouts().Count(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	d.DueSoon, err = openCheckouts().
		Where("co.due_date > ?", now).
		Where("co.due_date <= ?", now.Add(dueSoonWindow)).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	d.ActiveHolds, err = svc.db.NewSelect().
		Model((*models.Hold)(nil)).
		Where("h.patron_id = ?", patronID).
		Where("h.status IN (?)", bun.In(models.ActiveHoldStatuses)).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	d.ReadyForPickup, err = svc.db.NewSelect().
		Model((*models.Hold)(nil)).
		Where("h.patron_id = ?", patronID).
		Where("h.status = ?", models.HoldStatusReady).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	fines := []*models.Fine{}
	err = svc.db.NewSelect().
		Model(&fines).
		Where("f.patron_id = ?", patronID).
		Where("f.paid = ?", false).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	d.TotalFines = models.SumOutstanding(fines).StringFixed(2)

	d.RecentActivity, err = svc.activity.Recent(ctx, &patronID, 5)
	if err != nil {
		return nil, err
	}

	return d, nil
}

package librarians

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/activity"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
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

type SignupOptions struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (svc *Service) Signup(ctx context.Context, opts SignupOptions) (*models.Librarian, error) {
	if opts.Password != opts.ConfirmPassword {
		return nil, errcodes.ValidationError("Passwords do not match.")
	}

	taken, err := svc.db.NewSelect().
		Model((*models.Librarian)(nil)).
		Where("l.username = ?", opts.Username).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if taken {
		return nil, errcodes.ValidationError("Username already taken.")
	}

	taken, err = svc.db.NewSelect().
		Model((*models.Librarian)(nil)).
		Where("l.email = ? COLLATE NOCASE", opts.Email).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if taken {
		return nil, errcodes.ValidationError("Email already registered.")
	}

	hash, err := auth.HashSecret(opts.Password)
	if err != nil {
		return nil, err
	}

	librarian := &models.Librarian{
		CreatedAt:    svc.clock.Now(),
		Username:     opts.Username,
		Email:        opts.Email,
		PasswordHash: hash,
	}
	_, err = svc.db.NewInsert().Model(librarian).Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			if strings.Contains(err.Error(), "username") {
				return nil, errcodes.ValidationError("Username already taken.")
			}
			return nil, errcodes.ValidationError("Email already registered.")
		}
		return nil, errors.WithStack(err)
	}

	return librarian, nil
}

func (svc *Service) Retrieve(ctx context.Context, id int) (*models.Librarian, error) {
	librarian := &models.Librarian{}
	err := svc.db.NewSelect().Model(librarian).Where("l.id = ?", id).Scan(ctx)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errcodes.NotFound("Librarian")
		}
		return nil, errors.WithStack(err)
	}
	return librarian, nil
}

type Dashboard struct {
	Librarian       *models.Librarian     `json:"librarian"`
	CheckoutsToday  int                   `json:"checkouts_today"`
	PendingRequests int                   `json:"pending_requests"`
	OverdueItems    int                   `json:"overdue_items"`
	RecentActivity  []*models.ActivityLog `json:"recent_activity"`
}

// Dashboard counts today's checkouts by the UTC calendar day.
func (svc *Service) Dashboard(ctx context.Context, librarianID int) (*Dashboard, error) {
	librarian, err := svc.Retrieve(ctx, librarianID)
	if err != nil {
		return nil, err
	}

	now := svc.clock.Now()
	startOfDay := now.Truncate(24 * time.Hour)
	d := &Dashboard{Librarian: librarian}

	d.CheckoutsToday, err = svc.db.NewSelect().
		Model((*models.Checkout)(nil)).
		Where("co.checked_out_at >= ?", startOfDay).
		Where("co.checked_out_at < ?", startOfDay.Add(24*time.Hour)).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	d.PendingRequests, err = svc.db.NewSelect().
		Model((*models.MediaRequest)(nil)).
		Where("mr.status = ?", models.RequestStatusPending).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	d.OverdueItems, err = svc.db.NewSelect().
		Model((*models.Checkout)(nil)).
		Where("co.returned_at IS NULL").
		Where("co.due_date < ?", now).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	d.RecentActivity, err = svc.activity.Recent(ctx, nil, 5)
	if err != nil {
		return nil, err
	}

	return d, nil
}

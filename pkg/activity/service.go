package activity

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/metrics"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

type Service struct {
	db      *bun.DB
	clock   clock.Clock
	metrics *metrics.CirculationMetrics
}

func NewService(db *bun.DB, clk clock.Clock, m *metrics.CirculationMetrics) *Service {
	return &Service{db: db, clock: clk, metrics: m}
}

// Entry describes one activity log row. Zero ids are stored as NULL.
type Entry struct {
	Action      string
	PatronID    int
	MediaItemID int
	LibrarianID int
	Description string
}

func optionalID(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}

// Record appends an entry using idb, so it can join the caller's
// transaction.
func (svc *Service) Record(ctx context.Context, idb bun.IDB, entry Entry) (*models.ActivityLog, error) {
	if idb == nil {
		idb = svc.db
	}

	log := &models.ActivityLog{
		CreatedAt:   svc.clock.Now(),
		Action:      entry.Action,
		PatronID:    optionalID(entry.PatronID),
		MediaItemID: optionalID(entry.MediaItemID),
		LibrarianID: optionalID(entry.LibrarianID),
		Description: entry.Description,
	}
	_, err := idb.NewInsert().Model(log).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	svc.metrics.Record(entry.Action)
	return log, nil
}

type ListOptions struct {
	Limit    int
	Offset   int
	PatronID *int
	Action   string
}

// List returns entries newest first along with the total matching count.
func (svc *Service) List(ctx context.Context, opts ListOptions) ([]*models.ActivityLog, int, error) {
	logs := []*models.ActivityLog{}

	q := svc.db.NewSelect().
		Model(&logs).
		Order("al.created_at DESC", "al.id DESC")

	if opts.PatronID != nil {
		q = q.Where("al.patron_id = ?", *opts.PatronID)
	}
	if opts.Action != "" {
		q = q.Where("al.action = ?", opts.Action)
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

	return logs, total, nil
}

// Recent returns the latest n entries, optionally limited to one patron.
func (svc *Service) Recent(ctx context.Context, patronID *int, n int) ([]*models.ActivityLog, error) {
	logs, _, err := svc.List(ctx, ListOptions{Limit: n, PatronID: patronID})
	return logs, err
}

// DetachPatron nulls the patron reference on every entry so the entries
// survive the patron's deletion.
func (svc *Service) DetachPatron(ctx context.Context, idb bun.IDB, patronID int) error {
	_, err := idb.NewUpdate().
		Model((*models.ActivityLog)(nil)).
		Set("patron_id = NULL").
		Where("patron_id = ?", patronID).
		Exec(ctx)
	return errors.WithStack(err)
}

// DetachMediaItem nulls the item reference on every entry.
func (svc *Service) DetachMediaItem(ctx context.Context, idb bun.IDB, mediaItemID int) error {
	_, err := idb.NewUpdate().
		Model((*models.ActivityLog)(nil)).
		Set("media_item_id = NULL").
		Where("media_item_id = ?", mediaItemID).
		Exec(ctx)
	return errors.WithStack(err)
}

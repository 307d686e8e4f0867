package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/activity"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

const (
	FeaturedLimit  = 15
	SearchLimit    = 24
	CatalogLimit   = 50
	barcodeRetries = 10
)

const (
	SearchByAny       = "any"
	SearchByTitle     = "title"
	SearchByAuthor    = "author"
	SearchByISBN      = "isbn"
	SearchByPublisher = "publisher"
)

type Service struct {
	db       *bun.DB
	clock    clock.Clock
	activity *activity.Service
}

func NewService(db *bun.DB, clk clock.Clock, activityService *activity.Service) *Service {
	return &Service{db: db, clock: clk, activity: activityService}
}

// GenerateBarcode returns a random barcode. The unique index on barcode
// catches collisions.
func GenerateBarcode() string {
	return fmt.Sprintf("BC-%09d", rand.IntN(1_000_000_000))
}

func (svc *Service) Retrieve(ctx context.Context, id int) (*models.MediaItem, error) {
	item := &models.MediaItem{}
	err := svc.db.NewSelect().
		Model(item).
		Where("mi.id = ?", id).
		Scan(ctx)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errcodes.NotFound("Item")
		}
		return nil, errors.WithStack(err)
	}
	return item, nil
}

// Featured returns the first items of the catalog for the public landing
// page.
func (svc *Service) Featured(ctx context.Context) ([]*models.MediaItem, error) {
	items := []*models.MediaItem{}
	err := svc.db.NewSelect().
		Model(&items).
		Order("mi.title ASC", "mi.id ASC").
		Limit(FeaturedLimit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return items, nil
}

type SearchOptions struct {
	Query     string
	SearchBy  string
	MediaType string
	Genre     string
	Limit     int
}

// Search is the patron-facing catalog search.
func (svc *Service) Search(ctx context.Context, opts SearchOptions) ([]*models.MediaItem, int, error) {
	items := []*models.MediaItem{}

	q := svc.db.NewSelect().
		Model(&items).
		Order("mi.title ASC", "mi.id ASC")

	if like := database.ContainsPattern(opts.Query); like != "" {
		switch opts.SearchBy {
		case SearchByTitle:
			q = q.Where(`mi.title LIKE ? ESCAPE '\'`, like)
		case SearchByAuthor:
			q = q.Where(`mi.author LIKE ? ESCAPE '\'`, like)
		case SearchByISBN:
			q = q.Where(`mi.isbn LIKE ? ESCAPE '\'`, like)
		case SearchByPublisher:
			q = q.Where(`mi.publisher LIKE ? ESCAPE '\'`, like)
		default:
			q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where(`mi.title LIKE ? ESCAPE '\'`, like).
					WhereOr(`mi.author LIKE ? ESCAPE '\'`, like)
			})
		}
	}
	if opts.MediaType != "" {
		q = q.Where("mi.media_type = ?", opts.MediaType)
	}
	if genre := database.ContainsPattern(opts.Genre); genre != "" {
		q = q.Where(`mi.genre LIKE ? ESCAPE '\'`, genre)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = SearchLimit
	}
	q = q.Limit(limit)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return items, total, nil
}

type ListOptions struct {
	Query     string
	MediaType string
	Limit     int
	Offset    int
}

// List is the librarian catalog view. The query matches title, author and
// ISBN.
func (svc *Service) List(ctx context.Context, opts ListOptions) ([]*models.MediaItem, int, error) {
	items := []*models.MediaItem{}

	q := svc.db.NewSelect().
		Model(&items).
		Order("mi.added_at DESC", "mi.id DESC")

	if like := database.ContainsPattern(opts.Query); like != "" {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`mi.title LIKE ? ESCAPE '\'`, like).
				WhereOr(`mi.author LIKE ? ESCAPE '\'`, like).
				WhereOr(`mi.isbn LIKE ? ESCAPE '\'`, like)
		})
	}
	if opts.MediaType != "" {
		q = q.Where("mi.media_type = ?", opts.MediaType)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = CatalogLimit
	}
	q = q.Limit(limit)
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return items, total, nil
}

// Available returns up to limit items on the shelf, by title.
func (svc *Service) Available(ctx context.Context, limit int) ([]*models.MediaItem, error) {
	items := []*models.MediaItem{}
	err := svc.db.NewSelect().
		Model(&items).
		Where("mi.status = ?", models.MediaStatusAvailable).
		Order("mi.title ASC", "mi.id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return items, nil
}

type CreateOptions struct {
	Title       string
	Author      string
	MediaType   string
	ISBN        *string
	Description string
	Genre       string
	Publisher   string
	Location    string
	Pages       *int
}

// Create adds an available item with a generated barcode.
func (svc *Service) Create(ctx context.Context, opts CreateOptions) (*models.MediaItem, error) {
	item := &models.MediaItem{
		AddedAt:     svc.clock.Now(),
		Title:       opts.Title,
		Author:      opts.Author,
		MediaType:   opts.MediaType,
		ISBN:        opts.ISBN,
		Status:      models.MediaStatusAvailable,
		Description: opts.Description,
		Genre:       opts.Genre,
		Publisher:   opts.Publisher,
		Location:    opts.Location,
		Pages:       opts.Pages,
	}

	for attempt := 0; ; attempt++ {
		item.Barcode = GenerateBarcode()
		_, err := svc.db.NewInsert().Model(item).Exec(ctx)
		if err == nil {
			return item, nil
		}
		if !database.IsUniqueViolation(err) || attempt+1 >= barcodeRetries {
			return nil, errors.WithStack(err)
		}
		item.ID = 0
	}
}

// Delete removes the item along with its checkouts, the fines charged on
// those checkouts, and its holds. Activity entries keep their text with the
// item reference cleared.
func (svc *Service) Delete(ctx context.Context, id int) (*models.MediaItem, error) {
	item, err := svc.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		checkoutIDs := tx.NewSelect().
			Model((*models.Checkout)(nil)).
			Column("id").
			Where("media_item_id = ?", id)
		_, err := tx.NewDelete().
			Model((*models.Fine)(nil)).
			Where("checkout_id IN (?)", checkoutIDs).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, model := range []interface{}{
			(*models.Checkout)(nil),
			(*models.Hold)(nil),
		} {
			if _, err := tx.NewDelete().Model(model).Where("media_item_id = ?", id).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		}

		if err := svc.activity.DetachMediaItem(ctx, tx, id); err != nil {
			return err
		}

		_, err = tx.NewDelete().Model((*models.MediaItem)(nil)).Where("id = ?", id).Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

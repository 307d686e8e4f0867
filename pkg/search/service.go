package search

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/fines"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

// ResultLimit bounds each typeahead response.
const ResultLimit = 10

type Service struct {
	db    *bun.DB
	fines *fines.Service
}

func NewService(db *bun.DB, fineService *fines.Service) *Service {
	return &Service{db: db, fines: fineService}
}

// Patrons matches name, card number and email, and reports each patron's
// open checkouts and outstanding fines.
func (svc *Service) Patrons(ctx context.Context, query string) ([]PatronResult, error) {
	results := []PatronResult{}
	patrons := []*models.Patron{}
	q := svc.db.NewSelect().
		Model(&patrons).
		Order("p.name ASC", "p.id ASC").
		Limit(ResultLimit)
	if like := database.ContainsPattern(query); like != "" {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`p.name LIKE ? ESCAPE '\'`, like).
				WhereOr(`p.card_number LIKE ? ESCAPE '\'`, like).
				WhereOr(`p.email LIKE ? ESCAPE '\'`, like)
		})
	}
	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(patrons) == 0 {
		return results, nil
	}

	ids := make([]int, 0, len(patrons))
	for _, p := range patrons {
		ids = append(ids, p.ID)
	}

	var counts []struct {
		PatronID int
		Count    int
	}
	err = svc.db.NewSelect().
		Model((*models.Checkout)(nil)).
		Column("co.patron_id").
		ColumnExpr("count(*) AS count").
		Where("co.patron_id IN (?)", bun.In(ids)).
		Where("co.returned_at IS NULL").
		Group("co.patron_id").
		Scan(ctx, &counts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	checkedOut := make(map[int]int, len(counts))
	for _, c := range counts {
		checkedOut[c.PatronID] = c.Count
	}

	owed, err := svc.fines.Outstanding(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range patrons {
		results = append(results, PatronResult{
			ID:         p.ID,
			Name:       p.Name,
			CardNumber: p.CardNumber,
			CheckedOut: checkedOut[p.ID],
			Fines:      owed[p.ID].InexactFloat64(),
		})
	}
	return results, nil
}

// Items matches title and barcode among items on the shelf.
func (svc *Service) Items(ctx context.Context, query string) ([]ItemResult, error) {
	results := []ItemResult{}
	items := []*models.MediaItem{}
	q := svc.db.NewSelect().
		Model(&items).
		Where("mi.status = ?", models.MediaStatusAvailable).
		Order("mi.title ASC", "mi.id ASC").
		Limit(ResultLimit)
	if like := database.ContainsPattern(query); like != "" {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`mi.title LIKE ? ESCAPE '\'`, like).
				WhereOr(`mi.barcode LIKE ? ESCAPE '\'`, like)
		})
	}
	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, item := range items {
		results = append(results, ItemResult{
			ID:        item.ID,
			Title:     item.Title,
			Author:    item.Author,
			Barcode:   item.Barcode,
			MediaType: item.MediaType,
		})
	}
	return results, nil
}

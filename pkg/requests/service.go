package requests

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
	"github.com/uptrace/bun"
)

const (
	PatronLimit    = 10
	LibrarianLimit = 20
	// StatusAll lists requests in every status.
	StatusAll = "all"
)

type Service struct {
	db       *bun.DB
	clock    clock.Clock
	activity *activity.Service
}

func NewService(db *bun.DB, clk clock.Clock, activityService *activity.Service) *Service {
	return &Service{db: db, clock: clk, activity: activityService}
}

type SubmitOptions struct {
	Title               string
	Author              string
	MediaType           string
	Reason              string
	NotifyWhenAvailable bool
}

func (svc *Service) Submit(ctx context.Context, patronID int, opts SubmitOptions) (*models.MediaRequest, error) {
	req := &models.MediaRequest{
		PatronID:            patronID,
		Title:               opts.Title,
		Author:              opts.Author,
		MediaType:           opts.MediaType,
		Reason:              opts.Reason,
		Status:              models.RequestStatusPending,
		NotifyWhenAvailable: opts.NotifyWhenAvailable,
		RequestedAt:         svc.clock.Now(),
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(req).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		_, err := svc.activity.Record(ctx, tx, activity.Entry{
			Action:      models.ActionRequestSubmitted,
			PatronID:    patronID,
			Description: fmt.Sprintf("Requested %q", req.Title),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

// ListForPatron returns the patron's latest requests.
func (svc *Service) ListForPatron(ctx context.Context, patronID int) ([]*models.MediaRequest, error) {
	reqs := []*models.MediaRequest{}
	err := svc.db.NewSelect().
		Model(&reqs).
		Where("mr.patron_id = ?", patronID).
		Order("mr.requested_at DESC", "mr.id DESC").
		Limit(PatronLimit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return reqs, nil
}

type ReviewList struct {
	Requests []*models.MediaRequest `json:"requests"`
	Counts   map[string]int         `json:"counts"`
}

// ListForReview returns the newest requests in the given status (or every
// status for StatusAll) and the number of requests in each status.
func (svc *Service) ListForReview(ctx context.Context, status string) (*ReviewList, error) {
	list := &ReviewList{
		Requests: []*models.MediaRequest{},
		Counts: map[string]int{
			models.RequestStatusPending:  0,
			models.RequestStatusApproved: 0,
			models.RequestStatusRejected: 0,
		},
	}

	q := svc.db.NewSelect().
		Model(&list.Requests).
		Relation("Patron").
		Order("mr.requested_at DESC", "mr.id DESC").
		Limit(LibrarianLimit)
	if status != StatusAll {
		q = q.Where("mr.status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	var counts []struct {
		Status string
		Count  int
	}
	err := svc.db.NewSelect().
		Model((*models.MediaRequest)(nil)).
		Column("mr.status").
		ColumnExpr("count(*) AS count").
		Group("mr.status").
		Scan(ctx, &counts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, c := range counts {
		list.Counts[c.Status] = c.Count
	}

	return list, nil
}

// Review approves or rejects a request. Reviewing a request again
// overwrites the earlier review.
func (svc *Service) Review(ctx context.Context, librarianID, requestID int, status string) (*models.MediaRequest, error) {
	action := models.ActionRequestApproved
	if status == models.RequestStatusRejected {
		action = models.ActionRequestRejected
	} else if status != models.RequestStatusApproved {
		return nil, errors.Errorf("invalid review status %q", status)
	}

	req := &models.MediaRequest{}
	err := svc.db.NewSelect().Model(req).Where("mr.id = ?", requestID).Scan(ctx)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errcodes.NotFound("Request")
		}
		return nil, errors.WithStack(err)
	}

	now := svc.clock.Now()
	req.Status = status
	req.ReviewedAt = &now
	req.ReviewedBy = &librarianID

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model(req).
			Column("status", "reviewed_at", "reviewed_by").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = svc.activity.Record(ctx, tx, activity.Entry{
			Action:      action,
			PatronID:    req.PatronID,
			LibrarianID: librarianID,
			Description: fmt.Sprintf("Request for %q %s", req.Title, status),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

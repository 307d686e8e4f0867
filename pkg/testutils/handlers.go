package testutils

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/catalog"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

type handler struct {
	db    *bun.DB
	clock clock.Clock
}

// createPatronRequest is the request body for creating a test patron.
type createPatronRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	CardNumber string `json:"card_number" validate:"required,card_number"`
	PIN        string `json:"pin" validate:"required"`
	Status     string `json:"status" default:"active" validate:"oneof=active expired suspended"`
}

// createPatron creates a patron with a known card number and PIN.
// POST /test/patrons.
func (h *handler) createPatron(c echo.Context) error {
	ctx := c.Request().Context()

	var req createPatronRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	pinHash, err := auth.HashSecret(req.PIN)
	if err != nil {
		return errors.Wrap(err, "failed to hash pin")
	}

	now := h.clock.Now()
	expires := now.AddDate(1, 0, 0)
	patron := &models.Patron{
		CreatedAt:  now,
		Name:       req.Name,
		Email:      req.Email,
		CardNumber: req.CardNumber,
		PinHash:    pinHash,
		Status:     req.Status,
		ExpiresAt:  &expires,
	}
	if _, err := h.db.NewInsert().Model(patron).Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to create patron")
	}

	return c.JSON(http.StatusCreated, patron)
}

// createLibrarianRequest is the request body for creating a test librarian.
type createLibrarianRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// createLibrarian creates a librarian with a known password.
// POST /test/librarians.
func (h *handler) createLibrarian(c echo.Context) error {
	ctx := c.Request().Context()

	var req createLibrarianRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	hash, err := auth.HashSecret(req.Password)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	librarian := &models.Librarian{
		CreatedAt:    h.clock.Now(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if _, err := h.db.NewInsert().Model(librarian).Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to create librarian")
	}

	return c.JSON(http.StatusCreated, librarian)
}

// createItemRequest is the request body for creating a test item. The
// barcode is generated when it's left out.
type createItemRequest struct {
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author"`
	MediaType string `json:"media_type" default:"book" validate:"oneof=book audiobook dvd cd magazine"`
	Barcode   string `json:"barcode" validate:"omitempty,barcode"`
	Status    string `json:"status" default:"available" validate:"oneof=available checked_out on_hold in_transit lost"`
}

// createItem creates a catalog item with an optional fixed barcode.
// POST /test/items.
func (h *handler) createItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}
	if req.Barcode == "" {
		req.Barcode = catalog.GenerateBarcode()
	}

	item := &models.MediaItem{
		AddedAt:   h.clock.Now(),
		Title:     req.Title,
		Author:    req.Author,
		MediaType: req.MediaType,
		Barcode:   req.Barcode,
		Status:    req.Status,
	}
	if _, err := h.db.NewInsert().Model(item).Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to create item")
	}

	return c.JSON(http.StatusCreated, item)
}

// deleteAllResponse is the response body for wiping the database.
type deleteAllResponse struct {
	Deleted map[string]int `json:"deleted"`
}

// deleteAll removes every row from every circulation table.
// DELETE /test/data.
func (h *handler) deleteAll(c echo.Context) error {
	ctx := c.Request().Context()

	resp := deleteAllResponse{Deleted: map[string]int{}}
	// Children first so the order is valid with foreign keys enforced.
	tables := []struct {
		name  string
		model interface{}
	}{
		{"activity_logs", (*models.ActivityLog)(nil)},
		{"fines", (*models.Fine)(nil)},
		{"holds", (*models.Hold)(nil)},
		{"media_requests", (*models.MediaRequest)(nil)},
		{"checkouts", (*models.Checkout)(nil)},
		{"media_items", (*models.MediaItem)(nil)},
		{"patrons", (*models.Patron)(nil)},
		{"librarians", (*models.Librarian)(nil)},
	}

	err := h.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range tables {
			result, err := tx.NewDelete().Model(table.model).Where("1=1").Exec(ctx)
			if err != nil {
				return errors.Wrapf(err, "failed to delete %s", table.name)
			}
			deleted, _ := result.RowsAffected()
			resp.Deleted[table.name] = int(deleted)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

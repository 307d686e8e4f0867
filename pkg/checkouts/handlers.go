package checkouts

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	checkoutService *Service
}

func (h *handler) form(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := h.checkoutService.Form(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, form)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreatePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.checkoutService.Create(ctx, CreateOptions{
		PatronID:    params.PatronID,
		LibrarianID: auth.MustFromContext(c).ID,
		ItemIDs:     params.ItemIDs,
	})
	if err != nil {
		return err
	}

	resp := struct {
		*CreateResult
		Message string `json:"message"`
	}{result, fmt.Sprintf("Checked out %d item(s) to %s.", len(result.Checkouts), result.Patron.Name)}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) renew(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("checkoutId"))
	if err != nil {
		return errcodes.NotFound("Checkout")
	}

	co, err := h.checkoutService.Renew(ctx, auth.MustFromContext(c).ID, id)
	if err != nil {
		return err
	}

	resp := struct {
		Checkout *models.Checkout `json:"checkout"`
		Message  string           `json:"message"`
	}{co, fmt.Sprintf("Renewed %q. New due date: %s.", co.MediaItem.Title, co.DueDate.Format("January 2, 2006"))}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) checkedOut(c echo.Context) error {
	ctx := c.Request().Context()

	checkouts, err := h.checkoutService.Active(ctx, auth.MustFromContext(c).ID)
	if err != nil {
		return err
	}

	now := h.checkoutService.clock.Now()
	dueSoon := 0
	for _, co := range checkouts {
		if co.IsDueSoon(now) {
			dueSoon++
		}
	}

	resp := struct {
		Checkouts []*models.Checkout `json:"checkouts"`
		DueSoon   int                `json:"due_soon"`
	}{checkouts, dueSoon}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) recentCheckins(c echo.Context) error {
	ctx := c.Request().Context()

	checkouts, err := h.checkoutService.RecentCheckins(ctx, RecentCheckinsLimit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"checkins": checkouts})
}

func (h *handler) checkin(c echo.Context) error {
	ctx := c.Request().Context()

	params := CheckinPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.checkoutService.CheckIn(ctx, auth.MustFromContext(c).ID, params.Barcode)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("%q checked in.", result.Item.Title)
	if result.FineID != nil {
		message += fmt.Sprintf(" Overdue by %d days, fine of $%s.", result.DaysOverdue, result.Fine.StringFixed(2))
	}

	resp := struct {
		*CheckinResult
		Message string `json:"message"`
	}{result, message}

	return c.JSON(http.StatusOK, resp)
}

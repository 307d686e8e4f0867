package patrons

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	patronService *Service
}

func (h *handler) signup(c echo.Context) error {
	ctx := c.Request().Context()

	params := SignupPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	patron, err := h.patronService.Signup(ctx, SignupOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Patron  *models.Patron `json:"patron"`
		Message string         `json:"message"`
	}{patron, fmt.Sprintf("Account created! Your library card number is %s", patron.CardNumber)}

	return c.JSON(http.StatusCreated, resp)
}

func (h *handler) dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	ident := auth.MustFromContext(c)

	d, err := h.patronService.Dashboard(ctx, ident.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, d)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListPatronsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	patrons, total, err := h.patronService.List(ctx, ListOptions{
		Query:  params.Query,
		Status: params.Filter,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return err
	}

	resp := struct {
		Patrons []*models.Patron `json:"patrons"`
		Total   int              `json:"total"`
	}{patrons, total}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("patronId"))
	if err != nil {
		return errcodes.NotFound("Patron")
	}

	patron, err := h.patronService.Delete(ctx, id)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("patron deleted", logger.Data{
		"patron_id":    id,
		"librarian_id": auth.MustFromContext(c).ID,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Patron %s deleted.", patron.Name),
	})
}

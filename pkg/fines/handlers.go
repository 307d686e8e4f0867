package fines

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	fineService *Service
}

func (h *handler) listOwn(c echo.Context) error {
	ctx := c.Request().Context()

	fines, total, err := h.fineService.ListForPatron(ctx, auth.MustFromContext(c).ID)
	if err != nil {
		return err
	}

	resp := struct {
		Fines []*models.Fine `json:"fines"`
		Total string         `json:"total"`
	}{fines, total.StringFixed(2)}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) pay(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("fineId"))
	if err != nil {
		return errcodes.NotFound("Fine")
	}

	fine, err := h.fineService.MarkPaid(ctx, auth.MustFromContext(c).ID, id)
	if err != nil {
		return err
	}

	resp := struct {
		Fine    *models.Fine `json:"fine"`
		Message string       `json:"message"`
	}{fine, fmt.Sprintf("Fine of $%s marked as paid.", fine.Amount.StringFixed(2))}

	return c.JSON(http.StatusOK, resp)
}

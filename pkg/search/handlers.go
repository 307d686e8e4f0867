package search

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	searchService *Service
}

func (h *handler) patrons(c echo.Context) error {
	ctx := c.Request().Context()

	params := Query{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	results, err := h.searchService.Patrons(ctx, params.Query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, results)
}

func (h *handler) items(c echo.Context) error {
	ctx := c.Request().Context()

	params := Query{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	results, err := h.searchService.Items(ctx, params.Query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, results)
}

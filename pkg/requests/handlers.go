package requests

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
	requestService *Service
}

type requestResponse struct {
	Request *models.MediaRequest `json:"request"`
	Message string               `json:"message"`
}

func (h *handler) submit(c echo.Context) error {
	ctx := c.Request().Context()

	params := SubmitPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	req, err := h.requestService.Submit(ctx, auth.MustFromContext(c).ID, SubmitOptions{
		Title:               params.Title,
		Author:              params.Author,
		MediaType:           params.MediaType,
		Reason:              params.Reason,
		NotifyWhenAvailable: params.NotifyWhenAvailable == nil || *params.NotifyWhenAvailable,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, requestResponse{req, fmt.Sprintf("Your request for %q has been submitted.", req.Title)})
}

func (h *handler) listOwn(c echo.Context) error {
	ctx := c.Request().Context()

	reqs, err := h.requestService.ListForPatron(ctx, auth.MustFromContext(c).ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"requests": reqs})
}

func (h *handler) listForReview(c echo.Context) error {
	ctx := c.Request().Context()

	params := ReviewQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	list, err := h.requestService.ListForReview(ctx, params.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, list)
}

func (h *handler) review(status string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := strconv.Atoi(c.Param("requestId"))
		if err != nil {
			return errcodes.NotFound("Request")
		}

		req, err := h.requestService.Review(ctx, auth.MustFromContext(c).ID, id, status)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, requestResponse{req, fmt.Sprintf("Request for %q %s.", req.Title, status)})
	}
}

package holds

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
	holdService *Service
}

type holdResponse struct {
	Hold    *models.Hold `json:"hold"`
	Message string       `json:"message"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	list, err := h.holdService.ListForPatron(ctx, auth.MustFromContext(c).ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, list)
}

func (h *handler) place(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		return errcodes.NotFound("Item")
	}

	hold, err := h.holdService.Place(ctx, auth.MustFromContext(c).ID, itemID)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Hold placed on %q. You are number %d in the queue.", hold.MediaItem.Title, hold.QueuePosition)
	return c.JSON(http.StatusCreated, holdResponse{hold, message})
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Request().Context()

	holdID, err := strconv.Atoi(c.Param("holdId"))
	if err != nil {
		return errcodes.NotFound("Hold")
	}

	hold, err := h.holdService.Cancel(ctx, auth.MustFromContext(c).ID, holdID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, holdResponse{hold, "Hold cancelled."})
}

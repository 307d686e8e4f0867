package activity

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	activityService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListActivityQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	logs, total, err := h.activityService.List(ctx, ListOptions{
		Limit:  params.Limit,
		Offset: params.Offset,
		Action: params.Action,
	})
	if err != nil {
		return err
	}

	resp := struct {
		Activity []*models.ActivityLog `json:"activity"`
		Total    int                   `json:"total"`
	}{logs, total}

	return c.JSON(http.StatusOK, resp)
}

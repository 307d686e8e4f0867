package librarians

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	librarianService *Service
}

func (h *handler) signup(c echo.Context) error {
	ctx := c.Request().Context()

	params := SignupPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	librarian, err := h.librarianService.Signup(ctx, SignupOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Librarian *models.Librarian `json:"librarian"`
		Message   string            `json:"message"`
	}{librarian, "Account created! Please login."}

	return c.JSON(http.StatusCreated, resp)
}

func (h *handler) dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	d, err := h.librarianService.Dashboard(ctx, auth.MustFromContext(c).ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, d)
}

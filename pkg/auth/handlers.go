package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const CookieName = "circulation_session"

type handler struct {
	authService *Service
}

func isSecure(c echo.Context) bool {
	return c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https"
}

func setSessionCookie(c echo.Context, value string, maxAge time.Duration) {
	ma := int(maxAge.Seconds())
	if value == "" {
		ma = -1
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   ma,
		HttpOnly: true,
		Secure:   isSecure(c),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	var ident *Identity
	var err error
	switch params.UserType {
	case RolePatron:
		ident, err = h.authService.AuthenticatePatron(ctx, params.CardNumber, params.PIN)
	case RoleLibrarian:
		ident, err = h.authService.AuthenticateLibrarian(ctx, params.Username, params.Password)
	}
	if err != nil {
		return err
	}

	token, err := h.authService.GenerateToken(ident)
	if err != nil {
		return errors.WithStack(err)
	}
	setSessionCookie(c, token, h.authService.SessionMaxAge())

	logger.FromContext(ctx).Info("logged in", logger.Data{"role": ident.Role, "id": ident.ID})

	return c.JSON(http.StatusOK, ident)
}

func (h *handler) logout(c echo.Context) error {
	setSessionCookie(c, "", 0)
	return c.JSON(http.StatusOK, map[string]string{"message": "You have been logged out."})
}

func (h *handler) me(c echo.Context) error {
	return c.JSON(http.StatusOK, MustFromContext(c))
}

package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/shishobooks/circulation/pkg/errcodes"
)

type Middleware struct {
	authService *Service
}

func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{authService: authService}
}

// Authenticate resolves the session cookie into an Identity and stores it on
// the request. Requests without a valid session get a 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		cookie, err := c.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			return errcodes.Unauthorized("Please login to access this page.")
		}

		claims, err := m.authService.ValidateToken(cookie.Value)
		if err != nil {
			return errcodes.Unauthorized("Your session has expired. Please login again.")
		}

		ident, err := m.authService.ResolveIdentity(ctx, claims)
		if errors.Is(err, ErrUnknownAccount) {
			logger.FromEchoContext(c).Err(err).Warn("session for missing account")
			return errcodes.Unauthorized("Please login to access this page.")
		}
		if err != nil {
			return err
		}

		setIdentity(c, ident)
		return next(c)
	}
}

func (m *Middleware) requireRole(role Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.Authenticate(func(c echo.Context) error {
			ident := MustFromContext(c)
			if ident.Role != role {
				return errcodes.Forbidden("This page requires a " + string(role) + " account.")
			}
			return next(c)
		})
	}
}

// RequirePatron authenticates the request and rejects librarian sessions.
func (m *Middleware) RequirePatron() echo.MiddlewareFunc {
	return m.requireRole(RolePatron)
}

// RequireLibrarian authenticates the request and rejects patron sessions.
func (m *Middleware) RequireLibrarian() echo.MiddlewareFunc {
	return m.requireRole(RoleLibrarian)
}

package librarians

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, librarianService *Service) {
	h := &handler{librarianService}

	e.POST("/signup/librarian", h.signup)
}

func RegisterLibrarianRoutes(g *echo.Group, librarianService *Service) {
	h := &handler{librarianService}

	g.GET("", h.dashboard)
}

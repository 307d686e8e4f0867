package activity

import (
	"github.com/labstack/echo/v4"
)

// RegisterLibrarianRoutes mounts the activity log on a librarian-only group.
func RegisterLibrarianRoutes(g *echo.Group, activityService *Service) {
	h := &handler{activityService}

	g.GET("/activity", h.list)
}

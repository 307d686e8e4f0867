package search

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers the typeahead routes on a group that
// already requires a librarian session.
func RegisterRoutesWithGroup(g *echo.Group, searchService *Service) {
	h := &handler{searchService}

	g.GET("/patrons/search", h.patrons)
	g.GET("/items/search", h.items)
}

// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB, clk clock.Clock) {
	h := &handler{db: db, clock: clk}

	test := e.Group("/test")
	test.POST("/patrons", h.createPatron)
	test.POST("/librarians", h.createLibrarian)
	test.POST("/items", h.createItem)
	test.DELETE("/data", h.deleteAll)
}

package requests

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/models"
)

func RegisterPatronRoutes(g *echo.Group, requestService *Service) {
	h := &handler{requestService}

	g.GET("/requests", h.listOwn)
	g.POST("/requests", h.submit)
}

func RegisterLibrarianRoutes(g *echo.Group, requestService *Service) {
	h := &handler{requestService}

	g.GET("/requests", h.listForReview)
	g.POST("/requests/approve/:requestId", h.review(models.RequestStatusApproved))
	g.POST("/requests/reject/:requestId", h.review(models.RequestStatusRejected))
}

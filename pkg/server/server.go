package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shishobooks/circulation/pkg/activity"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/binder"
	"github.com/shishobooks/circulation/pkg/catalog"
	"github.com/shishobooks/circulation/pkg/checkouts"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/fines"
	"github.com/shishobooks/circulation/pkg/holds"
	"github.com/shishobooks/circulation/pkg/librarians"
	"github.com/shishobooks/circulation/pkg/metrics"
	"github.com/shishobooks/circulation/pkg/patrons"
	"github.com/shishobooks/circulation/pkg/requests"
	"github.com/shishobooks/circulation/pkg/search"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/uptrace/bun"
)

// Registry is where the server registers its collectors and what /metrics
// exposes.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

func New(cfg *config.Config, db *bun.DB, clk clock.Clock, reg Registry) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b
	e.JSONSerializer = jsonSerializer{}

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	circulationMetrics := metrics.NewCirculationMetrics(reg)

	activityService := activity.NewService(db, clk, circulationMetrics)
	authService := auth.NewService(db, clk, auth.ServiceOptions{
		JWTSecret:     cfg.JWTSecret,
		SessionMaxAge: cfg.SessionMaxAge,
		Metrics:       circulationMetrics,
	})
	authMiddleware := auth.NewMiddleware(authService)

	patronService := patrons.NewService(db, clk, activityService, cfg.MembershipDays)
	librarianService := librarians.NewService(db, clk, activityService)
	catalogService := catalog.NewService(db, clk, activityService)
	checkoutService := checkouts.NewService(db, clk, checkouts.ServiceOptions{
		Activity: activityService,
		Patrons:  patronService,
		Catalog:  catalogService,
		Metrics:  circulationMetrics,
	})
	holdService := holds.NewService(db, clk, activityService, catalogService)
	requestService := requests.NewService(db, clk, activityService)
	fineService := fines.NewService(db, clk, activityService)
	searchService := search.NewService(db, fineService)

	// Public routes
	auth.RegisterRoutes(e, authService, authMiddleware)
	patrons.RegisterRoutes(e, patronService)
	librarians.RegisterRoutes(e, librarianService)
	catalog.RegisterRoutes(e, catalogService)

	// Patron routes
	patronGroup := e.Group("/patron", authMiddleware.RequirePatron())
	patrons.RegisterPatronRoutes(patronGroup, patronService)
	catalog.RegisterPatronRoutes(patronGroup, catalogService)
	checkouts.RegisterPatronRoutes(patronGroup, checkoutService)
	holds.RegisterPatronRoutes(patronGroup, holdService)
	requests.RegisterPatronRoutes(patronGroup, requestService)
	fines.RegisterPatronRoutes(patronGroup, fineService)

	// Librarian routes
	librarianGroup := e.Group("/librarian", authMiddleware.RequireLibrarian())
	librarians.RegisterLibrarianRoutes(librarianGroup, librarianService)
	catalog.RegisterLibrarianRoutes(librarianGroup, catalogService)
	patrons.RegisterLibrarianRoutes(librarianGroup, patronService)
	checkouts.RegisterLibrarianRoutes(librarianGroup, checkoutService)
	requests.RegisterLibrarianRoutes(librarianGroup, requestService)
	fines.RegisterLibrarianRoutes(librarianGroup, fineService)
	activity.RegisterLibrarianRoutes(librarianGroup, activityService)

	// Typeahead routes used by the checkout desk
	apiGroup := e.Group("/api", authMiddleware.RequireLibrarian())
	search.RegisterRoutesWithGroup(apiGroup, searchService)

	if cfg.IsTest() {
		testutils.RegisterRoutes(e, db, clk)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}

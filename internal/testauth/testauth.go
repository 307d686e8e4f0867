// Package testauth mints sessions for handler tests.
package testauth

import (
	"net/http"
	"testing"
	"time"

	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const secret = "test-secret"

// New returns an auth service and middleware sharing the given clock.
func New(db *bun.DB, clk clock.Clock) (*auth.Service, *auth.Middleware) {
	svc := auth.NewService(db, clk, auth.ServiceOptions{
		JWTSecret:     secret,
		SessionMaxAge: 24 * time.Hour,
	})
	return svc, auth.NewMiddleware(svc)
}

func Cookie(t *testing.T, svc *auth.Service, role auth.Role, id int) *http.Cookie {
	t.Helper()
	token, err := svc.GenerateToken(&auth.Identity{Role: role, ID: id})
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func Patron(t *testing.T, svc *auth.Service, id int) *http.Cookie {
	t.Helper()
	return Cookie(t, svc, auth.RolePatron, id)
}

func Librarian(t *testing.T, svc *auth.Service, id int) *http.Cookie {
	t.Helper()
	return Cookie(t, svc, auth.RoleLibrarian, id)
}

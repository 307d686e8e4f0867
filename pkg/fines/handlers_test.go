package fines

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shishobooks/circulation/internal/testauth"
	"github.com/shishobooks/circulation/internal/testdb"
	"github.com/shishobooks/circulation/internal/testhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFineHandlers(t *testing.T) {
	t.Parallel()
	svc, db, clk := newTestService(t)
	authService, mw := testauth.New(db, clk)
	e := testhttp.NewEcho(t)
	RegisterPatronRoutes(e.Group("/patron", mw.RequirePatron()), svc)
	RegisterLibrarianRoutes(e.Group("/librarian", mw.RequireLibrarian()), svc)

	patron := testdb.CreatePatron(t, db)
	librarian := testdb.CreateLibrarian(t, db)
	fine := createFine(t, db, patron, "1.35", false)
	createFine(t, db, patron, "2.00", true)

	rec := testhttp.Do(e, http.MethodGet, "/patron/fines", "", testauth.Patron(t, authService, patron.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		Total string `json:"total"`
	}
	testhttp.Decode(t, rec, &list)
	assert.Equal(t, "1.35", list.Total)

	cookie := testauth.Librarian(t, authService, librarian.ID)
	rec = testhttp.Do(e, http.MethodPost, fmt.Sprintf("/librarian/fines/pay/%d", fine.ID), "", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Fine of $1.35 marked as paid.")

	rec = testhttp.Do(e, http.MethodPost, fmt.Sprintf("/librarian/fines/pay/%d", fine.ID), "", cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Fine has already been paid.", testhttp.ErrorMessage(t, rec))
}

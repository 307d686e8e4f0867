package requests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shishobooks/circulation/internal/testauth"
	"github.com/shishobooks/circulation/internal/testdb"
	"github.com/shishobooks/circulation/internal/testhttp"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHandlers(t *testing.T) {
	t.Parallel()
	svc, db, clk := newTestService(t)
	authService, mw := testauth.New(db, clk)
	e := testhttp.NewEcho(t)
	RegisterPatronRoutes(e.Group("/patron", mw.RequirePatron()), svc)
	RegisterLibrarianRoutes(e.Group("/librarian", mw.RequireLibrarian()), svc)

	patron := testdb.CreatePatron(t, db)
	librarian := testdb.CreateLibrarian(t, db)
	patronCookie := testauth.Patron(t, authService, patron.ID)
	librarianCookie := testauth.Librarian(t, authService, librarian.ID)

	rec := testhttp.Do(e, http.MethodPost, "/patron/requests", `{"title":" Ancillary Justice ","author":"Ann Leckie"}`, patronCookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var submitted requestResponse
	testhttp.Decode(t, rec, &submitted)
	assert.Equal(t, "Ancillary Justice", submitted.Request.Title)
	assert.Equal(t, models.MediaTypeBook, submitted.Request.MediaType)
	assert.True(t, submitted.Request.NotifyWhenAvailable)
	assert.Equal(t, `Your request for "Ancillary Justice" has been submitted.`, submitted.Message)

	rec = testhttp.Do(e, http.MethodPost, "/patron/requests", `{"title":"","media_type":"book"}`, patronCookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = testhttp.Do(e, http.MethodPost, "/patron/requests", `{"title":"Vinyl","media_type":"record"}`, patronCookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = testhttp.Do(e, http.MethodGet, "/patron/requests", "", patronCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ancillary Justice")

	rec = testhttp.Do(e, http.MethodGet, "/librarian/requests", "", librarianCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list ReviewList
	testhttp.Decode(t, rec, &list)
	assert.Len(t, list.Requests, 1)
	assert.Equal(t, 1, list.Counts[models.RequestStatusPending])

	rec = testhttp.Do(e, http.MethodPost, fmt.Sprintf("/librarian/requests/approve/%d", submitted.Request.ID), "", librarianCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `Request for \"Ancillary Justice\" approved.`)

	rec = testhttp.Do(e, http.MethodGet, "/librarian/requests?status=all", "", librarianCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	testhttp.Decode(t, rec, &list)
	assert.Len(t, list.Requests, 1)
	assert.Equal(t, 1, list.Counts[models.RequestStatusApproved])

	rec = testhttp.Do(e, http.MethodGet, "/librarian/requests?status=bogus", "", librarianCookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = testhttp.Do(e, http.MethodPost, fmt.Sprintf("/librarian/requests/reject/%d", submitted.Request.ID), "", patronCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitHandler_NotifyDefaultsOn(t *testing.T) {
	t.Parallel()
	svc, db, clk := newTestService(t)
	authService, mw := testauth.New(db, clk)
	e := testhttp.NewEcho(t)
	RegisterPatronRoutes(e.Group("/patron", mw.RequirePatron()), svc)
	cookie := testauth.Patron(t, authService, testdb.CreatePatron(t, db).ID)

	tcs := []struct {
		body   string
		notify bool
	}{
		{`{"title":"Provenance"}`, true},
		{`{"title":"Provenance","notify_when_available":true}`, true},
		{`{"title":"Provenance","notify_when_available":false}`, false},
	}

	for _, tc := range tcs {
		rec := testhttp.Do(e, http.MethodPost, "/patron/requests", tc.body, cookie)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var submitted requestResponse
		testhttp.Decode(t, rec, &submitted)
		assert.Equal(t, tc.notify, submitted.Request.NotifyWhenAvailable, tc.body)
	}
}

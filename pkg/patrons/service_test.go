package patrons

import (
	"context"
	"testing"
	"time"

	"github.com/shishobooks/circulation/internal/testdb"
	"github.com/shishobooks/circulation/pkg/activity"
	"github.com/shishobooks/circulation/pkg/auth"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestService(t *testing.T) (*Service, *bun.DB, *clock.Fixed) {
	t.Helper()
	db := testdb.New(t)
	clk := clock.NewFixed(testdb.Epoch)
	return NewService(db, clk, activity.NewService(db, clk, nil), 365), db, clk
}

func TestSignup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	patron, err := svc.Signup(ctx, SignupOptions{
		Name:       "Genly Ai",
		Email:      "genly@example.com",
		PIN:        "2468",
		ConfirmPIN: "2468",
	})
	require.NoError(t, err)

	assert.NotZero(t, patron.ID)
	assert.Regexp(t, `^LC-\d{6}$`, patron.CardNumber)
	assert.Equal(t, models.PatronStatusActive, patron.Status)
	require.NotNil(t, patron.ExpiresAt)
	assert.Equal(t, testdb.Epoch.AddDate(0, 0, 365), *patron.ExpiresAt)
	assert.NotEqual(t, "2468", patron.PinHash)
	assert.True(t, auth.CheckSecret(patron.PinHash, "2468"))

	logs := []*models.ActivityLog{}
	require.NoError(t, db.NewSelect().Model(&logs).Scan(ctx))
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionPatronCreated, logs[0].Action)
	assert.Equal(t, patron.ID, *logs[0].PatronID)
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	testdb.CreatePatron(t, db, func(p *models.Patron) {
		p.Email = "taken@example.com"
	})

	_, err := svc.Signup(ctx, SignupOptions{Name: "A", Email: "a@example.com", PIN: "1234", ConfirmPIN: "4321"})
	assert.ErrorIs(t, err, errcodes.ValidationError("PINs do not match."))

	_, err = svc.Signup(ctx, SignupOptions{Name: "A", Email: "TAKEN@example.com", PIN: "1234", ConfirmPIN: "1234"})
	assert.ErrorIs(t, err, errcodes.ValidationError("Email already registered."))
}

func TestGenerateCardNumber(t *testing.T) {
	t.Parallel()
	for i := 0; i < 100; i++ {
		assert.Regexp(t, `^LC-\d{6}$`, GenerateCardNumber())
	}
}

func TestList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	testdb.CreatePatron(t, db, func(p *models.Patron) { p.Name = "Estraven" })
	testdb.CreatePatron(t, db, func(p *models.Patron) {
		p.Name = "Argaven"
		p.Status = models.PatronStatusExpired
	})
	testdb.CreatePatron(t, db, func(p *models.Patron) {
		p.Name = "Tibe"
		p.Email = "tibe@karhide.example"
	})

	patrons, total, err := svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "Argaven", patrons[0].Name)

	patrons, total, err = svc.List(ctx, ListOptions{Query: "karhide"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Tibe", patrons[0].Name)

	_, total, err = svc.List(ctx, ListOptions{Query: "aven", Status: models.PatronStatusActive})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	patrons, total, err = svc.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, patrons, 1)
}

func TestList_WildcardsMatchLiterally(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	testdb.CreatePatron(t, db, func(p *models.Patron) { p.Name = "Shevek" })
	testdb.CreatePatron(t, db, func(p *models.Patron) {
		p.Name = "Takver"
		p.Email = "takver_anarres@example.com"
	})

	patrons, total, err := svc.List(ctx, ListOptions{Query: "_"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Takver", patrons[0].Name)

	_, total, err = svc.List(ctx, ListOptions{Query: "%"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDelete_Cascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	patron := testdb.CreatePatron(t, db)
	other := testdb.CreatePatron(t, db)
	item := testdb.CreateItem(t, db)
	otherItem := testdb.CreateItem(t, db)
	co := testdb.CreateCheckout(t, db, patron, item, testdb.Epoch)
	testdb.CreateCheckout(t, db, other, otherItem, testdb.Epoch)

	_, err := db.NewInsert().Model(&models.Fine{
		PatronID:   patron.ID,
		CheckoutID: &co.ID,
		Amount:     decimal.RequireFromString("0.45"),
		Reason:     "Overdue",
		CreatedAt:  testdb.Epoch,
	}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.Hold{
		PatronID: patron.ID, MediaItemID: otherItem.ID, PlacedAt: testdb.Epoch,
		Status: models.HoldStatusPending, QueuePosition: 1, PickupLocation: models.DefaultPickupLocation,
	}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.MediaRequest{
		PatronID: patron.ID, Title: "Always Coming Home", MediaType: models.MediaTypeBook,
		Status: models.RequestStatusPending, RequestedAt: testdb.Epoch,
	}).Exec(ctx)
	require.NoError(t, err)
	_, err = svc.activity.Record(ctx, nil, activity.Entry{Action: models.ActionCheckout, PatronID: patron.ID, Description: "kept"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, patron.ID)
	require.NoError(t, err)
	assert.Equal(t, patron.ID, deleted.ID)

	count := func(model interface{}) int {
		n, err := db.NewSelect().Model(model).Where("patron_id = ?", patron.ID).Count(ctx)
		require.NoError(t, err)
		return n
	}
	assert.Zero(t, count((*models.Checkout)(nil)))
	assert.Zero(t, count((*models.Fine)(nil)))
	assert.Zero(t, count((*models.Hold)(nil)))
	assert.Zero(t, count((*models.MediaRequest)(nil)))
	assert.Zero(t, count((*models.ActivityLog)(nil)))

	logs, err := svc.activity.Recent(ctx, nil, 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "kept", logs[0].Description)

	refreshed := &models.MediaItem{}
	require.NoError(t, db.NewSelect().Model(refreshed).Where("mi.id = ?", item.ID).Scan(ctx))
	assert.Equal(t, models.MediaStatusAvailable, refreshed.Status)

	// The other patron's loan is untouched.
	require.NoError(t, db.NewSelect().Model(refreshed).Where("mi.id = ?", otherItem.ID).Scan(ctx))
	assert.Equal(t, models.MediaStatusCheckedOut, refreshed.Status)

	_, err = svc.Delete(ctx, patron.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Patron"))
}

func TestExpireLapsed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, clk := newTestService(t)

	lapsed := testdb.CreatePatron(t, db, func(p *models.Patron) {
		expires := testdb.Epoch.Add(-time.Hour)
		p.ExpiresAt = &expires
	})
	current := testdb.CreatePatron(t, db)
	suspended := testdb.CreatePatron(t, db, func(p *models.Patron) {
		expires := testdb.Epoch.Add(-time.Hour)
		p.ExpiresAt = &expires
		p.Status = models.PatronStatusSuspended
	})
	forever := testdb.CreatePatron(t, db, func(p *models.Patron) {
		p.ExpiresAt = nil
	})

	n, err := svc.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status := func(id int) string {
		p, err := svc.Retrieve(ctx, id)
		require.NoError(t, err)
		return p.Status
	}
	assert.Equal(t, models.PatronStatusExpired, status(lapsed.ID))
	assert.Equal(t, models.PatronStatusActive, status(current.ID))
	assert.Equal(t, models.PatronStatusSuspended, status(suspended.ID))
	assert.Equal(t, models.PatronStatusActive, status(forever.ID))

	n, err = svc.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clk.Set(testdb.Epoch.AddDate(2, 0, 0))
	n, err = svc.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.PatronStatusExpired, status(current.ID))
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, clk := newTestService(t)

	patron := testdb.CreatePatron(t, db)
	dvd := testdb.CreateItem(t, db, func(mi *models.MediaItem) { mi.MediaType = models.MediaTypeDVD })
	book := testdb.CreateItem(t, db)
	testdb.CreateCheckout(t, db, patron, dvd, testdb.Epoch)
	testdb.CreateCheckout(t, db, patron, book, testdb.Epoch)

	for _, status := range []string{models.HoldStatusPending, models.HoldStatusReady, models.HoldStatusCancelled} {
		_, err := db.NewInsert().Model(&models.Hold{
			PatronID: patron.ID, MediaItemID: book.ID, PlacedAt: testdb.Epoch,
			Status: status, QueuePosition: 1, PickupLocation: models.DefaultPickupLocation,
		}).Exec(ctx)
		require.NoError(t, err)
	}
	for _, f := range []struct {
		amount string
		paid   bool
	}{{"1.35", false}, {"0.90", false}, {"5.00", true}} {
		_, err := db.NewInsert().Model(&models.Fine{
			PatronID: patron.ID, Amount: decimal.RequireFromString(f.amount),
			Reason: "Overdue", CreatedAt: testdb.Epoch, Paid: f.paid,
		}).Exec(ctx)
		require.NoError(t, err)
	}

	// Five days in, the DVD is due in two days and the book in sixteen.
	clk.Set(testdb.Epoch.AddDate(0, 0, 5))

	d, err := svc.Dashboard(ctx, patron.ID)
	require.NoError(t, err)
	assert.Equal(t, patron.ID, d.Patron.ID)
	assert.Equal(t, 2, d.CheckedOut)
	assert.Equal(t, 1, d.DueSoon)
	assert.Equal(t, 2, d.ActiveHolds)
	assert.Equal(t, 1, d.ReadyForPickup)
	assert.Equal(t, "2.25", d.TotalFines)
	assert.Empty(t, d.RecentActivity)

	_, err = svc.Dashboard(ctx, 9999)
	assert.ErrorIs(t, err, errcodes.NotFound("Patron"))
}

package fines

import (
	"context"
	"testing"
	"time"

	"github.com/shishobooks/circulation/internal/testdb"
	"github.com/shishobooks/circulation/pkg/activity"
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
	return NewService(db, clk, activity.NewService(db, clk, nil)), db, clk
}

func createFine(t *testing.T, db bun.IDB, patron *models.Patron, amount string, paid bool) *models.Fine {
	t.Helper()
	f := &models.Fine{
		PatronID:  patron.ID,
		Amount:    decimal.RequireFromString(amount),
		Reason:    models.OverdueFineReason("Middlemarch"),
		CreatedAt: testdb.Epoch,
		Paid:      paid,
	}
	if paid {
		f.PaidAt = &testdb.Epoch
	}
	_, err := db.NewInsert().Model(f).Exec(context.Background())
	require.NoError(t, err)
	return f
}

func TestListForPatron(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	patron := testdb.CreatePatron(t, db)
	other := testdb.CreatePatron(t, db)

	paid := createFine(t, db, patron, "4.50", true)
	createFine(t, db, patron, "1.35", false)
	createFine(t, db, patron, "0.90", false)
	createFine(t, db, other, "9.00", false)

	fines, total, err := svc.ListForPatron(ctx, patron.ID)
	require.NoError(t, err)
	require.Len(t, fines, 3)
	assert.Equal(t, "2.25", total.StringFixed(2))
	assert.Equal(t, paid.ID, fines[2].ID)
	assert.Equal(t, "0.90", fines[0].Amount.StringFixed(2))
}

func TestOutstanding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	patron := testdb.CreatePatron(t, db)
	other := testdb.CreatePatron(t, db)
	clean := testdb.CreatePatron(t, db)

	createFine(t, db, patron, "1.35", false)
	createFine(t, db, patron, "0.45", false)
	createFine(t, db, patron, "3.00", true)
	createFine(t, db, other, "0.45", false)

	totals, err := svc.Outstanding(ctx, []int{patron.ID, other.ID, clean.ID})
	require.NoError(t, err)
	assert.Equal(t, "1.80", totals[patron.ID].StringFixed(2))
	assert.Equal(t, "0.45", totals[other.ID].StringFixed(2))
	assert.True(t, totals[clean.ID].IsZero())

	totals, err = svc.Outstanding(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestMarkPaid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, clk := newTestService(t)
	librarian := testdb.CreateLibrarian(t, db)
	patron := testdb.CreatePatron(t, db)
	fine := createFine(t, db, patron, "1.35", false)

	clk.Advance(time.Hour)
	paid, err := svc.MarkPaid(ctx, librarian.ID, fine.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, testdb.Epoch.Add(time.Hour), *paid.PaidAt)

	stored := &models.Fine{}
	require.NoError(t, db.NewSelect().Model(stored).Where("f.id = ?", fine.ID).Scan(ctx))
	assert.True(t, stored.Paid)
	require.NotNil(t, stored.PaidAt)
	assert.Equal(t, "1.35", stored.Amount.StringFixed(2))

	_, err = svc.MarkPaid(ctx, librarian.ID, fine.ID)
	assert.Equal(t, errcodes.ValidationError("Fine has already been paid."), err)

	_, err = svc.MarkPaid(ctx, librarian.ID, 777)
	assert.Equal(t, errcodes.NotFound("Fine"), err)

	logs, _, err := svc.activity.List(ctx, activity.ListOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionFinePaid, logs[0].Action)
	assert.Equal(t, "Fine of $1.35 paid by "+patron.Name, logs[0].Description)
	assert.Equal(t, librarian.ID, *logs[0].LibrarianID)
}

func TestMarkPaid_StaleRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	librarian := testdb.CreateLibrarian(t, db)
	patron := testdb.CreatePatron(t, db)
	fine := createFine(t, db, patron, "0.90", false)

	// Another librarian pays the fine after this call read it as unpaid.
	var innerErr error
	testdb.AfterFirstRead(db, "fines", func() {
		_, innerErr = svc.MarkPaid(ctx, librarian.ID, fine.ID)
	})

	_, err := svc.MarkPaid(ctx, librarian.ID, fine.ID)
	assert.Equal(t, errcodes.ValidationError("Fine has already been paid."), err)
	require.NoError(t, innerErr)

	logs, total, err := svc.activity.List(ctx, activity.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.ActionFinePaid, logs[0].Action)
}

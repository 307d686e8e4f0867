package catalog

import (
	"context"
	"testing"

	"github.com/robinjoseph08/golib/pointerutil"
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

func newTestService(t *testing.T) (*Service, *bun.DB) {
	t.Helper()
	db := testdb.New(t)
	clk := clock.NewFixed(testdb.Epoch)
	return NewService(db, clk, activity.NewService(db, clk, nil)), db
}

func titles(items []*models.MediaItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func TestGenerateBarcode(t *testing.T) {
	t.Parallel()
	for i := 0; i < 100; i++ {
		assert.Regexp(t, `^BC-\d{9}$`, GenerateBarcode())
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	item, err := svc.Create(context.Background(), CreateOptions{
		Title:     "The Lathe of Heaven",
		Author:    "Ursula K. Le Guin",
		MediaType: models.MediaTypeBook,
		ISBN:      pointerutil.String("9780060512750"),
		Pages:     pointerutil.Int(184),
	})
	require.NoError(t, err)

	assert.NotZero(t, item.ID)
	assert.Regexp(t, `^BC-\d{9}$`, item.Barcode)
	assert.Equal(t, models.MediaStatusAvailable, item.Status)
	assert.Equal(t, testdb.Epoch, item.AddedAt)

	found, err := svc.Retrieve(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "9780060512750", *found.ISBN)
	assert.Equal(t, 184, *found.Pages)
}

func TestRetrieve_NotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, err := svc.Retrieve(context.Background(), 99)
	assert.Equal(t, errcodes.NotFound("Item"), err)
}

func TestFeatured(t *testing.T) {
	t.Parallel()
	svc, db := newTestService(t)
	for i := 0; i < FeaturedLimit+3; i++ {
		testdb.CreateItem(t, db)
	}

	items, err := svc.Featured(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, FeaturedLimit)
}

func TestSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	testdb.CreateItem(t, db, func(mi *models.MediaItem) {
		mi.Title = "The Left Hand of Darkness"
		mi.Author = "Ursula K. Le Guin"
		mi.Genre = "Science Fiction"
		mi.Publisher = "Ace"
		mi.ISBN = pointerutil.String("9780441478125")
	})
	testdb.CreateItem(t, db, func(mi *models.MediaItem) {
		mi.Title = "Darkness Visible"
		mi.Author = "William Styron"
		mi.Genre = "Memoir"
		mi.MediaType = models.MediaTypeAudiobook
	})
	testdb.CreateItem(t, db, func(mi *models.MediaItem) {
		mi.Title = "Solaris"
		mi.Author = "Stanisław Lem"
		mi.MediaType = models.MediaTypeDVD
		mi.Genre = "Science Fiction"
	})

	tcs := []struct {
		name     string
		opts     SearchOptions
		expected []string
	}{
		{"any matches title", SearchOptions{Query: "darkness"}, []string{"Darkness Visible", "The Left Hand of Darkness"}},
		{"any matches author", SearchOptions{Query: "lem", SearchBy: SearchByAny}, []string{"Solaris"}},
		{"title only", SearchOptions{Query: "guin", SearchBy: SearchByTitle}, []string{}},
		{"author", SearchOptions{Query: "styron", SearchBy: SearchByAuthor}, []string{"Darkness Visible"}},
		{"isbn", SearchOptions{Query: "978044", SearchBy: SearchByISBN}, []string{"The Left Hand of Darkness"}},
		{"publisher", SearchOptions{Query: "ace", SearchBy: SearchByPublisher}, []string{"The Left Hand of Darkness"}},
		{"type filter", SearchOptions{Query: "darkness", MediaType: models.MediaTypeAudiobook}, []string{"Darkness Visible"}},
		{"genre contains", SearchOptions{Genre: "fiction"}, []string{"Solaris", "The Left Hand of Darkness"}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := svc.Search(ctx, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, titles(items))
			assert.Equal(t, len(tc.expected), total)
		})
	}
}

func TestSearch_WildcardsMatchLiterally(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	testdb.CreateItem(t, db, func(mi *models.MediaItem) { mi.Title = "Dune" })
	testdb.CreateItem(t, db, func(mi *models.MediaItem) { mi.Title = "Emma" })

	items, total, err := svc.Search(ctx, SearchOptions{Query: "_", SearchBy: SearchByTitle})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	testdb.CreateItem(t, db, func(mi *models.MediaItem) {
		mi.Title = "100% Cotton"
		mi.Genre = "Sci_Fi"
	})

	items, total, err = svc.Search(ctx, SearchOptions{Query: "0%", SearchBy: SearchByTitle})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Cotton"}, titles(items))
	assert.Equal(t, 1, total)

	items, _, err = svc.Search(ctx, SearchOptions{Genre: "i_f"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Cotton"}, titles(items))

	_, total, err = svc.List(ctx, ListOptions{Query: "%"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = svc.List(ctx, ListOptions{Query: "_"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSearch_LimitReportsTotal(t *testing.T) {
	t.Parallel()
	svc, db := newTestService(t)
	for i := 0; i < SearchLimit+6; i++ {
		testdb.CreateItem(t, db)
	}

	items, total, err := svc.Search(context.Background(), SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, items, SearchLimit)
	assert.Equal(t, SearchLimit+6, total)
}

func TestList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)

	testdb.CreateItem(t, db, func(mi *models.MediaItem) {
		mi.Title = "Kindred"
		mi.Author = "Octavia E. Butler"
		mi.ISBN = pointerutil.String("9780807083697")
	})
	testdb.CreateItem(t, db, func(mi *models.MediaItem) {
		mi.Title = "Blue Train"
		mi.Author = "John Coltrane"
		mi.MediaType = models.MediaTypeCD
	})

	items, total, err := svc.List(ctx, ListOptions{Query: "9780807"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kindred"}, titles(items))
	assert.Equal(t, 1, total)

	items, _, err = svc.List(ctx, ListOptions{MediaType: models.MediaTypeCD})
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue Train"}, titles(items))

	_, total, err = svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestAvailable(t *testing.T) {
	t.Parallel()
	svc, db := newTestService(t)
	patron := testdb.CreatePatron(t, db)
	available := testdb.CreateItem(t, db)
	testdb.CreateCheckout(t, db, patron, testdb.CreateItem(t, db), testdb.Epoch)

	items, err := svc.Available(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, available.ID, items[0].ID)
}

func TestDelete_Cascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newTestService(t)
	patron := testdb.CreatePatron(t, db)
	item := testdb.CreateItem(t, db)
	other := testdb.CreateItem(t, db)

	co := testdb.CreateCheckout(t, db, patron, item, testdb.Epoch.AddDate(0, -1, 0))
	_, err := db.NewInsert().Model(&models.Fine{
		PatronID:   patron.ID,
		CheckoutID: &co.ID,
		Amount:     decimal.RequireFromString("1.35"),
		Reason:     models.OverdueFineReason(item.Title),
		CreatedAt:  testdb.Epoch,
	}).Exec(ctx)
	require.NoError(t, err)
	// A fine with no checkout is kept.
	_, err = db.NewInsert().Model(&models.Fine{
		PatronID:  patron.ID,
		Amount:    decimal.RequireFromString("2.00"),
		Reason:    "Damaged cover",
		CreatedAt: testdb.Epoch,
	}).Exec(ctx)
	require.NoError(t, err)

	for _, itemID := range []int{item.ID, other.ID} {
		_, err = db.NewInsert().Model(&models.Hold{
			PatronID:       patron.ID,
			MediaItemID:    itemID,
			PlacedAt:       testdb.Epoch,
			Status:         models.HoldStatusPending,
			QueuePosition:  1,
			PickupLocation: models.DefaultPickupLocation,
		}).Exec(ctx)
		require.NoError(t, err)
	}

	log, err := svc.activity.Record(ctx, nil, activity.Entry{
		Action:      models.ActionCheckout,
		PatronID:    patron.ID,
		MediaItemID: item.ID,
		Description: "Checked out " + item.Title,
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, deleted.Title)

	_, err = svc.Retrieve(ctx, item.ID)
	assert.Equal(t, errcodes.NotFound("Item"), err)

	count := func(model interface{}) int {
		n, err := db.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, 0, count((*models.Checkout)(nil)))
	assert.Equal(t, 1, count((*models.Fine)(nil)))
	assert.Equal(t, 1, count((*models.Hold)(nil)))

	kept := &models.ActivityLog{}
	require.NoError(t, db.NewSelect().Model(kept).Where("al.id = ?", log.ID).Scan(ctx))
	assert.Nil(t, kept.MediaItemID)
	assert.Equal(t, patron.ID, *kept.PatronID)
	assert.Equal(t, "Checked out "+item.Title, kept.Description)
}

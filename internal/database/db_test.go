package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/gridsizer/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestProductsUpsertAndListBundles(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.UpsertProduct(&models.Product{ID: "b-10", Name: "10 kVA Bundle", Type: models.ProductBundle, Price: 9000, InverterKVA: 10, BatteryKWh: 15, InStock: true}))
	require.NoError(t, db.UpsertProduct(&models.Product{ID: "b-5", Name: "5 kVA Bundle", Type: models.ProductBundle, Price: 5000, InverterKVA: 5, BatteryKWh: 10, InStock: true}))
	require.NoError(t, db.UpsertProduct(&models.Product{ID: "inv-3", Name: "3 kVA Inverter", Type: models.ProductInverter, Price: 700, InverterKVA: 3}))

	bundles, err := db.ListBundles()
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, "b-5", bundles[0].ID)
	assert.True(t, bundles[0].InStock)

	// upsert replaces the stored copy
	require.NoError(t, db.UpsertProduct(&models.Product{ID: "b-5", Name: "5 kVA Bundle", Type: models.ProductBundle, Price: 4500, InverterKVA: 5, InStock: false}))
	bundles, err = db.ListBundles()
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, 4500.0, bundles[0].Price)
	assert.False(t, bundles[0].InStock)

	all, err := db.ListProducts("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpsertProductRequiresID(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, db.UpsertProduct(&models.Product{Name: "nameless"}))
}

func TestQuotesLifecycle(t *testing.T) {
	db := openTestDB(t)

	older := &models.Quote{
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		PropertyType: "residential",
		Objective:    "standard-backup",
		InverterKVA:  2,
		BatteryKWh:   5,
		SolarKW:      2,
		TotalPrice:   11440,
		Currency:     "USD",
		Preset:       "platform",
		Payload:      []byte(`{"ok":true}`),
	}
	require.NoError(t, db.SaveQuote(older))
	assert.NotEmpty(t, older.ID)

	newer := &models.Quote{PropertyType: "commercial", Objective: "off-grid", Currency: "NGN", Preset: "storefront", Contact: "ops@example.com"}
	require.NoError(t, db.SaveQuote(newer))
	assert.NotEqual(t, older.ID, newer.ID)
	assert.False(t, newer.CreatedAt.IsZero())

	quotes, err := db.ListQuotes(0)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, newer.ID, quotes[0].ID)
	assert.Equal(t, older.CreatedAt, quotes[1].CreatedAt)
	assert.Equal(t, `{"ok":true}`, string(quotes[1].Payload))

	limited, err := db.ListQuotes(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	got, err := db.GetQuote(older.ID)
	require.NoError(t, err)
	assert.Equal(t, 11440.0, got.TotalPrice)

	pending, err := db.ListUnpublishedQuotes()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)

	require.NoError(t, db.MarkQuotePublished(older.ID))
	pending, err = db.ListUnpublishedQuotes()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, newer.ID, pending[0].ID)
}

func TestQuoteNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetQuote("missing")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
	assert.ErrorIs(t, db.MarkQuotePublished("missing"), ErrQuoteNotFound)
}

func TestUsageInsertIgnoresDuplicates(t *testing.T) {
	db := openTestDB(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertUsage(&models.UsageData{Date: day, KWh: 20, Service: "nyseg"}))
	require.NoError(t, db.InsertUsage(&models.UsageData{Date: day, KWh: 99, Service: "nyseg"}))
	require.NoError(t, db.InsertUsage(&models.UsageData{Date: day, KWh: 5, Service: "coned"}))

	rows, err := db.ListUsage("nyseg", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 20.0, rows[0].KWh)
	assert.True(t, day.Equal(rows[0].Date))
}

func TestMonthlyUsageKWh(t *testing.T) {
	db := openTestDB(t)

	monthly, days, err := db.MonthlyUsageKWh("nyseg", 30)
	require.NoError(t, err)
	assert.Zero(t, monthly)
	assert.Zero(t, days)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// ten old days at 100 kWh followed by five recent days at 10 kWh
	for i := 0; i < 15; i++ {
		kwh := 100.0
		if i >= 10 {
			kwh = 10
		}
		require.NoError(t, db.InsertUsage(&models.UsageData{Date: start.AddDate(0, 0, i), KWh: kwh, Service: "nyseg"}))
	}

	monthly, days, err = db.MonthlyUsageKWh("nyseg", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, days)
	assert.InDelta(t, 300.0, monthly, 1e-9)

	monthly, days, err = db.MonthlyUsageKWh("nyseg", 0)
	require.NoError(t, err)
	assert.Equal(t, 15, days)
	assert.InDelta(t, 2100.0, monthly, 1e-9)
}

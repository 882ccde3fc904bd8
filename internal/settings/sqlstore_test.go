package settings

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reefnet/wholesale/internal/db"
	"github.com/reefnet/wholesale/internal/migrations"
)

func newStore(t *testing.T) *SQLStore {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(ctx, database))

	return NewSQLStore(database)
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, 0.25, d.DefaultTenderingRate)
	assert.Equal(t, 0.15, d.DefaultUnloadingFee)
	assert.Equal(t, 15.0, d.DefaultProfitMarginPct)
	assert.Equal(t, 0.05, d.DefaultStorageCostPerDay)
	assert.Equal(t, 0.02, d.DefaultShippingRatePerMile)
	assert.Equal(t, 0.25, d.DefaultMinShipping)
	assert.False(t, d.HasGroundsPrice())
}

func TestGetWithoutSavedRecordReturnsDefaults(t *testing.T) {
	got, err := newStore(t).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestSaveReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	first := Settings{
		DefaultGroundsPrice:        2.10,
		DefaultTenderingRate:       0.30,
		DefaultUnloadingFee:        0.12,
		DefaultProfitMarginPct:     18,
		DefaultStorageCostPerDay:   0.04,
		DefaultShippingRatePerMile: 0.03,
		DefaultMinShipping:         0.40,
	}
	require.NoError(t, store.Save(ctx, first))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := Settings{DefaultProfitMarginPct: 10}
	require.NoError(t, store.Save(ctx, second))

	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestSaveRejectsNegativeAndNonFinite(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	neg := Defaults()
	neg.DefaultUnloadingFee = -0.01
	assert.Error(t, store.Save(ctx, neg))

	nan := Defaults()
	nan.DefaultMinShipping = math.NaN()
	assert.Error(t, store.Save(ctx, nan))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestResetDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	custom := Defaults()
	custom.DefaultGroundsPrice = 1.75
	require.NoError(t, store.Save(ctx, custom))

	assert.Equal(t, Defaults(), store.Reset())

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

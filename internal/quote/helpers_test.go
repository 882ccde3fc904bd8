package quote

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reefnet/wholesale/internal/catalog"
	"github.com/reefnet/wholesale/internal/db"
	"github.com/reefnet/wholesale/internal/migrations"
	"github.com/reefnet/wholesale/internal/pricing"
	"github.com/reefnet/wholesale/internal/settings"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "quotes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(ctx, database))
	return database
}

func validDraft(t *testing.T) Draft {
	t.Helper()

	in := pricing.Input{
		GroundsPrice:       2.00,
		ProcessedWeight:    1000,
		ProcessingOptionID: catalog.GlazeBoxHG,
		TenderingRate:      0.25,
		UnloadingFee:       0.15,
		ProfitMarginPct:    15,
	}
	res, err := pricing.Compute(in, catalog.Default(), settings.Defaults())
	require.NoError(t, err)

	return Draft{
		Input:      in,
		Result:     res,
		Customer:   Customer{Name: "Harbor Fish Co", Email: "buyer@harborfish.example", Phone: "555-0100"},
		SalmonType: "Sockeye",
		Notes:      "Deliver to cold storage dock B",
	}
}

// fixedClock returns successive timestamps one minute apart.
func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Minute)
		n++
		return t
	}
}

package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore keeps the settings record as the singleton row of the settings table.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a Store backed by db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Get returns the persisted settings, or the built-in defaults when none were saved.
func (s *SQLStore) Get(ctx context.Context) (Settings, error) {
	var st Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT
			grounds_price,
			tendering_rate,
			unloading_fee,
			profit_margin_pct,
			storage_cost_per_day,
			shipping_rate_per_mile,
			min_shipping
		FROM settings
		WHERE id = 1
	`).Scan(
		&st.DefaultGroundsPrice,
		&st.DefaultTenderingRate,
		&st.DefaultUnloadingFee,
		&st.DefaultProfitMarginPct,
		&st.DefaultStorageCostPerDay,
		&st.DefaultShippingRatePerMile,
		&st.DefaultMinShipping,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return st, nil
}

// Save replaces the stored record with st.
func (s *SQLStore) Save(ctx context.Context, st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (
			id,
			grounds_price,
			tendering_rate,
			unloading_fee,
			profit_margin_pct,
			storage_cost_per_day,
			shipping_rate_per_mile,
			min_shipping
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			grounds_price = excluded.grounds_price,
			tendering_rate = excluded.tendering_rate,
			unloading_fee = excluded.unloading_fee,
			profit_margin_pct = excluded.profit_margin_pct,
			storage_cost_per_day = excluded.storage_cost_per_day,
			shipping_rate_per_mile = excluded.shipping_rate_per_mile,
			min_shipping = excluded.min_shipping,
			updated_at = CURRENT_TIMESTAMP
	`,
		st.DefaultGroundsPrice,
		st.DefaultTenderingRate,
		st.DefaultUnloadingFee,
		st.DefaultProfitMarginPct,
		st.DefaultStorageCostPerDay,
		st.DefaultShippingRatePerMile,
		st.DefaultMinShipping,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Reset returns the built-in defaults. Nothing is written until Save is called.
func (s *SQLStore) Reset() Settings {
	return Defaults()
}

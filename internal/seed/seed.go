package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/reefnet/wholesale/internal/catalog"
	"github.com/reefnet/wholesale/internal/settings"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
	Deletes int
}

// Run writes the default settings row and mirrors the processing catalog into
// the processing_options table that catalog.Load reads. It is safe to run on
// every start.
func Run(ctx context.Context, db *sql.DB, cat *catalog.Catalog) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureSettings(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := syncProcessingOptions(ctx, tx, cat, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSettings(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if exists {
		return nil
	}

	d := settings.Defaults()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (
			id,
			grounds_price,
			tendering_rate,
			unloading_fee,
			profit_margin_pct,
			storage_cost_per_day,
			shipping_rate_per_mile,
			min_shipping
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.DefaultGroundsPrice,
		d.DefaultTenderingRate,
		d.DefaultUnloadingFee,
		d.DefaultProfitMarginPct,
		d.DefaultStorageCostPerDay,
		d.DefaultShippingRatePerMile,
		d.DefaultMinShipping,
	); err != nil {
		return fmt.Errorf("insert settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func syncProcessingOptions(ctx context.Context, tx *sql.Tx, cat *catalog.Catalog, stats *Stats) error {
	for pos, opt := range cat.Options() {
		var (
			name      string
			cost      float64
			recovery  float64
			storedPos int
		)
		err := tx.QueryRowContext(ctx, `
			SELECT name, added_cost, recovery_rate, position
			FROM processing_options
			WHERE id = ?
		`, opt.ID).Scan(&name, &cost, &recovery, &storedPos)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO processing_options (id, name, added_cost, recovery_rate, position)
				VALUES (?, ?, ?, ?, ?)
			`, opt.ID, opt.Name, opt.AddedCost, opt.RecoveryRate, pos); err != nil {
				return fmt.Errorf("insert processing option %s: %w", opt.ID, err)
			}
			stats.Inserts++
		case err != nil:
			return fmt.Errorf("check processing option %s: %w", opt.ID, err)
		case name != opt.Name || cost != opt.AddedCost || recovery != opt.RecoveryRate || storedPos != pos:
			if _, err := tx.ExecContext(ctx, `
				UPDATE processing_options
				SET name = ?, added_cost = ?, recovery_rate = ?, position = ?
				WHERE id = ?
			`, opt.Name, opt.AddedCost, opt.RecoveryRate, pos, opt.ID); err != nil {
				return fmt.Errorf("update processing option %s: %w", opt.ID, err)
			}
			stats.Updates++
		}
	}

	options := cat.Options()
	ids := make([]any, len(options))
	for i, opt := range options {
		ids[i] = opt.ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	res, err := tx.ExecContext(ctx, `DELETE FROM processing_options WHERE id NOT IN (`+placeholders+`)`, ids...)
	if err != nil {
		return fmt.Errorf("prune processing options: %w", err)
	}
	pruned, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("prune processing options: %w", err)
	}
	stats.Deletes += int(pruned)
	return nil
}

package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// Load reads the processing_options table in position order and builds a
// catalog from it. The table is kept in sync with the price list by the
// startup seed.
func Load(ctx context.Context, db *sql.DB) (*Catalog, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, added_cost, recovery_rate
		FROM processing_options
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query processing options: %w", err)
	}
	defer rows.Close()

	options := make([]Option, 0)
	for rows.Next() {
		var opt Option
		if err := rows.Scan(&opt.ID, &opt.Name, &opt.AddedCost, &opt.RecoveryRate); err != nil {
			return nil, fmt.Errorf("scan processing option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processing options: %w", err)
	}

	cat, err := New(options...)
	if err != nil {
		return nil, fmt.Errorf("load processing catalog: %w", err)
	}
	return cat, nil
}

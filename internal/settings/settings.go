package settings

import (
	"context"
	"fmt"
	"math"
)

// Built-in defaults used until an operator saves their own.
const (
	defaultTenderingRate       = 0.25
	defaultUnloadingFee        = 0.15
	defaultProfitMarginPct     = 15
	defaultStorageCostPerDay   = 0.05
	defaultShippingRatePerMile = 0.02
	defaultMinShipping         = 0.25
)

// Settings holds the organization-wide defaults used to pre-populate pricing.
// A zero DefaultGroundsPrice means no default grounds price is configured.
type Settings struct {
	DefaultGroundsPrice        float64 `json:"default_grounds_price" mapstructure:"default_grounds_price"`
	DefaultTenderingRate       float64 `json:"default_tendering_rate" mapstructure:"default_tendering_rate"`
	DefaultUnloadingFee        float64 `json:"default_unloading_fee" mapstructure:"default_unloading_fee"`
	DefaultProfitMarginPct     float64 `json:"default_profit_margin_pct" mapstructure:"default_profit_margin_pct"`
	DefaultStorageCostPerDay   float64 `json:"default_storage_cost_per_day" mapstructure:"default_storage_cost_per_day"`
	DefaultShippingRatePerMile float64 `json:"default_shipping_rate_per_mile" mapstructure:"default_shipping_rate_per_mile"`
	DefaultMinShipping         float64 `json:"default_min_shipping" mapstructure:"default_min_shipping"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		DefaultTenderingRate:       defaultTenderingRate,
		DefaultUnloadingFee:        defaultUnloadingFee,
		DefaultProfitMarginPct:     defaultProfitMarginPct,
		DefaultStorageCostPerDay:   defaultStorageCostPerDay,
		DefaultShippingRatePerMile: defaultShippingRatePerMile,
		DefaultMinShipping:         defaultMinShipping,
	}
}

// HasGroundsPrice reports whether a default grounds price is configured.
func (s Settings) HasGroundsPrice() bool {
	return s.DefaultGroundsPrice > 0
}

// Validate checks that every field is a finite, non-negative number.
func (s Settings) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"default_grounds_price", s.DefaultGroundsPrice},
		{"default_tendering_rate", s.DefaultTenderingRate},
		{"default_unloading_fee", s.DefaultUnloadingFee},
		{"default_profit_margin_pct", s.DefaultProfitMarginPct},
		{"default_storage_cost_per_day", s.DefaultStorageCostPerDay},
		{"default_shipping_rate_per_mile", s.DefaultShippingRatePerMile},
		{"default_min_shipping", s.DefaultMinShipping},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be a number", f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%s must be greater than or equal to 0", f.name)
		}
	}
	return nil
}

// Store persists the single settings record.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
	Reset() Settings
}

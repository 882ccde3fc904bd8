package main

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/reefnet/wholesale/internal/pricing"
	"github.com/reefnet/wholesale/internal/quote"
	"github.com/reefnet/wholesale/internal/settings"
)

func parsePricingForm(r *http.Request) pricing.Form {
	return pricing.Form{
		GroundsPrice:          r.FormValue("grounds_price"),
		ProcessedWeight:       r.FormValue("processed_weight"),
		RoundWeight:           r.FormValue("round_weight"),
		ProcessingOptionID:    r.FormValue("processing_option_id"),
		StorageDays:           r.FormValue("storage_days"),
		ShippingDistanceMiles: r.FormValue("shipping_distance_miles"),
		UnloadingFee:          r.FormValue("unloading_fee"),
		TenderingRate:         r.FormValue("tendering_rate"),
		ProfitMarginPct:       r.FormValue("profit_margin_pct"),
	}
}

func parseQuoteDraft(r *http.Request, in pricing.Input) quote.Draft {
	return quote.Draft{
		Input: in,
		Customer: quote.Customer{
			Name:    r.FormValue("customer_name"),
			Email:   r.FormValue("customer_email"),
			Phone:   r.FormValue("customer_phone"),
			Company: r.FormValue("customer_company"),
		},
		SalmonType: strings.TrimSpace(r.FormValue("salmon_type")),
		Notes:      strings.TrimSpace(r.FormValue("notes")),
	}
}

// parseSettingsForm reads a full settings record. An empty grounds price
// leaves it unset; every other field is required.
func parseSettingsForm(r *http.Request) (settings.Settings, error) {
	var st settings.Settings

	var err error
	if raw := strings.TrimSpace(r.FormValue("default_grounds_price")); raw != "" {
		if st.DefaultGroundsPrice, err = parseNonNegativeFloat(raw, "default_grounds_price"); err != nil {
			return st, err
		}
	}
	if st.DefaultTenderingRate, err = parseNonNegativeFloat(r.FormValue("default_tendering_rate"), "default_tendering_rate"); err != nil {
		return st, err
	}
	if st.DefaultUnloadingFee, err = parseNonNegativeFloat(r.FormValue("default_unloading_fee"), "default_unloading_fee"); err != nil {
		return st, err
	}
	if st.DefaultProfitMarginPct, err = parsePercent(r.FormValue("default_profit_margin_pct"), "default_profit_margin_pct"); err != nil {
		return st, err
	}
	if st.DefaultStorageCostPerDay, err = parseNonNegativeFloat(r.FormValue("default_storage_cost_per_day"), "default_storage_cost_per_day"); err != nil {
		return st, err
	}
	if st.DefaultShippingRatePerMile, err = parseNonNegativeFloat(r.FormValue("default_shipping_rate_per_mile"), "default_shipping_rate_per_mile"); err != nil {
		return st, err
	}
	if st.DefaultMinShipping, err = parseNonNegativeFloat(r.FormValue("default_min_shipping"), "default_min_shipping"); err != nil {
		return st, err
	}

	return st, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func parsePercent(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 100 {
		return 0, fmt.Errorf("%s must be between 0 and 100", field)
	}
	return value, nil
}

package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/reefnet/wholesale/internal/settings"
)

// Form carries the raw, user-entered calculation fields.
type Form struct {
	GroundsPrice          string `json:"grounds_price"`
	ProcessedWeight       string `json:"processed_weight"`
	RoundWeight           string `json:"round_weight"`
	ProcessingOptionID    string `json:"processing_option_id"`
	StorageDays           string `json:"storage_days"`
	ShippingDistanceMiles string `json:"shipping_distance_miles"`
	UnloadingFee          string `json:"unloading_fee"`
	TenderingRate         string `json:"tendering_rate"`
	ProfitMarginPct       string `json:"profit_margin_pct"`
}

// Input converts the form into an engine input. Blank fee, rate, margin and
// grounds price fields take their value from s; anything malformed, negative
// or non-finite becomes 0. Storage days are truncated to whole days.
func (f Form) Input(s settings.Settings) Input {
	return Input{
		GroundsPrice:          numberOr(f.GroundsPrice, s.DefaultGroundsPrice),
		ProcessedWeight:       numberOr(f.ProcessedWeight, 0),
		RoundWeight:           numberOr(f.RoundWeight, 0),
		ProcessingOptionID:    strings.TrimSpace(f.ProcessingOptionID),
		StorageDays:           int(math.Trunc(math.Min(numberOr(f.StorageDays, 0), math.MaxInt32))),
		ShippingDistanceMiles: numberOr(f.ShippingDistanceMiles, 0),
		UnloadingFee:          numberOr(f.UnloadingFee, s.DefaultUnloadingFee),
		TenderingRate:         numberOr(f.TenderingRate, s.DefaultTenderingRate),
		ProfitMarginPct:       numberOr(f.ProfitMarginPct, s.DefaultProfitMarginPct),
	}
}

func numberOr(raw string, fallback float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nonNegative(fallback)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return nonNegative(v)
}

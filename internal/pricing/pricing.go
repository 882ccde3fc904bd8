package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/reefnet/wholesale/internal/catalog"
	"github.com/reefnet/wholesale/internal/settings"
)

// ErrInvalidInput reports a calculation request missing a required value.
var ErrInvalidInput = errors.New("invalid pricing input")

// Input is one fully-defaulted calculation request. Money values are $/lb and
// weights are pounds.
type Input struct {
	GroundsPrice          float64 `json:"grounds_price"`
	ProcessedWeight       float64 `json:"processed_weight"`
	RoundWeight           float64 `json:"round_weight"`
	ProcessingOptionID    string  `json:"processing_option_id"`
	StorageDays           int     `json:"storage_days"`
	ShippingDistanceMiles float64 `json:"shipping_distance_miles"`
	UnloadingFee          float64 `json:"unloading_fee"`
	TenderingRate         float64 `json:"tendering_rate"`
	ProfitMarginPct       float64 `json:"profit_margin_pct"`
}

// Result is the itemized cost breakdown of a calculation. All amounts are $/lb
// except RoundWeightEquivalent (lb) and ExtendedValue ($).
type Result struct {
	ProcessingOptionID string `json:"processing_option_id"`
	// ProcessingFallback is set when the requested option was unknown and the
	// catalog's first entry was applied instead.
	ProcessingFallback bool `json:"processing_fallback"`

	TenderingCost          float64 `json:"tendering_cost"`
	UnloadingCost          float64 `json:"unloading_cost"`
	ShippingCost           float64 `json:"shipping_cost"`
	ProcessingCost         float64 `json:"processing_cost"`
	StorageCost            float64 `json:"storage_cost"`
	RecoveryRate           float64 `json:"recovery_rate"`
	PreRecoveryBase        float64 `json:"pre_recovery_base"`
	BaseCostAfterRecovery  float64 `json:"base_cost_after_recovery"`
	TotalCostAfterRecovery float64 `json:"total_cost_after_recovery"`
	ProfitAmount           float64 `json:"profit_amount"`
	FinalPricePerLb        float64 `json:"final_price_per_lb"`
	RoundWeightEquivalent  float64 `json:"round_weight_equivalent"`
	ExtendedValue          float64 `json:"extended_value"`
}

// Compute derives the wholesale price for in using the processing catalog and
// the shipping and storage rates from s.
//
// Raw costs (grounds, tendering, shipping, unloading) are grossed up by the
// option's recovery rate; processing and storage are charged on the finished
// product afterwards.
func Compute(in Input, cat *catalog.Catalog, s settings.Settings) (Result, error) {
	groundsPrice := in.GroundsPrice
	if !positive(groundsPrice) {
		return Result{}, fmt.Errorf("%w: grounds price is required", ErrInvalidInput)
	}
	processedWeight := nonNegative(in.ProcessedWeight)
	if !positive(processedWeight) && !positive(nonNegative(in.RoundWeight)) {
		return Result{}, fmt.Errorf("%w: processed or round weight is required", ErrInvalidInput)
	}

	option, fellBack := cat.LookupOrFirst(in.ProcessingOptionID)
	recovery := option.RecoveryRate
	if !positive(recovery) {
		return Result{}, fmt.Errorf("%w: processing option %q has recovery rate %v", ErrInvalidInput, option.ID, recovery)
	}

	tenderingCost := nonNegative(in.TenderingRate)
	unloadingCost := nonNegative(in.UnloadingFee)
	shippingCost := math.Max(
		nonNegative(s.DefaultMinShipping),
		nonNegative(in.ShippingDistanceMiles)*nonNegative(s.DefaultShippingRatePerMile),
	)

	preRecoveryBase := groundsPrice + tenderingCost + shippingCost + unloadingCost
	baseCostAfterRecovery := preRecoveryBase / recovery

	storageDays := in.StorageDays
	if storageDays < 0 {
		storageDays = 0
	}
	storageCost := float64(storageDays) * nonNegative(s.DefaultStorageCostPerDay)
	processingCost := option.AddedCost

	totalCostAfterRecovery := baseCostAfterRecovery + storageCost + processingCost
	profitAmount := totalCostAfterRecovery * (nonNegative(in.ProfitMarginPct) / 100.0)
	finalPrice := totalCostAfterRecovery + profitAmount

	return Result{
		ProcessingOptionID:     option.ID,
		ProcessingFallback:     fellBack,
		TenderingCost:          tenderingCost,
		UnloadingCost:          unloadingCost,
		ShippingCost:           shippingCost,
		ProcessingCost:         processingCost,
		StorageCost:            storageCost,
		RecoveryRate:           recovery,
		PreRecoveryBase:        preRecoveryBase,
		BaseCostAfterRecovery:  baseCostAfterRecovery,
		TotalCostAfterRecovery: totalCostAfterRecovery,
		ProfitAmount:           profitAmount,
		FinalPricePerLb:        finalPrice,
		RoundWeightEquivalent:  processedWeight / recovery,
		ExtendedValue:          processedWeight * finalPrice,
	}, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// nonNegative maps NaN, infinities and negative values to 0.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

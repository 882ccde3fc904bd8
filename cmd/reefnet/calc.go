package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/reefnet/wholesale/internal/pricing"
	"github.com/reefnet/wholesale/internal/quote"
)

func newCalcCmd(a *app) *cobra.Command {
	var (
		form       pricing.Form
		customer   quote.Customer
		salmonType string
		notes      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate a wholesale price",
		Long: `Calc prices one lot. Fee, rate, margin and grounds price flags left
empty take the saved settings. With --customer the result is also saved as
a quote.

Example:
  reefnet calc --grounds-price 2.00 --processed-weight 1000 --option GlazeBoxHG
  reefnet calc --grounds-price 2.00 --round-weight 1500 --miles 120 --customer "Harbor Fish Co"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			st, err := a.settings.Get(ctx)
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			in := form.Input(st)
			result, err := pricing.Compute(in, a.catalog, st)
			if err != nil {
				return err
			}

			if customer.Name == "" {
				if jsonOutput {
					return writeJSON(out, struct {
						Input  pricing.Input  `json:"input"`
						Result pricing.Result `json:"result"`
					}{in, result})
				}
				return printBreakdown(out, a, in, result)
			}

			q, err := a.quotes.Create(ctx, quote.Draft{
				Input:      in,
				Result:     result,
				Customer:   customer,
				SalmonType: salmonType,
				Notes:      notes,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(out, q)
			}
			if err := printBreakdown(out, a, in, result); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSaved quote %s\n", q.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.GroundsPrice, "grounds-price", "", "grounds price paid to fishermen ($/lb)")
	f.StringVar(&form.ProcessedWeight, "processed-weight", "", "processed weight (lbs)")
	f.StringVar(&form.RoundWeight, "round-weight", "", "round (whole fish) weight (lbs)")
	f.StringVar(&form.ProcessingOptionID, "option", "", "processing option id (see reefnet options)")
	f.StringVar(&form.StorageDays, "storage-days", "", "days in cold storage")
	f.StringVar(&form.ShippingDistanceMiles, "miles", "", "shipping distance (miles)")
	f.StringVar(&form.UnloadingFee, "unloading-fee", "", "unloading fee ($/lb)")
	f.StringVar(&form.TenderingRate, "tendering-rate", "", "tendering rate ($/lb)")
	f.StringVar(&form.ProfitMarginPct, "margin", "", "profit margin (%)")

	f.StringVar(&customer.Name, "customer", "", "save the result as a quote for this customer")
	f.StringVar(&customer.Email, "email", "", "customer email")
	f.StringVar(&customer.Phone, "phone", "", "customer phone")
	f.StringVar(&customer.Company, "company", "", "customer company")
	f.StringVar(&salmonType, "salmon-type", "", "salmon type (Pink, Coho, Keta, Sockeye)")
	f.StringVar(&notes, "notes", "", "quote notes")
	f.BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func printBreakdown(out io.Writer, a *app, in pricing.Input, r pricing.Result) error {
	option, err := a.catalog.Lookup(r.ProcessingOptionID)
	if err != nil {
		return err
	}
	if r.ProcessingFallback {
		fmt.Fprintf(out, "warning: unknown processing option %q, using %s\n\n", in.ProcessingOptionID, option.ID)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Processing\t%s (%s)\n", option.Name, option.ID)
	fmt.Fprintf(w, "Grounds price\t%s/lb\n", money(in.GroundsPrice))
	fmt.Fprintf(w, "Tendering\t%s/lb\n", money(r.TenderingCost))
	fmt.Fprintf(w, "Shipping\t%s/lb\n", money(r.ShippingCost))
	fmt.Fprintf(w, "Unloading\t%s/lb\n", money(r.UnloadingCost))
	fmt.Fprintf(w, "Pre-recovery base\t%s/lb\n", money(r.PreRecoveryBase))
	fmt.Fprintf(w, "Recovery rate\t%.0f%%\n", r.RecoveryRate*100)
	fmt.Fprintf(w, "Base after recovery\t%s/lb\n", money(r.BaseCostAfterRecovery))
	fmt.Fprintf(w, "Storage\t%s/lb (%d days)\n", money(r.StorageCost), in.StorageDays)
	fmt.Fprintf(w, "Processing cost\t%s/lb\n", money(r.ProcessingCost))
	fmt.Fprintf(w, "Total cost\t%s/lb\n", money(r.TotalCostAfterRecovery))
	fmt.Fprintf(w, "Profit (%s%%)\t%s/lb\n", humanize.Ftoa(in.ProfitMarginPct), money(r.ProfitAmount))
	fmt.Fprintf(w, "Final price\t%s/lb\n", money(r.FinalPricePerLb))
	fmt.Fprintf(w, "Processed weight\t%s lbs\n", weight(in.ProcessedWeight))
	fmt.Fprintf(w, "Round weight equivalent\t%s lbs\n", weight(r.RoundWeightEquivalent))
	fmt.Fprintf(w, "Extended value\t%s\n", money(r.ExtendedValue))
	return w.Flush()
}

func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func weight(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

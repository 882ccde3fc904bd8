package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reefnet/wholesale/internal/settings"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the pricing defaults",
	}
	cmd.AddCommand(withDatabase(newSettingsShowCmd(a)))
	cmd.AddCommand(withDatabase(newSettingsSetCmd(a)))
	cmd.AddCommand(withDatabase(newSettingsResetCmd(a)))
	return cmd
}

func newSettingsShowCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			return printSettings(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

// settingFlags maps flag names to the field each one replaces.
func settingFlags(st *settings.Settings) map[string]*float64 {
	return map[string]*float64{
		"grounds-price":          &st.DefaultGroundsPrice,
		"tendering-rate":         &st.DefaultTenderingRate,
		"unloading-fee":          &st.DefaultUnloadingFee,
		"margin":                 &st.DefaultProfitMarginPct,
		"storage-cost-per-day":   &st.DefaultStorageCostPerDay,
		"shipping-rate-per-mile": &st.DefaultShippingRatePerMile,
		"min-shipping":           &st.DefaultMinShipping,
	}
}

func newSettingsSetCmd(a *app) *cobra.Command {
	var flagValues settings.Settings

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more defaults",
		Long: `Set updates the named defaults and saves the whole record. Fields
without a flag keep their saved value.

Example:
  reefnet settings set --grounds-price 2.10 --margin 18`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.settings.Get(ctx)
			if err != nil {
				return err
			}

			target := settingFlags(&st)
			source := settingFlags(&flagValues)
			changed := 0
			for name, dst := range target {
				if cmd.Flags().Changed(name) {
					*dst = *source[name]
					changed++
				}
			}
			if changed == 0 {
				return fmt.Errorf("no settings given; see reefnet settings set --help")
			}

			if err := a.settings.Save(ctx, st); err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), st)
		},
	}

	d := settings.Defaults()
	f := cmd.Flags()
	f.Float64Var(&flagValues.DefaultGroundsPrice, "grounds-price", 0, "default grounds price ($/lb, 0 = unset)")
	f.Float64Var(&flagValues.DefaultTenderingRate, "tendering-rate", d.DefaultTenderingRate, "default tendering rate ($/lb)")
	f.Float64Var(&flagValues.DefaultUnloadingFee, "unloading-fee", d.DefaultUnloadingFee, "default unloading fee ($/lb)")
	f.Float64Var(&flagValues.DefaultProfitMarginPct, "margin", d.DefaultProfitMarginPct, "default profit margin (%)")
	f.Float64Var(&flagValues.DefaultStorageCostPerDay, "storage-cost-per-day", d.DefaultStorageCostPerDay, "storage cost per day ($/lb)")
	f.Float64Var(&flagValues.DefaultShippingRatePerMile, "shipping-rate-per-mile", d.DefaultShippingRatePerMile, "shipping rate per mile ($/lb)")
	f.Float64Var(&flagValues.DefaultMinShipping, "min-shipping", d.DefaultMinShipping, "minimum shipping charge ($/lb)")
	return cmd
}

func newSettingsResetCmd(a *app) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Print the built-in defaults",
		Long: `Reset prints the built-in defaults. The saved settings are left alone
unless --save is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.settings.Reset()
			if save {
				if err := a.settings.Save(cmd.Context(), st); err != nil {
					return err
				}
			}
			return printSettings(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "persist the defaults")
	return cmd
}

func printSettings(out io.Writer, st settings.Settings) error {
	grounds := "unset"
	if st.HasGroundsPrice() {
		grounds = money(st.DefaultGroundsPrice) + "/lb"
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Grounds price\t%s\n", grounds)
	fmt.Fprintf(w, "Tendering rate\t%s/lb\n", money(st.DefaultTenderingRate))
	fmt.Fprintf(w, "Unloading fee\t%s/lb\n", money(st.DefaultUnloadingFee))
	fmt.Fprintf(w, "Profit margin\t%v%%\n", st.DefaultProfitMarginPct)
	fmt.Fprintf(w, "Storage cost per day\t%s/lb\n", money(st.DefaultStorageCostPerDay))
	fmt.Fprintf(w, "Shipping rate per mile\t%s/lb\n", money(st.DefaultShippingRatePerMile))
	fmt.Fprintf(w, "Minimum shipping\t%s/lb\n", money(st.DefaultMinShipping))
	return w.Flush()
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newOptionsCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List processing options",
		Long: `Options prints the processing price list in catalog order. The first
entry is applied when a calculation names an unknown option.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			options := a.catalog.Options()

			if jsonOutput {
				return writeJSON(out, options)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADDED COST\tRECOVERY")
			for _, opt := range options {
				fmt.Fprintf(w, "%s\t%s\t$%.2f/lb\t%.0f%%\n", opt.ID, opt.Name, opt.AddedCost, opt.RecoveryRate*100)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

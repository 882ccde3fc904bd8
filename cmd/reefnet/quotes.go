package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/reefnet/wholesale/internal/quote"
)

func newQuotesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Manage saved quotes",
	}
	cmd.AddCommand(withDatabase(newQuotesListCmd(a)))
	cmd.AddCommand(withDatabase(newQuotesPrintCmd(a)))
	cmd.AddCommand(withDatabase(newQuotesDeleteCmd(a)))
	cmd.AddCommand(withDatabase(newQuotesExportCmd(a)))
	return cmd
}

func newQuotesListCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved quotes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			quotes, err := a.quotes.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, quotes)
			}
			if len(quotes) == 0 {
				fmt.Fprintln(out, "No quotes found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tCUSTOMER\tTYPE\tWEIGHT\tPRICE/LB")
			for _, q := range quotes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s lbs\t%s\n",
					q.ID,
					humanize.Time(q.CreatedAt),
					q.Customer.Name,
					q.SalmonType,
					weight(q.Input.ProcessedWeight),
					money(q.Result.FinalPricePerLb),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Total: %s quote(s)\n", humanize.Comma(int64(len(quotes))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func newQuotesPrintCmd(a *app) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "print <id>",
		Short: "Print a quote document",
		Long: `Print renders the printable quote document. With --save it is written
to reefnet-quote-<customer>-<date>.txt in the current directory instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.quotes.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			doc := quote.RenderPrintable(q)
			if !save {
				_, err := fmt.Fprint(cmd.OutOrStdout(), doc.Text())
				return err
			}
			if err := os.WriteFile(doc.Filename, []byte(doc.Text()), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", doc.Filename, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", doc.Filename)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the document to a file")
	return cmd
}

func newQuotesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a quote",
		Long:  `Delete removes a quote by id. Deleting a missing id is not an error.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.quotes.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted quote %s\n", args[0])
			return nil
		},
	}
}

func newQuotesExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export all quotes to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quotes, err := a.quotes.List(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			if err := quote.ExportXLSX(f, quotes); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s quote(s) to %s\n", humanize.Comma(int64(len(quotes))), args[0])
			return nil
		},
	}
}

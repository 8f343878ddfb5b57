package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
)

func newSummaryCommand(o *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the Day 1 to Day 2 change per group",
		Long: `Print the Day 1 to Day 2 change of every selected measure for every
selected group. Changes from a zero Day 1 mean and pairs missing a day are
shown as N/A.

Examples:
  dashboard summary
  dashboard summary --group Control --measure Accuracy
  dashboard summary --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := o.selection(cmd)
			if err != nil {
				return err
			}
			core, ds, err := o.dataset(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := core.Dashboard.Summary(cmd.Context(), ds, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return printSummary(out, resp)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printSummary(out io.Writer, resp *api.SummaryResponse) error {
	if len(resp.Groups) == 0 {
		_, err := fmt.Fprintln(out, "No groups selected.")
		return err
	}

	for i, g := range resp.Groups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, g.Title)

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  MEASURE\tDAY 1\tDAY 2\tCHANGE")
		for _, m := range g.Metrics {
			day1 := dataprocessing.NotAvailable
			if m.Day1Mean != nil {
				day1 = dataprocessing.FormatMean(*m.Day1Mean)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", m.Measure, day1, m.Value, m.Delta)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if resp.Missing > 0 {
		fmt.Fprintf(out, "\n%d pair(s) lack a Day 1 or Day 2 value.\n", resp.Missing)
	}
	return nil
}

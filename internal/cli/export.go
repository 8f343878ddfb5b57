package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgtann/gdp-dashboard/internal/exporter"
	"github.com/jgtann/gdp-dashboard/internal/middleware"
	"github.com/jgtann/gdp-dashboard/internal/validation"
	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
)

func newExportCommand(o *options) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the change summary to CSV, JSON or XLSX",
		Long: `Export one row per selected (group, measure) pair with the Day 1 and
Day 2 means, the percent change and its display form.

Examples:
  dashboard export --format csv --output summary.csv
  dashboard export --format xlsx --group Control`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := middleware.NewValidator().ValidateStruct(api.ExportRequest{Format: format}); err != nil {
				return fmt.Errorf("unsupported export format %q: must be one of csv, json, xlsx", format)
			}
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			if output == "" {
				output = exporter.FileName("accuracy-summary", f)
			}
			if err := validation.NewFileValidator(o.logger).ValidateOutputFile(output); err != nil {
				return err
			}

			req, err := o.selection(cmd)
			if err != nil {
				return err
			}
			core, ds, err := o.dataset(cmd.Context())
			if err != nil {
				return err
			}
			summaries, _, err := core.Dashboard.Summaries(cmd.Context(), ds, req)
			if err != nil {
				return err
			}
			if err := exporter.WriteFile(output, f, summaries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d group(s) to %s\n", len(summaries), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, json, xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: accuracy-summary.<format>)")
	return cmd
}

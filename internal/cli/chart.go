package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jgtann/gdp-dashboard/internal/charts"
	apperrors "github.com/jgtann/gdp-dashboard/internal/errors"
	"github.com/jgtann/gdp-dashboard/internal/validation"
)

func newChartCommand(o *options) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the measure charts to an HTML or PNG file",
		Long: `Render one line chart per selected measure, with one line per selected
group across the day labels. PNG rendering needs a local Chrome or Chromium.

Examples:
  dashboard chart --output charts.html
  dashboard chart --format png --measure Accuracy --output accuracy.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "html" && format != "png" {
				return fmt.Errorf("unsupported chart format %q: must be html or png", format)
			}
			if output == "" {
				output = "charts." + format
			}
			if err := validation.NewFileValidator(o.logger).ValidateOutputFile(output); err != nil {
				return err
			}

			if format == "png" && o.shooter == nil {
				if err := charts.EnsureHeadlessAvailable(cmd.Context()); err != nil {
					return fmt.Errorf("png output needs Chrome or Chromium: %w", err)
				}
			}

			req, err := o.selection(cmd)
			if err != nil {
				return err
			}
			core, ds, err := o.dataset(cmd.Context())
			if err != nil {
				return err
			}

			var data []byte
			if format == "png" {
				data, err = core.Dashboard.ChartPNG(cmd.Context(), ds, req)
			} else {
				data, err = core.Dashboard.ChartHTML(cmd.Context(), ds, req)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return apperrors.NewStorageError("write chart", err).WithContext("path", output)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format: html, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: charts.<format>)")
	return cmd
}

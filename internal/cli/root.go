package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jgtann/gdp-dashboard/internal/app"
	"github.com/jgtann/gdp-dashboard/internal/charts"
	"github.com/jgtann/gdp-dashboard/internal/config"
	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	"github.com/jgtann/gdp-dashboard/internal/infrastructure"
	"github.com/jgtann/gdp-dashboard/internal/middleware"
	"github.com/jgtann/gdp-dashboard/internal/validation"
	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
)

// options holds the persistent flags and the state they produce
type options struct {
	configPath string
	source     string
	duplicates string
	logLevel   string
	measures   []string
	groups     []string

	cfg    *config.Config
	logger *slog.Logger

	// shooter replaces headless Chrome for PNG charts when set
	shooter charts.Screenshotter
}

// NewRootCommand builds the dashboard command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "dashboard",
		Short: "Compare Day 1 and Day 2 measures across experimental groups",
		Long: `dashboard reads a table of Measure, Group, Day and Mean rows and reports
how each measure changed from Day 1 to Day 2 for each group.

Sources are CSV files, XLSX workbooks (path or path#Sheet) or Google Sheets
ranges (sheets:<spreadsheetID>/<range>).

Examples:
  dashboard serve --source data/combined.csv
  dashboard summary --measure Accuracy --group Control --group Placebo
  dashboard chart --format png --output accuracy.png
  dashboard export --format xlsx --output summary.xlsx`,
		SilenceUsage:      true,
		PersistentPreRunE: o.load,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Config file (default: config.yaml or $DASHBOARD_CONFIG)")
	pf.StringVarP(&o.source, "source", "s", "", "Observation table to read")
	pf.StringArrayVarP(&o.measures, "measure", "m", nil, "Measure to include; repeat for more (default: all)")
	pf.StringArrayVarP(&o.groups, "group", "g", nil, "Group to include; repeat for more (default: all)")
	pf.StringVar(&o.duplicates, "duplicates", "", "Duplicate row policy: reject, first, last")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newServeCommand(o),
		newSummaryCommand(o),
		newChartCommand(o),
		newExportCommand(o),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the configuration and applies flag overrides
func (o *options) load(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.source != "" {
		cfg.Data.Source = o.source
	}
	if o.duplicates != "" {
		cfg.Data.DuplicatePolicy = o.duplicates
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = infrastructure.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
	// one trace ID per command run
	cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
	return nil
}

// selection returns the selection from --measure and --group. A flag that
// was not given selects everything; a flag given only empty values selects
// nothing.
func (o *options) selection(cmd *cobra.Command) (api.SelectionRequest, error) {
	var req api.SelectionRequest
	if cmd.Flags().Changed("measure") {
		req.Measures = nonEmpty(o.measures)
	}
	if cmd.Flags().Changed("group") {
		req.Groups = nonEmpty(o.groups)
	}
	if err := middleware.NewValidator().ValidateStruct(req); err != nil {
		return api.SelectionRequest{}, err
	}
	return req, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// dataset validates the configured source and loads it. Without a
// configured source the newest file of the data directory is used.
func (o *options) dataset(ctx context.Context) (*app.Core, *dataprocessing.Dataset, error) {
	src := o.cfg.Data.Source
	if src != "" && !strings.HasPrefix(src, dataprocessing.SheetsPrefix) {
		if err := validation.NewFileValidator(o.logger).ValidateSourceFile(src); err != nil {
			return nil, nil, err
		}
	}

	core := app.NewCore(o.cfg, o.logger, nil, o.shooter)
	ds, err := core.Dashboard.Dataset(ctx, "")
	if err != nil {
		return nil, nil, err
	}
	return core, ds, nil
}

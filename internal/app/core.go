package app

import (
	"context"
	"log/slog"

	"github.com/jgtann/gdp-dashboard/internal/charts"
	"github.com/jgtann/gdp-dashboard/internal/config"
	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	"github.com/jgtann/gdp-dashboard/internal/infrastructure"
	"github.com/jgtann/gdp-dashboard/internal/services"
)

// Core holds the dataset pipeline shared by the server and the CLI
type Core struct {
	Store      *dataprocessing.RecordStore
	Summarizer *dataprocessing.ChangeSummarizer
	Renderer   *charts.Renderer
	Dashboard  *services.DashboardService
}

// NewCore wires the record store, summarizer, chart renderer and dashboard
// service from cfg. metrics may be nil; a nil shooter uses headless Chrome.
func NewCore(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.DashboardMetrics, shooter charts.Screenshotter) *Core {
	if logger == nil {
		logger = slog.Default()
	}

	reader := dataprocessing.NewSourceReader(logger, cfg.Data.SheetsConfig())
	storeCfg := dataprocessing.StoreConfig{DuplicatePolicy: cfg.Data.Policy()}
	summarizer := dataprocessing.NewChangeSummarizer(logger)
	if metrics != nil {
		storeCfg.Observer = metrics
		summarizer.WithObserver(metrics)
	}
	store := dataprocessing.NewRecordStore(reader, logger, storeCfg)

	if shooter == nil {
		shooter = charts.ChromeScreenshotter{Timeout: cfg.Chart.RenderTimeout}
	}
	renderer := charts.NewRenderer(charts.Options{
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
		Theme:  cfg.Chart.Theme,
	}, shooter, logger)

	dashboard := services.NewDashboardService(store, summarizer, renderer, services.DashboardConfig{
		DefaultSource: cfg.Data.Source,
		DataDir:       cfg.Data.DataDir,
	}, logger)
	if metrics != nil {
		dashboard.WithObserver(metrics)
	}

	return &Core{
		Store:      store,
		Summarizer: summarizer,
		Renderer:   renderer,
		Dashboard:  dashboard,
	}
}

// ReadinessProbe reports ready once the default source has loaded. A failed
// load is not cached, so the probe retries it on the next call.
func (c *Core) ReadinessProbe() services.ReadinessProbe {
	return func(ctx context.Context) error {
		_, err := c.Dashboard.Dataset(ctx, "")
		return err
	}
}

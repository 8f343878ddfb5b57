package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	"github.com/jgtann/gdp-dashboard/internal/exporter"
	"github.com/jgtann/gdp-dashboard/internal/files"
	"github.com/jgtann/gdp-dashboard/internal/infrastructure"
	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// DatasetLoader loads a dataset by raw source string
type DatasetLoader interface {
	LoadPath(ctx context.Context, raw string) (*dataprocessing.Dataset, error)
}

// ChartRenderer renders series as an HTML page or a PNG
type ChartRenderer interface {
	HTML(series []domain.Series) ([]byte, error)
	PNG(ctx context.Context, series []domain.Series) ([]byte, error)
}

// Observer receives chart and export events
type Observer interface {
	ObserveChart(ctx context.Context, format string, err error)
	ObserveExport(ctx context.Context, format string)
}

// DashboardConfig names the default source and the directory scanned for
// selectable sources
type DashboardConfig struct {
	DefaultSource string
	DataDir       string
}

// ExportResult is an encoded change summary ready to be sent or saved
type ExportResult struct {
	Data        []byte
	ContentType string
	FileName    string
	Format      exporter.Format
}

// DashboardService answers the dashboard's queries for one or more sources
type DashboardService struct {
	loader     DatasetLoader
	summarizer *dataprocessing.ChangeSummarizer
	renderer   ChartRenderer
	discovery  *files.Discovery
	cfg        DashboardConfig
	observer   Observer
	logger     *slog.Logger
}

// NewDashboardService creates a DashboardService
func NewDashboardService(loader DatasetLoader, summarizer *dataprocessing.ChangeSummarizer, renderer ChartRenderer, cfg DashboardConfig, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if summarizer == nil {
		summarizer = dataprocessing.NewChangeSummarizer(logger)
	}
	return &DashboardService{
		loader:     loader,
		summarizer: summarizer,
		renderer:   renderer,
		discovery:  files.NewDiscovery(""),
		cfg:        cfg,
		logger:     infrastructure.WithComponent(logger, "dashboard_service"),
	}
}

// WithObserver attaches an observer for chart and export events
func (s *DashboardService) WithObserver(o Observer) *DashboardService {
	s.observer = o
	return s
}

// Dataset loads the named source. An empty name is the configured default
// source, or else the most recently modified file of the data directory.
// Any other name must be a file listed by Sources.
func (s *DashboardService) Dataset(ctx context.Context, name string) (*dataprocessing.Dataset, error) {
	raw, err := s.resolveSource(name)
	if err != nil {
		return nil, err
	}
	ds, err := s.loader.LoadPath(ctx, raw)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "dataset load failed",
			slog.String("source", raw))
		return nil, err
	}
	return ds, nil
}

func (s *DashboardService) resolveSource(name string) (string, error) {
	if name == "" {
		if s.cfg.DefaultSource != "" {
			return s.cfg.DefaultSource, nil
		}
		return s.latestSource()
	}
	if s.cfg.DataDir == "" {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	found, err := s.discovery.FindSources(s.cfg.DataDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	for _, f := range found {
		if f.Name == name {
			return f.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSourceNotFound, name)
}

func (s *DashboardService) latestSource() (string, error) {
	if s.cfg.DataDir == "" {
		return "", ErrNoDefaultSource
	}
	found, err := s.discovery.FindSources(s.cfg.DataDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDefaultSource, err)
	}
	latest, ok := files.GetLatestFile(found)
	if !ok {
		return "", fmt.Errorf("%w: no sources in %s", ErrNoDefaultSource, s.cfg.DataDir)
	}
	s.logger.Debug("using latest source", slog.String("path", latest.Path))
	return latest.Path, nil
}

// ResolveSelection applies the selection defaults: a nil dimension selects
// every distinct value in first-seen order. Repeated values are dropped and
// unknown values are an *dataprocessing.UnknownSelectionError.
func ResolveSelection(ds *dataprocessing.Dataset, req api.SelectionRequest) (domain.Selection, error) {
	sel := domain.Selection{Measures: dedupe(req.Measures), Groups: dedupe(req.Groups)}
	if req.Measures == nil {
		sel.Measures = ds.DistinctMeasures()
	}
	if req.Groups == nil {
		sel.Groups = ds.DistinctGroups()
	}
	if err := ds.CheckSelection(sel); err != nil {
		return domain.Selection{}, err
	}
	return sel, nil
}

func dedupe(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Options lists the selectable measures and groups of ds
func (s *DashboardService) Options(ds *dataprocessing.Dataset) *api.OptionsResponse {
	return &api.OptionsResponse{
		Source:      ds.Source().Identity(),
		Measures:    ds.DistinctMeasures(),
		Groups:      ds.DistinctGroups(),
		Rows:        ds.Len(),
		Fingerprint: ds.Fingerprint(),
	}
}

func (s *DashboardService) filter(ds *dataprocessing.Dataset, req api.SelectionRequest) ([]domain.Observation, domain.Selection, error) {
	sel, err := ResolveSelection(ds, req)
	if err != nil {
		return nil, domain.Selection{}, err
	}
	return dataprocessing.Filter(ds.Observations(), sel), sel, nil
}

// Series builds one series per selected measure
func (s *DashboardService) Series(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest) (*api.SeriesResponse, error) {
	filtered, sel, err := s.filter(ds, req)
	if err != nil {
		return nil, err
	}
	return &api.SeriesResponse{
		Selection: sel,
		Series:    dataprocessing.BuildAllSeries(filtered, sel),
	}, nil
}

// Summaries computes the change summary of every selected pair
func (s *DashboardService) Summaries(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest) ([]domain.GroupSummary, domain.Selection, error) {
	filtered, sel, err := s.filter(ds, req)
	if err != nil {
		return nil, domain.Selection{}, err
	}
	return s.summarizer.SummarizeAll(ctx, filtered, sel), sel, nil
}

// Summary returns the display form of Summaries
func (s *DashboardService) Summary(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest) (*api.SummaryResponse, error) {
	summaries, sel, err := s.Summaries(ctx, ds, req)
	if err != nil {
		return nil, err
	}
	return &api.SummaryResponse{
		Selection: sel,
		Groups:    SummaryViews(summaries),
		Missing:   dataprocessing.CountMissing(summaries),
	}, nil
}

// ChartHTML renders the chart page of the selection
func (s *DashboardService) ChartHTML(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest) ([]byte, error) {
	resp, err := s.Series(ctx, ds, req)
	if err != nil {
		return nil, err
	}
	html, err := s.renderer.HTML(resp.Series)
	s.observeChart(ctx, "html", err)
	return html, err
}

// ChartPNG renders the chart page of the selection to PNG
func (s *DashboardService) ChartPNG(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest) ([]byte, error) {
	resp, err := s.Series(ctx, ds, req)
	if err != nil {
		return nil, err
	}
	png, err := s.renderer.PNG(ctx, resp.Series)
	s.observeChart(ctx, "png", err)
	return png, err
}

func (s *DashboardService) observeChart(ctx context.Context, format string, err error) {
	if s.observer != nil {
		s.observer.ObserveChart(ctx, format, err)
	}
}

// Export encodes the change summary of the selection in format
func (s *DashboardService) Export(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest, format string) (*ExportResult, error) {
	f, err := exporter.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	w, err := exporter.For(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	summaries, _, err := s.Summaries(ctx, ds, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, summaries); err != nil {
		return nil, fmt.Errorf("export %s: %w", f, err)
	}
	if s.observer != nil {
		s.observer.ObserveExport(ctx, string(f))
	}

	s.logger.InfoContext(ctx, "summary exported",
		slog.String("format", string(f)),
		slog.Int("bytes", buf.Len()),
		slog.String("fingerprint", ds.Fingerprint()))

	return &ExportResult{
		Data:        buf.Bytes(),
		ContentType: w.ContentType(),
		FileName:    exporter.FileName("accuracy-summary-"+ds.Fingerprint()[:8], f),
		Format:      f,
	}, nil
}

// Sources lists the loadable files of the data directory. A missing
// directory yields an empty list.
func (s *DashboardService) Sources(ctx context.Context) ([]api.SourceInfo, error) {
	out := []api.SourceInfo{}
	if s.cfg.DataDir == "" {
		return out, nil
	}
	found, err := s.discovery.FindSources(s.cfg.DataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.WarnContext(ctx, "data directory missing", slog.String("data_dir", s.cfg.DataDir))
			return out, nil
		}
		return nil, err
	}
	for _, f := range found {
		out = append(out, api.SourceInfo{
			Name:     f.Name,
			Path:     f.Path,
			Format:   f.Format,
			Size:     f.Size,
			Modified: f.ModTime.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

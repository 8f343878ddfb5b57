package http

import (
	"context"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	"github.com/jgtann/gdp-dashboard/internal/services"
	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
)

// DashboardServiceInterface defines the dashboard operations used by handlers
type DashboardServiceInterface interface {
	Dataset(ctx context.Context, name string) (*dataprocessing.Dataset, error)
	Options(ds *dataprocessing.Dataset) *api.OptionsResponse
	Series(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest) (*api.SeriesResponse, error)
	Summary(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest) (*api.SummaryResponse, error)
	ChartHTML(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest) ([]byte, error)
	ChartPNG(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest) ([]byte, error)
	Export(ctx context.Context, ds *dataprocessing.Dataset, req api.SelectionRequest, format string) (*services.ExportResult, error)
	Sources(ctx context.Context) ([]api.SourceInfo, error)
}

var _ DashboardServiceInterface = (*services.DashboardService)(nil)

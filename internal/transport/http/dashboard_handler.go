package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	apierrors "github.com/jgtann/gdp-dashboard/internal/errors"
	appmw "github.com/jgtann/gdp-dashboard/internal/middleware"
	"github.com/jgtann/gdp-dashboard/internal/services"
	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
)

type contextKey string

const datasetKey contextKey = "dataset"

// DashboardHandler serves the dashboard JSON, chart and export endpoints
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *appmw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *appmw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = appmw.NewValidator()
	}
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard API routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/sources", h.GetSources)

	r.Group(func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/options", h.GetOptions)
		r.Get("/series", h.GetSeries)
		r.Get("/summary", h.GetSummary)
		r.Get("/chart", h.GetChart)
		r.Get("/chart.png", h.GetChartPNG)
		r.Get("/export/{format}", h.GetExport)
	})

	return r
}

// DatasetCtx loads the requested source into the request context and answers
// conditional requests whose ETag matches the dataset fingerprint.
func (h *DashboardHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ds, err := h.service.Dataset(r.Context(), r.URL.Query().Get(ParamSource))
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}

		etag := strconv.Quote(ds.Fingerprint())
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		ctx := context.WithValue(r.Context(), datasetKey, ds)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// DatasetFromContext returns the dataset stored by DatasetCtx
func DatasetFromContext(ctx context.Context) (*dataprocessing.Dataset, bool) {
	ds, ok := ctx.Value(datasetKey).(*dataprocessing.Dataset)
	return ds, ok
}

func (h *DashboardHandler) dataset(w http.ResponseWriter, r *http.Request) (*dataprocessing.Dataset, bool) {
	ds, ok := DatasetFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrDataNotLoaded)
		return nil, false
	}
	return ds, true
}

func (h *DashboardHandler) selection(w http.ResponseWriter, r *http.Request) (api.SelectionRequest, bool) {
	req := ParseSelection(r)
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return api.SelectionRequest{}, false
	}
	return req, true
}

// handleServiceError maps service errors to API errors
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSourceNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("source "+r.URL.Query().Get(ParamSource)))
	case errors.Is(err, services.ErrNoDefaultSource):
		h.errorHandler.HandleError(w, r, apierrors.ErrDataNotLoaded)
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.UnsupportedFormat(chi.URLParam(r, "format")))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// GetOptions handles GET /api/v1/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, h.service.Options(ds))
}

// GetSeries handles GET /api/v1/series
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	req, ok := h.selection(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Series(r.Context(), ds, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetSummary handles GET /api/v1/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	req, ok := h.selection(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Summary(r.Context(), ds, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if resp.Missing > 0 {
		h.logger.InfoContext(r.Context(), "summary has missing pairs",
			slog.Int("missing", resp.Missing),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}
	render.JSON(w, r, resp)
}

// GetChart handles GET /api/v1/chart and returns the chart page
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	req, ok := h.selection(w, r)
	if !ok {
		return
	}

	page, err := h.service.ChartHTML(r.Context(), ds, req)
	if err != nil {
		h.handleRenderError(w, r, "chart", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// GetChartPNG handles GET /api/v1/chart.png
func (h *DashboardHandler) GetChartPNG(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	req, ok := h.selection(w, r)
	if !ok {
		return
	}

	img, err := h.service.ChartPNG(r.Context(), ds, req)
	if err != nil {
		h.handleRenderError(w, r, "chart image", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	_, _ = w.Write(img)
}

// handleRenderError keeps selection errors as client errors and reports any
// other failure as a rendering problem.
func (h *DashboardHandler) handleRenderError(w http.ResponseWriter, r *http.Request, what string, err error) {
	var appErr *apierrors.AppError
	switch {
	case dataprocessing.IsUnknownSelection(err), errors.Is(err, context.DeadlineExceeded):
		h.handleServiceError(w, r, err)
	case errors.As(err, &appErr):
		h.errorHandler.HandleError(w, r, err)
	default:
		h.errorHandler.HandleError(w, r, apierrors.RenderFailed(what, err))
	}
}

// GetExport handles GET /api/v1/export/{format}
func (h *DashboardHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	req, ok := h.selection(w, r)
	if !ok {
		return
	}
	format := chi.URLParam(r, "format")

	res, err := h.service.Export(r.Context(), ds, req, format)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "export served",
		slog.String("format", string(res.Format)),
		slog.String("file", res.FileName),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	_, _ = w.Write(res.Data)
}

// GetSources handles GET /api/v1/sources
func (h *DashboardHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.service.Sources(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"sources": sources,
		"count":   len(sources),
	})
}

package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jgtann/gdp-dashboard/internal/charts"
	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	apierrors "github.com/jgtann/gdp-dashboard/internal/errors"
	"github.com/jgtann/gdp-dashboard/internal/exporter"
	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"deltaClass": deltaClass,
}).ParseFS(templateFS, "templates/dashboard.html"))

// Page text
const (
	DashboardHeading = "Day 1 and Day 2 Accuracy Comparison Dashboard"
	DashboardIntro   = "Compare the changes in measures across Day 1 and Day 2 for each experimental group."
)

type option struct {
	Value    string
	Selected bool
}

type link struct {
	Name  string
	Title string
	URL   string
}

type pageData struct {
	PageTitle   string
	Heading     string
	Intro       string
	Source      string
	Error       string
	ChartHeight int
	Measures    []option
	Groups      []option
	Charts      []link
	Summary     []api.GroupSummaryView
	Exports     []link
}

// PageHandler renders the dashboard page
type PageHandler struct {
	service      DashboardServiceInterface
	chartHeight  int
	apiPrefix    string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler creates a dashboard page handler. apiPrefix is the mount
// point of the DashboardHandler routes, used for chart and export links.
func NewPageHandler(service DashboardServiceInterface, chartHeight int, apiPrefix string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if chartHeight <= 0 {
		chartHeight = charts.DefaultOptions().Height
	}
	return &PageHandler{
		service:      service,
		chartHeight:  chartHeight,
		apiPrefix:    strings.TrimSuffix(apiPrefix, "/"),
		logger:       logger.With(slog.String("handler", "page")),
		errorHandler: errorHandler,
	}
}

// ServeDashboard handles GET /
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get(ParamSource)
	data := pageData{
		PageTitle:   charts.PageTitle,
		Heading:     DashboardHeading,
		Intro:       DashboardIntro,
		Source:      source,
		ChartHeight: h.chartHeight + 60,
	}

	status := http.StatusOK
	if err := h.fill(r, &data); err != nil {
		problem := h.errorHandler.ErrorToProblem(err, r)
		status = problem.Status
		data.Error = problem.Detail
		h.logger.WarnContext(r.Context(), "dashboard page degraded",
			slog.String("error", err.Error()),
			slog.Int("status", status))
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.RenderFailed("dashboard page", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *PageHandler) fill(r *http.Request, data *pageData) error {
	ctx := r.Context()
	ds, err := h.service.Dataset(ctx, data.Source)
	if err != nil {
		return err
	}
	req := ParseSelection(r)
	summary, err := h.service.Summary(ctx, ds, req)
	if err != nil {
		return err
	}
	sel := summary.Selection
	opts := h.service.Options(ds)

	data.Measures = options(opts.Measures, sel.Measures)
	data.Groups = options(opts.Groups, sel.Groups)
	data.Summary = summary.Groups

	for _, m := range sel.Measures {
		q := SelectionQuery(api.SelectionRequest{Measures: []string{m}, Groups: sel.Groups})
		data.Charts = append(data.Charts, link{
			Name:  m,
			Title: dataprocessing.ChartTitle(m),
			URL:   h.url("/chart", q, data.Source),
		})
	}

	q := SelectionQuery(api.SelectionRequest{Measures: sel.Measures, Groups: sel.Groups})
	for _, f := range exporter.Formats {
		data.Exports = append(data.Exports, link{
			Name: strings.ToUpper(string(f)),
			URL:  h.url("/export/"+string(f), q, data.Source),
		})
	}
	return nil
}

func (h *PageHandler) url(path string, q url.Values, source string) string {
	if source != "" {
		q.Set(ParamSource, source)
	}
	u := h.apiPrefix + path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func options(all, selected []string) []option {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	out := make([]option, 0, len(all))
	for _, v := range all {
		out = append(out, option{Value: v, Selected: chosen[v]})
	}
	return out
}

func deltaClass(m api.MetricView) string {
	switch {
	case m.Percent == nil:
		return "na"
	case *m.Percent < 0:
		return "down"
	default:
		return "up"
	}
}

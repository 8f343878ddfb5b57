package services

import (
	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// MetricViewOf is the display form of one summary entry. A missing pair
// shows "N/A" for both value and delta.
func MetricViewOf(group string, e domain.ChangeEntry) api.MetricView {
	view := api.MetricView{
		Label:   dataprocessing.MetricLabel(e.Measure, group),
		Measure: e.Measure,
		Value:   dataprocessing.NotAvailable,
		Delta:   dataprocessing.NotAvailable,
	}
	if !e.OK() {
		view.Missing = true
		if e.Err != nil {
			view.Error = e.Err.Error()
		}
		return view
	}

	rec := e.Record
	d1, d2 := rec.Day1Mean, rec.Day2Mean
	view.Day1Mean = &d1
	view.Day2Mean = &d2
	view.Value = dataprocessing.FormatMean(d2)
	view.Delta = dataprocessing.FormatPercent(rec.PercentChange)
	if rec.PercentChange.Defined {
		pct := rec.PercentChange.Value
		view.Percent = &pct
	}
	return view
}

// SummaryViews converts summaries keeping group and measure order
func SummaryViews(summaries []domain.GroupSummary) []api.GroupSummaryView {
	views := make([]api.GroupSummaryView, 0, len(summaries))
	for _, gs := range summaries {
		metrics := make([]api.MetricView, 0, len(gs.Entries))
		for _, e := range gs.Entries {
			metrics = append(metrics, MetricViewOf(gs.Group, e))
		}
		views = append(views, api.GroupSummaryView{
			Group:   gs.Group,
			Title:   dataprocessing.GroupTitle(gs.Group),
			Metrics: metrics,
		})
	}
	return views
}

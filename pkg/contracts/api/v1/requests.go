// Package api contains the JSON API contract of the accuracy dashboard.
package api

import (
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// SelectionRequest is the decoded form of the measure/group query parameters.
// A nil slice means "parameter absent" and defaults to the full set.
type SelectionRequest struct {
	Measures []string `json:"measures" query:"measure" validate:"omitempty,max=256,dive,max=256,label"`
	Groups   []string `json:"groups" query:"group" validate:"omitempty,max=256,dive,max=256,label"`
}

// ExportRequest selects an export format
type ExportRequest struct {
	Format string `json:"format" param:"format" validate:"required,oneof=csv json xlsx"`
}

// OptionsResponse lists the selectable values of the loaded dataset
type OptionsResponse struct {
	Source      string   `json:"source"`
	Measures    []string `json:"measures"`
	Groups      []string `json:"groups"`
	Rows        int      `json:"rows"`
	Fingerprint string   `json:"fingerprint"`
}

// SeriesResponse carries one series per selected measure
type SeriesResponse struct {
	Selection domain.Selection `json:"selection"`
	Series    []domain.Series  `json:"series"`
}

// MetricView is the display form of one change record
type MetricView struct {
	Label    string   `json:"label"`
	Measure  string   `json:"measure"`
	Value    string   `json:"value"`
	Delta    string   `json:"delta"`
	Day1Mean *float64 `json:"day1_mean,omitempty"`
	Day2Mean *float64 `json:"day2_mean,omitempty"`
	Percent  *float64 `json:"percent_change,omitempty"`
	Missing  bool     `json:"missing,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// GroupSummaryView is the display form of one group's summary
type GroupSummaryView struct {
	Group   string       `json:"group"`
	Title   string       `json:"title"`
	Metrics []MetricView `json:"metrics"`
}

// SummaryResponse carries the per-group change summaries
type SummaryResponse struct {
	Selection domain.Selection   `json:"selection"`
	Groups    []GroupSummaryView `json:"groups"`
	Missing   int                `json:"missing"`
}

// SourceInfo describes a loadable data file
type SourceInfo struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

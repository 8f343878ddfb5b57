package dataprocessing

import (
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// BuildSeries restricts filtered to one measure, keeping relative order.
// Points are not sorted by day or group.
func BuildSeries(filtered []domain.Observation, measure string) domain.Series {
	s := domain.Series{Measure: measure, Points: make([]domain.SeriesPoint, 0)}
	for _, o := range filtered {
		if o.Measure != measure {
			continue
		}
		s.Points = append(s.Points, domain.SeriesPoint{Day: o.Day, Group: o.Group, Mean: o.Mean})
	}
	return s
}

// BuildAllSeries builds one series per selected measure in selection order.
// Measures without filtered observations yield empty series.
func BuildAllSeries(filtered []domain.Observation, sel domain.Selection) []domain.Series {
	out := make([]domain.Series, 0, len(sel.Measures))
	for _, m := range sel.Measures {
		out = append(out, BuildSeries(filtered, m))
	}
	return out
}

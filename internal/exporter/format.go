package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// Format names an export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats in display order
var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX}

// ParseFormat accepts a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Header is the column layout shared by all formats
var Header = []string{"Group", "Measure", "Day 1 Mean", "Day 2 Mean", "Percent Change", "Label", "Value", "Delta", "Status"}

// Row statuses
const (
	StatusOK        = "ok"
	StatusMissing   = "missing"
	StatusUndefined = "undefined"
)

// Row is one exported (group, measure) pair
type Row struct {
	Group         string   `json:"group"`
	Measure       string   `json:"measure"`
	Day1Mean      *float64 `json:"day1Mean"`
	Day2Mean      *float64 `json:"day2Mean"`
	PercentChange *float64 `json:"percentChange"`
	Label         string   `json:"label"`
	Value         string   `json:"value"`
	Delta         string   `json:"delta"`
	Status        string   `json:"status"`
}

// Rows flattens summaries in group-then-measure order
func Rows(summaries []domain.GroupSummary) []Row {
	var rows []Row
	for _, gs := range summaries {
		for _, entry := range gs.Entries {
			row := Row{
				Group:   gs.Group,
				Measure: entry.Measure,
				Label:   dataprocessing.MetricLabel(entry.Measure, gs.Group),
				Value:   dataprocessing.NotAvailable,
				Delta:   dataprocessing.NotAvailable,
				Status:  StatusMissing,
			}
			if entry.OK() {
				rec := entry.Record
				d1, d2 := rec.Day1Mean, rec.Day2Mean
				row.Day1Mean = &d1
				row.Day2Mean = &d2
				row.Value = dataprocessing.FormatMean(d2)
				row.Delta = dataprocessing.FormatPercent(rec.PercentChange)
				row.Status = StatusUndefined
				if rec.PercentChange.Defined {
					pct := rec.PercentChange.Value
					row.PercentChange = &pct
					row.Status = StatusOK
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// Record returns the row as text cells matching Header
func (r Row) Record() []string {
	return []string{
		r.Group,
		r.Measure,
		formatFloat(r.Day1Mean),
		formatFloat(r.Day2Mean),
		formatFloat(r.PercentChange),
		r.Label,
		r.Value,
		r.Delta,
		r.Status,
	}
}

// formatFloat keeps full precision; the display columns carry the
// rounded form. Nil is an empty cell.
func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

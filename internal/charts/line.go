package charts

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

const (
	// PageTitle is the HTML title of rendered chart pages
	PageTitle = "Accuracy Dashboard"
	// DayAxisLabel names the category axis
	DayAxisLabel = "Day"

	colorBackground    = "#ffffff"
	colorTextPrimary   = "#1f2937"
	colorTextSecondary = "#6b7280"

	defaultWidthPx  = 900
	defaultHeightPx = 450

	// EmptyMessage is shown in place of charts when no measure is selected
	EmptyMessage = "No measures selected."
)

// Options controls chart geometry and styling
type Options struct {
	Width  int
	Height int
	Theme  string
}

// DefaultOptions returns the dashboard's standard chart size and theme
func DefaultOptions() Options {
	return Options{Width: defaultWidthPx, Height: defaultHeightPx, Theme: types.ThemeWesteros}
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = defaultWidthPx
	}
	if o.Height <= 0 {
		o.Height = defaultHeightPx
	}
	if o.Theme == "" {
		o.Theme = types.ThemeWesteros
	}
	return o
}

// LineChart builds the chart for one measure: x is the day label in
// first-seen order, y the mean, one line with markers per group. A group
// with no point on some day gets a gap there.
func LineChart(s domain.Series, o Options, chartID string) *charts.Line {
	o = o.normalized()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       PageTitle,
			ChartID:         chartID,
			Theme:           o.Theme,
			Width:           fmt.Sprintf("%dpx", o.Width),
			Height:          fmt.Sprintf("%dpx", o.Height),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      dataprocessing.ChartTitle(s.Measure),
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary, FontSize: 16},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			Right:     "10",
			TextStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      DayAxisLabel,
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      dataprocessing.AxisLabel(s.Measure),
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Opacity: opts.Float(0.3)}},
		}),
	)

	days := s.Days()
	xAxis := make([]string, len(days))
	for i, d := range days {
		xAxis[i] = string(d)
	}
	line.SetXAxis(xAxis)

	for _, group := range s.Groups() {
		line.AddSeries(group, groupLine(s, group, days))
	}
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 2}),
	)
	return line
}

// groupLine aligns one group's points to the x axis, first point per day
func groupLine(s domain.Series, group string, days []domain.Day) []opts.LineData {
	data := make([]opts.LineData, len(days))
	for i, day := range days {
		data[i] = opts.LineData{Value: nil}
		for _, p := range s.Points {
			if p.Group == group && p.Day == day {
				data[i] = opts.LineData{Value: p.Mean}
				break
			}
		}
	}
	return data
}

// Page lays out one chart per series in order
func Page(series []domain.Series, o Options) *components.Page {
	page := components.NewPage()
	page.PageTitle = PageTitle
	page.SetLayout(components.PageFlexLayout)
	for i, s := range series {
		page.AddCharts(LineChart(s, o, fmt.Sprintf("measure_%d", i)))
	}
	return page
}

const emptyPageFormat = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body style="margin:0;background:%s">
<div style="width:%dpx;height:%dpx;display:flex;align-items:center;justify-content:center;font-family:sans-serif;color:%s">%s</div>
</body>
</html>
`

// WriteHTML renders the chart page for series to w. No series renders a
// page holding EmptyMessage.
func WriteHTML(w io.Writer, series []domain.Series, o Options) error {
	if len(series) == 0 {
		o = o.normalized()
		_, err := fmt.Fprintf(w, emptyPageFormat, PageTitle, colorBackground, o.Width, emptyHeight(o), colorTextSecondary, EmptyMessage)
		return err
	}
	if err := Page(series, o).Render(w); err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}
	return nil
}

// HTML renders the chart page for series into memory
func HTML(series []domain.Series, o Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, series, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func emptyHeight(o Options) int { return o.Height / 3 }

package dataprocessing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// NotAvailable is displayed for undefined or missing changes
const NotAvailable = "N/A"

// exactExponent is below the smallest binary exponent, so the decimal
// holds the float's exact expansion
const exactExponent = -1075

// FormatMean renders a value with two decimal places, rounding the exact
// binary value half to even as %.2f does
func FormatMean(v float64) string {
	return decimal.NewFromFloatWithExponent(v, exactExponent).RoundBank(2).StringFixed(2)
}

// FormatPercent renders a change as "12.50%", or "N/A" when undefined
func FormatPercent(p domain.PercentChange) string {
	if !p.Defined {
		return NotAvailable
	}
	return FormatMean(p.Value) + "%"
}

// ChartTitle is the title of a measure's line chart
func ChartTitle(measure string) string {
	return fmt.Sprintf("%s Over Days by Group", measure)
}

// AxisLabel is the y-axis label of a measure's line chart
func AxisLabel(measure string) string {
	return "Mean " + measure
}

// GroupTitle is the heading of a group's summary block
func GroupTitle(group string) string {
	return fmt.Sprintf("%s - Day 1 to Day 2 Comparison", group)
}

// MetricLabel is the label of one (group, measure) metric
func MetricLabel(measure, group string) string {
	return fmt.Sprintf("%s Change (%s)", measure, group)
}

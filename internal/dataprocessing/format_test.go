package dataprocessing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

func TestFormatMean(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{90, "90.00"},
		{12.5, "12.50"},
		{0, "0.00"},
		{-25, "-25.00"},
		{33.333333, "33.33"},
		{66.666666, "66.67"},
		{1234567.891, "1234567.89"},
		// the binary value decides: 2.675 and 1.005 are stored just below
		// the midpoint, 12.125 and 0.125 are exact ties that round to even
		{12.125, "12.12"},
		{2.675, "2.67"},
		{1.005, "1.00"},
		{0.125, "0.12"},
		{-12.125, "-12.12"},
		{0.135, "0.14"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMean(tt.in))
			assert.Equal(t, fmt.Sprintf("%.2f", tt.in), FormatMean(tt.in))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.50%", FormatPercent(domain.Percent(12.5)))
	assert.Equal(t, "-25.00%", FormatPercent(domain.Percent(-25)))
	assert.Equal(t, "0.00%", FormatPercent(domain.Percent(0)))
	assert.Equal(t, "N/A", FormatPercent(domain.UndefinedChange))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Accuracy Over Days by Group", ChartTitle("Accuracy"))
	assert.Equal(t, "Mean Accuracy", AxisLabel("Accuracy"))
	assert.Equal(t, "Control - Day 1 to Day 2 Comparison", GroupTitle("Control"))
	assert.Equal(t, "Accuracy Change (Control)", MetricLabel("Accuracy", "Control"))
}

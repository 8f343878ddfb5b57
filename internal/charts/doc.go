// Package charts renders measure series as ECharts line charts, one chart
// per measure with one line per group, and screenshots them to PNG with a
// headless Chrome.
package charts

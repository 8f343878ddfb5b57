package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DashboardMetrics holds the application instruments. It satisfies the
// dataprocessing load and summary observer interfaces.
type DashboardMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	DatasetLoads        metric.Int64Counter
	DatasetLoadDuration metric.Float64Histogram
	DatasetRows         metric.Int64Gauge
	DatasetCacheHits    metric.Int64Counter

	SummaryPairs     metric.Int64Counter
	MissingPairs     metric.Int64Counter
	UndefinedChanges metric.Int64Counter

	ChartRenders metric.Int64Counter
	Exports      metric.Int64Counter
}

// CreateDashboardMetrics registers every instrument on meter
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	m := &DashboardMetrics{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.HTTPRequestsTotal, "dashboard.http.requests", "Total number of HTTP requests"},
		{&m.DatasetLoads, "dashboard.dataset.loads", "Physical reads of an observation table"},
		{&m.DatasetCacheHits, "dashboard.dataset.cache_hits", "Loads served from the record store cache"},
		{&m.SummaryPairs, "dashboard.summary.pairs", "Group and measure pairs summarized"},
		{&m.MissingPairs, "dashboard.summary.missing", "Pairs lacking a Day 1 or Day 2 observation"},
		{&m.UndefinedChanges, "dashboard.summary.undefined", "Pairs whose Day 1 mean is zero"},
		{&m.ChartRenders, "dashboard.chart.renders", "Charts rendered"},
		{&m.Exports, "dashboard.exports", "Change summary exports"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram("dashboard.http.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter("dashboard.http.active_requests",
		metric.WithDescription("In-flight HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create active requests counter: %w", err)
	}
	if m.DatasetLoadDuration, err = meter.Float64Histogram("dashboard.dataset.load.duration",
		metric.WithDescription("Time spent reading and validating a table"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create load duration histogram: %w", err)
	}
	if m.DatasetRows, err = meter.Int64Gauge("dashboard.dataset.rows",
		metric.WithDescription("Observations in the most recently loaded table"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dataset rows gauge: %w", err)
	}

	return m, nil
}

// ObserveLoad records one physical table read
func (m *DashboardMetrics) ObserveLoad(ctx context.Context, source string, rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	m.DatasetLoads.Add(ctx, 1, attrs)
	m.DatasetLoadDuration.Record(ctx, duration.Seconds(), attrs)
	if err == nil {
		m.DatasetRows.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("source", source)))
	}
}

// ObserveCacheHit records a load answered from the cache
func (m *DashboardMetrics) ObserveCacheHit(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.DatasetCacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// ObserveSummary records the outcome of one SummarizeAll call
func (m *DashboardMetrics) ObserveSummary(ctx context.Context, pairs, missing, undefined int) {
	if m == nil {
		return
	}
	m.SummaryPairs.Add(ctx, int64(pairs))
	m.MissingPairs.Add(ctx, int64(missing))
	m.UndefinedChanges.Add(ctx, int64(undefined))
}

// ObserveChart records a chart render in the given format (html or png)
func (m *DashboardMetrics) ObserveChart(ctx context.Context, format string, err error) {
	if m == nil {
		return
	}
	m.ChartRenders.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("error", err != nil),
	))
}

// ObserveExport records a change summary export
func (m *DashboardMetrics) ObserveExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.Exports.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

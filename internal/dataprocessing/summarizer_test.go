package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgtann/gdp-dashboard/internal/shared/testutil"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

func TestPercentChangeOf(t *testing.T) {
	tests := []struct {
		name string
		d1   float64
		d2   float64
		want domain.PercentChange
	}{
		{name: "increase", d1: 80, d2: 90, want: domain.Percent(12.5)},
		{name: "decrease", d1: 60, d2: 45, want: domain.Percent(-25)},
		{name: "unchanged", d1: 40, d2: 40, want: domain.Percent(0)},
		{name: "negative baseline", d1: -10, d2: -5, want: domain.Percent(-50)},
		{name: "zero baseline", d1: 0, d2: 50, want: domain.UndefinedChange},
		{name: "zero baseline zero result", d1: 0, d2: 0, want: domain.UndefinedChange},
		{name: "negative zero baseline", d1: -0.0, d2: 1, want: domain.UndefinedChange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentChangeOf(tt.d1, tt.d2))
		})
	}
}

func TestPercentChangeNotRounded(t *testing.T) {
	got := PercentChangeOf(3, 4)

	require.True(t, got.Defined)
	assert.Equal(t, ((4.0-3.0)/3.0)*100, got.Value)
	assert.Equal(t, "33.33%", FormatPercent(got))
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name        string
		rows        []domain.Observation
		group       string
		measure     string
		want        domain.ChangeRecord
		wantMissing domain.Day
	}{
		{
			name: "both days present",
			rows: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day1, 80),
				testutil.Obs("Accuracy", "A", domain.Day2, 90),
			},
			group:   "A",
			measure: "Accuracy",
			want:    domain.ChangeRecord{Group: "A", Measure: "Accuracy", Day1Mean: 80, Day2Mean: 90, PercentChange: domain.Percent(12.5)},
		},
		{
			name: "zero baseline",
			rows: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day1, 0),
				testutil.Obs("Accuracy", "A", domain.Day2, 50),
			},
			group:   "A",
			measure: "Accuracy",
			want:    domain.ChangeRecord{Group: "A", Measure: "Accuracy", Day1Mean: 0, Day2Mean: 50, PercentChange: domain.UndefinedChange},
		},
		{
			name: "day order in table does not matter",
			rows: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day2, 90),
				testutil.Obs("Accuracy", "A", domain.Day1, 80),
			},
			group:   "A",
			measure: "Accuracy",
			want:    domain.ChangeRecord{Group: "A", Measure: "Accuracy", Day1Mean: 80, Day2Mean: 90, PercentChange: domain.Percent(12.5)},
		},
		{
			name: "first match wins",
			rows: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day1, 50),
				testutil.Obs("Accuracy", "A", domain.Day1, 80),
				testutil.Obs("Accuracy", "A", domain.Day2, 100),
			},
			group:   "A",
			measure: "Accuracy",
			want:    domain.ChangeRecord{Group: "A", Measure: "Accuracy", Day1Mean: 50, Day2Mean: 100, PercentChange: domain.Percent(100)},
		},
		{
			name: "only day 1",
			rows: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day1, 80),
			},
			group:       "A",
			measure:     "Accuracy",
			wantMissing: domain.Day2,
		},
		{
			name: "only day 2",
			rows: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day2, 80),
			},
			group:       "A",
			measure:     "Accuracy",
			wantMissing: domain.Day1,
		},
		{
			name: "other labels are not matched",
			rows: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day1, 80),
				testutil.Obs("Accuracy", "A", domain.Day("Day 3"), 90),
			},
			group:       "A",
			measure:     "Accuracy",
			wantMissing: domain.Day2,
		},
		{
			name: "values of other groups are not used",
			rows: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day1, 80),
				testutil.Obs("Accuracy", "B", domain.Day2, 90),
			},
			group:       "A",
			measure:     "Accuracy",
			wantMissing: domain.Day2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(tt.rows, tt.group, tt.measure)

			if tt.wantMissing != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMissingData))
				var missing *MissingDataError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, tt.wantMissing, missing.Day)
				assert.Equal(t, tt.group, missing.Group)
				assert.Equal(t, tt.measure, missing.Measure)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type summaryCounts struct {
	pairs, missing, undefined int
}

func (c *summaryCounts) ObserveSummary(_ context.Context, pairs, missing, undefined int) {
	c.pairs, c.missing, c.undefined = pairs, missing, undefined
}

func TestSummarizeAll(t *testing.T) {
	obs := append(testutil.SampleObservations(),
		testutil.Obs("Accuracy", "Dropout", domain.Day1, 75),
		testutil.Obs("Recall", "Dropout", domain.Day1, 30),
		testutil.Obs("Recall", "Dropout", domain.Day2, 33),
	)
	sel := domain.Selection{
		Measures: []string{"Recall", "Accuracy"},
		Groups:   []string{"Dropout", "Placebo", "Control"},
	}
	counts := &summaryCounts{}
	logger, logs := testutil.NewTestLogger(t)
	summarizer := NewChangeSummarizer(logger).WithObserver(counts)

	summaries := summarizer.SummarizeAll(context.Background(), Filter(obs, sel), sel)

	require.Len(t, summaries, 3)
	for i, group := range sel.Groups {
		assert.Equal(t, group, summaries[i].Group)
		require.Len(t, summaries[i].Entries, 2)
		assert.Equal(t, "Recall", summaries[i].Entries[0].Measure)
		assert.Equal(t, "Accuracy", summaries[i].Entries[1].Measure)
	}

	dropout := summaries[0]
	require.True(t, dropout.Entries[0].OK())
	assert.InDelta(t, 10.0, dropout.Entries[0].Record.PercentChange.Value, 1e-9)
	assert.False(t, dropout.Entries[1].OK())
	assert.True(t, IsMissingData(dropout.Entries[1].Err))

	placebo := summaries[1]
	require.True(t, placebo.Entries[1].OK())
	assert.False(t, placebo.Entries[1].Record.PercentChange.Defined)
	assert.Equal(t, 50.0, placebo.Entries[1].Record.Day2Mean)

	control := summaries[2]
	require.True(t, control.Entries[1].OK())
	assert.Equal(t, domain.Percent(12.5), control.Entries[1].Record.PercentChange)

	assert.Equal(t, 1, CountMissing(summaries))
	assert.Equal(t, summaryCounts{pairs: 6, missing: 1, undefined: 1}, *counts)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "change summary computed")
	testutil.AssertNoErrors(t, logs)
}

func TestSummarizeAllEmptySelection(t *testing.T) {
	summarizer := NewChangeSummarizer(nil)

	assert.Empty(t, summarizer.SummarizeAll(context.Background(), testutil.SampleObservations(), domain.Selection{}))

	summaries := summarizer.SummarizeAll(context.Background(), nil, domain.Selection{Groups: []string{"A"}})
	require.Len(t, summaries, 1)
	assert.Empty(t, summaries[0].Entries)
}

func TestPipelineScenarios(t *testing.T) {
	t.Run("twelve and a half percent", func(t *testing.T) {
		ds := NewDataset(Source{}, []domain.Observation{
			testutil.Obs("Accuracy", "A", domain.Day1, 80.0),
			testutil.Obs("Accuracy", "A", domain.Day2, 90.0),
		})
		sel := ds.FullSelection()
		summaries := NewChangeSummarizer(nil).SummarizeAll(context.Background(), Filter(ds.Observations(), sel), sel)

		rec := summaries[0].Entries[0].Record
		require.NotNil(t, rec)
		assert.Equal(t, 90.0, rec.Day2Mean)
		assert.Equal(t, 12.5, rec.PercentChange.Value)
		assert.Equal(t, "90.00", FormatMean(rec.Day2Mean))
		assert.Equal(t, "12.50%", FormatPercent(rec.PercentChange))
	})

	t.Run("zero baseline renders N/A", func(t *testing.T) {
		rec, err := Summarize([]domain.Observation{
			testutil.Obs("Accuracy", "A", domain.Day1, 0.0),
			testutil.Obs("Accuracy", "A", domain.Day2, 50.0),
		}, "A", "Accuracy")
		require.NoError(t, err)
		assert.Equal(t, "N/A", FormatPercent(rec.PercentChange))
	})

	t.Run("missing pair does not hide others", func(t *testing.T) {
		obs := []domain.Observation{
			testutil.Obs("Accuracy", "A", domain.Day1, 80),
			testutil.Obs("Accuracy", "B", domain.Day1, 10),
			testutil.Obs("Accuracy", "B", domain.Day2, 20),
		}
		ds := NewDataset(Source{}, obs)
		sel := ds.FullSelection()

		summaries := NewChangeSummarizer(nil).SummarizeAll(context.Background(), Filter(obs, sel), sel)

		require.Len(t, summaries, 2)
		assert.True(t, IsMissingData(summaries[0].Entries[0].Err))
		require.True(t, summaries[1].Entries[0].OK())
		assert.Equal(t, domain.Percent(100), summaries[1].Entries[0].Record.PercentChange)
	})
}

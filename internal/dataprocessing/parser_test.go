package dataprocessing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgtann/gdp-dashboard/internal/shared/testutil"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantObs   []domain.Observation
		wantErr   bool
		errRow    int
		errColumn string
		errText   string
	}{
		{
			name:  "basic table",
			input: "Measure,Group,Day,Mean\nAccuracy,A,Day 1,80\nAccuracy,A,Day 2,90.5\n",
			wantObs: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day1, 80),
				testutil.Obs("Accuracy", "A", domain.Day2, 90.5),
			},
		},
		{
			name:  "columns in any order with extras",
			input: "Notes,Mean,Day,Group,Measure\nx,1.5,Day 1,B,Recall\n",
			wantObs: []domain.Observation{
				testutil.Obs("Recall", "B", domain.Day1, 1.5),
			},
		},
		{
			name:  "byte order mark on header",
			input: "\ufeffMeasure,Group,Day,Mean\nAccuracy,A,Day 1,1\n",
			wantObs: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day1, 1),
			},
		},
		{
			name:  "unrecognized day kept as label",
			input: "Measure,Group,Day,Mean\nAccuracy,A,Day 3,7\n",
			wantObs: []domain.Observation{
				testutil.Obs("Accuracy", "A", domain.Day("Day 3"), 7),
			},
		},
		{
			name:    "header only",
			input:   "Measure,Group,Day,Mean\n",
			wantObs: nil,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
			errText: "no header row",
		},
		{
			name:    "missing column",
			input:   "Measure,Group,Mean\nAccuracy,A,1\n",
			wantErr: true,
			errRow:  1,
			errText: "missing required columns: Day",
		},
		{
			name:    "header names are case sensitive",
			input:   "measure,group,day,mean\nAccuracy,A,Day 1,1\n",
			wantErr: true,
			errText: "Measure, Group, Day, Mean",
		},
		{
			name:      "non-numeric mean",
			input:     "Measure,Group,Day,Mean\nAccuracy,A,Day 1,80\nAccuracy,A,Day 2,high\n",
			wantErr:   true,
			errRow:    3,
			errColumn: "Mean",
			errText:   `non-numeric value "high"`,
		},
		{
			name:      "empty mean",
			input:     "Measure,Group,Day,Mean\nAccuracy,A,Day 1,\n",
			wantErr:   true,
			errRow:    2,
			errColumn: "Mean",
		},
		{
			name:      "nan mean",
			input:     "Measure,Group,Day,Mean\nAccuracy,A,Day 1,NaN\n",
			wantErr:   true,
			errRow:    2,
			errColumn: "Mean",
		},
		{
			name:      "empty group",
			input:     "Measure,Group,Day,Mean\nAccuracy,,Day 1,3\n",
			wantErr:   true,
			errRow:    2,
			errColumn: "Group",
		},
		{
			name:    "ragged row",
			input:   "Measure,Group,Day,Mean\nAccuracy,A,Day 1\n",
			wantErr: true,
			errRow:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseCSV(strings.NewReader(tt.input), "test.csv")

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrDataLoad))

				var loadErr *DataLoadError
				require.ErrorAs(t, err, &loadErr)
				assert.Equal(t, "test.csv", loadErr.Source)
				if tt.errRow != 0 {
					assert.Equal(t, tt.errRow, loadErr.Row)
				}
				assert.Equal(t, tt.errColumn, loadErr.Column)
				if tt.errText != "" {
					assert.Contains(t, err.Error(), tt.errText)
				}
				return
			}

			require.NoError(t, err)
			if tt.wantObs == nil {
				assert.Empty(t, table.Rows)
				return
			}
			assert.Equal(t, tt.wantObs, table.Observations())
		})
	}
}

func TestParseCSVLineNumbers(t *testing.T) {
	input := "Measure,Group,Day,Mean\nAccuracy,A,Day 1,1\n\nAccuracy,A,Day 2,2\n"

	table, err := ParseCSV(strings.NewReader(input), "lines.csv")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, 4, table.Rows[1].Line)
}

func TestParseXLSX(t *testing.T) {
	obs := testutil.SampleObservations()[:4]

	t.Run("first sheet", func(t *testing.T) {
		path := testutil.WriteXLSX(t, "Data", obs)

		table, err := ParseXLSX(path, "")
		require.NoError(t, err)
		assert.Equal(t, obs, table.Observations())
	})

	t.Run("named sheet", func(t *testing.T) {
		path := testutil.WriteXLSX(t, "Results", obs)

		table, err := ParseXLSX(path, "Results")
		require.NoError(t, err)
		assert.Len(t, table.Rows, 4)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		path := testutil.WriteXLSX(t, "Results", obs)

		_, err := ParseXLSX(path, "Missing")
		require.Error(t, err)
		assert.True(t, IsDataLoad(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseXLSX("/nonexistent/book.xlsx", "")
		require.Error(t, err)
		assert.True(t, IsDataLoad(err))
	})
}

func TestParseValues(t *testing.T) {
	values := [][]interface{}{
		{"Measure", "Group", "Day", "Mean"},
		{"Accuracy", "A", "Day 1", 80.0},
		{"Accuracy", "A", "Day 2", "90"},
		{},
	}

	table, err := parseValues("sheets:id/A1:D4", values)
	require.NoError(t, err)
	assert.Equal(t, []domain.Observation{
		testutil.Obs("Accuracy", "A", domain.Day1, 80),
		testutil.Obs("Accuracy", "A", domain.Day2, 90),
	}, table.Observations())
}

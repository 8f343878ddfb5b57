package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgtann/gdp-dashboard/internal/shared/testutil"
)

func TestParseSource(t *testing.T) {
	abs, err := filepath.Abs("data/combined.csv")
	require.NoError(t, err)

	tests := []struct {
		name     string
		raw      string
		want     Source
		identity string
		wantErr  bool
	}{
		{
			name:     "relative csv path",
			raw:      "data/combined.csv",
			want:     Source{Kind: SourceCSV, Location: abs},
			identity: abs,
		},
		{
			name:     "dot segments resolve to same identity",
			raw:      "./data/../data/combined.csv",
			want:     Source{Kind: SourceCSV, Location: abs},
			identity: abs,
		},
		{
			name:     "sheets source",
			raw:      "sheets:abc123/Sheet1!A1:D100",
			want:     Source{Kind: SourceSheets, Location: "abc123", Range: "Sheet1!A1:D100"},
			identity: "sheets:abc123/Sheet1!A1:D100",
		},
		{
			name:    "sheets without range",
			raw:     "sheets:abc123",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "  ",
			wantErr: true,
		},
		{
			name:    "unsupported extension",
			raw:     "data/combined.parquet",
			wantErr: true,
		},
		{
			name:    "sheet suffix on csv",
			raw:     "data/combined.csv#Sheet1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSource(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsDataLoad(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.identity, got.Identity())
		})
	}
}

func TestParseSourceWorkbookSheet(t *testing.T) {
	src, err := ParseSource("book.xlsx#Results")
	require.NoError(t, err)
	assert.Equal(t, SourceXLSX, src.Kind)
	assert.Equal(t, "Results", src.Range)
	assert.Contains(t, src.Identity(), "book.xlsx#Results")
}

func TestSourceReader(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	reader := NewSourceReader(logger, SheetsConfig{})
	obs := testutil.SampleObservations()

	t.Run("csv", func(t *testing.T) {
		src, err := ParseSource(testutil.WriteCSV(t, obs))
		require.NoError(t, err)

		table, err := reader.Read(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, obs, table.Observations())
		testutil.AssertLogContains(t, logs, slog.LevelInfo, "source read")
	})

	t.Run("xlsx", func(t *testing.T) {
		src, err := ParseSource(testutil.WriteXLSX(t, "Data", obs))
		require.NoError(t, err)

		table, err := reader.Read(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, obs, table.Observations())
	})

	t.Run("missing file", func(t *testing.T) {
		src, err := ParseSource(filepath.Join(t.TempDir(), "absent.csv"))
		require.NoError(t, err)

		_, err = reader.Read(context.Background(), src)
		require.Error(t, err)
		assert.True(t, IsDataLoad(err))
	})
}

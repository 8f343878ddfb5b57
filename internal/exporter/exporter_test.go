package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	apperrors "github.com/jgtann/gdp-dashboard/internal/errors"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

func fixtureSummaries() []domain.GroupSummary {
	return []domain.GroupSummary{
		{Group: "Control", Entries: []domain.ChangeEntry{
			{Measure: "Accuracy", Record: &domain.ChangeRecord{
				Group: "Control", Measure: "Accuracy", Day1Mean: 0.5, Day2Mean: 0.55,
				PercentChange: domain.Percent(10.000000000000009),
			}},
			{Measure: "Recall", Err: &dataprocessing.MissingDataError{Group: "Control", Measure: "Recall", Day: domain.Day2}},
		}},
		{Group: "Placebo", Entries: []domain.ChangeEntry{
			{Measure: "Accuracy", Record: &domain.ChangeRecord{
				Group: "Placebo", Measure: "Accuracy", Day1Mean: 0, Day2Mean: 0.4,
				PercentChange: domain.UndefinedChange,
			}},
		}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRows(t *testing.T) {
	rows := Rows(fixtureSummaries())
	require.Len(t, rows, 3)

	ok := rows[0]
	assert.Equal(t, "Accuracy Change (Control)", ok.Label)
	assert.Equal(t, "0.55", ok.Value)
	assert.Equal(t, "10.00%", ok.Delta)
	assert.Equal(t, StatusOK, ok.Status)
	require.NotNil(t, ok.PercentChange)

	missing := rows[1]
	assert.Equal(t, "Recall", missing.Measure)
	assert.Equal(t, "N/A", missing.Value)
	assert.Equal(t, "N/A", missing.Delta)
	assert.Nil(t, missing.Day1Mean)
	assert.Equal(t, StatusMissing, missing.Status)

	undefined := rows[2]
	assert.Equal(t, "0.40", undefined.Value)
	assert.Equal(t, "N/A", undefined.Delta)
	assert.Nil(t, undefined.PercentChange)
	assert.Equal(t, StatusUndefined, undefined.Status)
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().Write(&buf, fixtureSummaries()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"Control", "Accuracy", "0.5", "0.55", "10.000000000000009", "Accuracy Change (Control)", "0.55", "10.00%", "ok"}, records[1])
	assert.Equal(t, []string{"Control", "Recall", "", "", "", "Recall Change (Control)", "N/A", "N/A", "missing"}, records[2])
}

func TestCSVWriterWithoutBOM(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, nil))
	assert.Equal(t, "Group,Measure,Day 1 Mean,Day 2 Mean,Percent Change,Label,Value,Delta,Status\n", buf.String())
}

func TestJSONWriter(t *testing.T) {
	w := NewJSONWriter()
	w.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, fixtureSummaries()))

	var doc struct {
		GeneratedAt string                   `json:"generatedAt"`
		Rows        []map[string]interface{} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2026-01-02T03:04:05Z", doc.GeneratedAt)
	require.Len(t, doc.Rows, 3)
	assert.Nil(t, doc.Rows[1]["day2Mean"])
	assert.Equal(t, "N/A", doc.Rows[2]["delta"])

	buf.Reset()
	require.NoError(t, w.Write(&buf, nil))
	assert.Contains(t, buf.String(), `"rows": []`)
}

func TestXLSXWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter().Write(&buf, fixtureSummaries()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet}, f.GetSheetList())
	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Control", rows[1][0])
	assert.Equal(t, "Accuracy Change (Control)", rows[1][5])
	assert.Equal(t, "N/A", rows[2][6])

	raw, err := f.GetCellValue(SummarySheet, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.55", raw)
}

func TestForAndFileName(t *testing.T) {
	for _, format := range Formats {
		w, err := For(format)
		require.NoError(t, err)
		assert.NotEmpty(t, w.ContentType())
		assert.Equal(t, "summary."+string(format), FileName("summary", format))
	}
	_, err := For("pdf")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "summary.csv")
	require.NoError(t, WriteFile(path, FormatCSV, fixtureSummaries()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Accuracy Change (Control)")

	assert.Error(t, WriteFile(path, Format("pdf"), nil))
}

func TestWriteFileStorageErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{"parent is a file", filepath.Join(blocker, "summary.csv")},
		{"target is a directory", dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WriteFile(tt.path, FormatCSV, fixtureSummaries())
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)
			assert.Equal(t, tt.path, appErr.Context["path"])
		})
	}
}

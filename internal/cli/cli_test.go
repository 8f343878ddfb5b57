package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jgtann/gdp-dashboard/internal/charts"
	"github.com/jgtann/gdp-dashboard/internal/shared/testutil"
	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWith(t, &options{}, args...)
}

func runWith(t *testing.T, o *options, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(o)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSummaryTable(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleObservations())

	out, err := run(t, "summary", "--source", path, "--group", "Control", "--group", "Placebo")
	require.NoError(t, err)

	assert.Contains(t, out, "Control - Day 1 to Day 2 Comparison")
	assert.Contains(t, out, "Placebo - Day 1 to Day 2 Comparison")
	assert.NotContains(t, out, "Treatment")

	lines := strings.Split(out, "\n")
	var accuracy []string
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "Accuracy") {
			accuracy = append(accuracy, strings.Fields(l)...)
		}
	}
	assert.Equal(t, []string{"Accuracy", "80.00", "90.00", "12.50%", "Accuracy", "0.00", "50.00", "N/A"}, accuracy)
}

func TestSummaryJSON(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleObservations())

	out, err := run(t, "summary", "--source", path, "--measure", "Recall", "--json")
	require.NoError(t, err)

	var resp api.SummaryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Groups, 3)
	assert.Equal(t, []string{"Recall"}, resp.Selection.Measures)
	assert.Equal(t, "-25.00%", resp.Groups[0].Metrics[0].Delta)
	assert.Equal(t, "0.00%", resp.Groups[2].Metrics[0].Delta)
}

func TestSummaryEmptySelection(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleObservations())

	out, err := run(t, "summary", "--source", path, "--group", "")
	require.NoError(t, err)
	assert.Equal(t, "No groups selected.\n", out)
}

func TestSummaryMissingPair(t *testing.T) {
	obs := []domain.Observation{
		testutil.Obs("Accuracy", "Control", domain.Day1, 80),
		testutil.Obs("Accuracy", "Treatment", domain.Day1, 70),
		testutil.Obs("Accuracy", "Treatment", domain.Day2, 77),
	}
	path := testutil.WriteCSV(t, obs)

	out, err := run(t, "summary", "--source", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 pair(s) lack a Day 1 or Day 2 value.")
	assert.Contains(t, out, "10.00%")
}

func TestSummaryPaddedGroup(t *testing.T) {
	path := testutil.WriteCSV(t, []domain.Observation{
		testutil.Obs("Accuracy", " A", domain.Day1, 80),
		testutil.Obs("Accuracy", " A", domain.Day2, 90),
		testutil.Obs("Accuracy", "A", domain.Day1, 10),
		testutil.Obs("Accuracy", "A", domain.Day2, 20),
	})

	out, err := run(t, "summary", "--source", path, "--group", " A", "--json")
	require.NoError(t, err)

	var resp api.SummaryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, " A", resp.Groups[0].Group)
	assert.Equal(t, "12.50%", resp.Groups[0].Metrics[0].Delta)
}

func TestSummaryErrors(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleObservations())

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown measure", []string{"summary", "--source", path, "--measure", "Latency"}, "unknown measure"},
		{"missing file", []string{"summary", "--source", filepath.Join(t.TempDir(), "none.csv")}, "none.csv"},
		{"bad policy", []string{"summary", "--source", path, "--duplicates", "newest"}, "duplicate policy"},
		{"bad mean", []string{"summary", "--source", testutil.WriteRawCSV(t, [][]string{
			{"Measure", "Group", "Day", "Mean"},
			{"Accuracy", "Control", "Day 1", ""},
		})}, "Mean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDuplicatesFlag(t *testing.T) {
	obs := append(testutil.SampleObservations(), testutil.Obs("Accuracy", "Control", domain.Day2, 100))
	path := testutil.WriteCSV(t, obs)

	_, err := run(t, "summary", "--source", path)
	require.Error(t, err)

	out, err := run(t, "summary", "--source", path, "--duplicates", "last", "--group", "Control", "--measure", "Accuracy")
	require.NoError(t, err)
	assert.Contains(t, out, "25.00%")

	out, err = run(t, "summary", "--source", path, "--duplicates", "first", "--group", "Control", "--measure", "Accuracy")
	require.NoError(t, err)
	assert.Contains(t, out, "12.50%")
}

func TestExport(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleObservations())
	dir := t.TempDir()

	csvOut := filepath.Join(dir, "out", "summary.csv")
	out, err := run(t, "export", "--source", path, "--format", "csv", "--output", csvOut, "--group", "Control")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 1 group(s)")
	data, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Accuracy Change (Control)")

	xlsxOut := filepath.Join(dir, "summary.xlsx")
	_, err = run(t, "export", "--source", path, "--format", "xlsx", "--output", xlsxOut)
	require.NoError(t, err)
	f, err := excelize.OpenFile(xlsxOut)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Len(t, rows, 7)

	_, err = run(t, "export", "--source", path, "--format", "pdf", "--output", filepath.Join(dir, "x.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestChartHTML(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleObservations())
	output := filepath.Join(t.TempDir(), "charts.html")

	out, err := run(t, "chart", "--source", path, "--measure", "Accuracy", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Accuracy Over Days by Group")
	assert.NotContains(t, string(data), "Recall Over Days by Group")

	_, err = run(t, "chart", "--source", path, "--format", "svg", "--output", output)
	assert.Error(t, err)
}

func TestCommandLogsShareTraceID(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleObservations())

	root := NewRootCommand()
	var stderr bytes.Buffer
	root.SetOut(io.Discard)
	root.SetErr(&stderr)
	root.SetArgs([]string{"summary", "--source", path, "--json", "--log-level", "info"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	require.NotEmpty(t, lines)
	traceIDs := map[string]struct{}{}
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		traceID, _ := entry["trace_id"].(string)
		require.NotEmpty(t, traceID, line)
		traceIDs[traceID] = struct{}{}
	}
	assert.Len(t, traceIDs, 1)
}

type stubShooter struct {
	html []byte
}

func (s *stubShooter) Screenshot(_ context.Context, html []byte, _, _ int) ([]byte, error) {
	s.html = html
	return []byte("\x89PNG"), nil
}

func TestChartPNGEmptySelection(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleObservations())
	output := filepath.Join(t.TempDir(), "empty.png")
	shooter := &stubShooter{}

	out, err := runWith(t, &options{shooter: shooter}, "chart", "--source", path, "--format", "png", "--measure", "", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data)
	assert.Contains(t, string(shooter.html), charts.EmptyMessage)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Accuracy Dashboard v")
}

func TestNonEmpty(t *testing.T) {
	assert.Equal(t, []string{}, nonEmpty([]string{"", ""}))
	assert.Equal(t, []string{"a", " b "}, nonEmpty([]string{"a", "", " b "}))
}

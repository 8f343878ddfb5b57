package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// Obs builds an observation
func Obs(measure, group string, day domain.Day, mean float64) domain.Observation {
	return domain.Observation{Measure: measure, Group: group, Day: day, Mean: mean}
}

// SampleObservations is a complete two-measure, three-group table
func SampleObservations() []domain.Observation {
	return []domain.Observation{
		Obs("Accuracy", "Control", domain.Day1, 80),
		Obs("Accuracy", "Control", domain.Day2, 90),
		Obs("Accuracy", "Treatment", domain.Day1, 70),
		Obs("Accuracy", "Treatment", domain.Day2, 84),
		Obs("Accuracy", "Placebo", domain.Day1, 0),
		Obs("Accuracy", "Placebo", domain.Day2, 50),
		Obs("Recall", "Control", domain.Day1, 60),
		Obs("Recall", "Control", domain.Day2, 45),
		Obs("Recall", "Treatment", domain.Day1, 50),
		Obs("Recall", "Treatment", domain.Day2, 55),
		Obs("Recall", "Placebo", domain.Day1, 40),
		Obs("Recall", "Placebo", domain.Day2, 40),
	}
}

// Header is the input table header
var Header = []string{"Measure", "Group", "Day", "Mean"}

// Rows renders observations as string records without a header
func Rows(obs []domain.Observation) [][]string {
	rows := make([][]string, len(obs))
	for i, o := range obs {
		rows[i] = []string{o.Measure, o.Group, string(o.Day), strconv.FormatFloat(o.Mean, 'f', -1, 64)}
	}
	return rows
}

// WriteCSV writes observations with a header to a temp file and returns its path
func WriteCSV(t *testing.T, obs []domain.Observation) string {
	t.Helper()
	return WriteRawCSV(t, append([][]string{Header}, Rows(obs)...))
}

// WriteRawCSV writes records verbatim to a temp CSV file
func WriteRawCSV(t *testing.T, records [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "combined.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv fixture: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}
	return path
}

// WriteXLSX writes observations with a header to the first sheet of a temp
// workbook and returns its path
func WriteXLSX(t *testing.T, sheet string, obs []domain.Observation) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}

	records := append([][]string{Header}, Rows(obs)...)
	for r, record := range records {
		for c, v := range record {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			var value any = v
			if r > 0 && c == 3 {
				value = obs[r-1].Mean
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), fmt.Sprintf("%s.xlsx", sheet))
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

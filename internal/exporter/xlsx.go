package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// SummarySheet is the worksheet holding exported rows
const SummarySheet = "Summary"

// XLSXWriter writes rows into a single-sheet workbook with numeric cells
// for the means and percent change
type XLSXWriter struct{}

// NewXLSXWriter creates an XLSX writer
func NewXLSXWriter() *XLSXWriter { return &XLSXWriter{} }

// ContentType implements Writer
func (w *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements Writer
func (w *XLSXWriter) Extension() string { return ".xlsx" }

// Write implements Writer
func (w *XLSXWriter) Write(out io.Writer, summaries []domain.GroupSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Header))
	if err := f.SetCellStyle(SummarySheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	rows := Rows(summaries)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.Group,
			row.Measure,
			cellValue(row.Day1Mean),
			cellValue(row.Day2Mean),
			cellValue(row.PercentChange),
			row.Label,
			row.Value,
			row.Delta,
			row.Status,
		}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if len(rows) > 0 {
		end, _ := excelize.CoordinatesToCellName(5, len(rows)+1)
		if err := f.SetCellStyle(SummarySheet, "C2", end, numberStyle); err != nil {
			return fmt.Errorf("failed to style numbers: %w", err)
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "B", 18)
	_ = f.SetColWidth(SummarySheet, "F", "F", 32)

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// cellValue leaves missing numbers as blank cells
func cellValue(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

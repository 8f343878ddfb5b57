package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes rows as comma separated values
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 byte order mark so Excel detects the encoding
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer with the BOM enabled
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// ContentType implements Writer
func (w *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// Extension implements Writer
func (w *CSVWriter) Extension() string { return ".csv" }

// Write implements Writer
func (w *CSVWriter) Write(out io.Writer, summaries []domain.GroupSummary) error {
	if w.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range Rows(summaries) {
		if err := writer.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

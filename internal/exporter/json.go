package exporter

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// JSONWriter writes an indented document with the rows and a timestamp
type JSONWriter struct {
	now func() time.Time
}

// NewJSONWriter creates a JSON writer
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{now: time.Now}
}

type jsonDocument struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Rows        []Row     `json:"rows"`
}

// ContentType implements Writer
func (w *JSONWriter) ContentType() string { return "application/json" }

// Extension implements Writer
func (w *JSONWriter) Extension() string { return ".json" }

// Write implements Writer
func (w *JSONWriter) Write(out io.Writer, summaries []domain.GroupSummary) error {
	rows := Rows(summaries)
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonDocument{GeneratedAt: w.now().UTC(), Rows: rows})
}

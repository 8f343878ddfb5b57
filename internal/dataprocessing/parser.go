package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// Required header names, matched exactly
const (
	ColumnMeasure = "Measure"
	ColumnGroup   = "Group"
	ColumnDay     = "Day"
	ColumnMean    = "Mean"
)

var requiredColumns = []string{ColumnMeasure, ColumnGroup, ColumnDay, ColumnMean}

const utf8BOM = "\ufeff"

// Row is a parsed observation together with its line in the source
type Row struct {
	Line        int
	Observation domain.Observation
}

// Table is the parsed, not yet de-duplicated content of a source
type Table struct {
	Source string
	Rows   []Row
}

// Observations returns the observations of the table in source order
func (t *Table) Observations() []domain.Observation {
	out := make([]domain.Observation, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Observation
	}
	return out
}

type columnIndex map[string]int

func indexHeader(source string, header []string) (columnIndex, error) {
	idx := make(columnIndex, len(requiredColumns))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if _, dup := idx[name]; dup && isRequired(name) {
			return nil, loadError(source, 1, name, "duplicate header column")
		}
		idx[name] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, loadError(source, 1, "", "missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func isRequired(name string) bool {
	for _, col := range requiredColumns {
		if col == name {
			return true
		}
	}
	return false
}

func (c columnIndex) cell(record []string, column string) string {
	i := c[column]
	if i >= len(record) {
		return ""
	}
	return record[i]
}

// parseRecord converts one data row. line is the 1-based source line.
func (c columnIndex) parseRecord(source string, line int, record []string) (Row, error) {
	obs := domain.Observation{
		Measure: c.cell(record, ColumnMeasure),
		Group:   c.cell(record, ColumnGroup),
		Day:     domain.Day(c.cell(record, ColumnDay)),
	}
	for _, col := range requiredColumns[:3] {
		if strings.TrimSpace(c.cell(record, col)) == "" {
			return Row{}, loadError(source, line, col, "empty value")
		}
	}

	raw := strings.TrimSpace(c.cell(record, ColumnMean))
	if raw == "" {
		return Row{}, loadError(source, line, ColumnMean, "empty value")
	}
	mean, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Row{}, loadError(source, line, ColumnMean, "non-numeric value %q", raw)
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return Row{}, loadError(source, line, ColumnMean, "non-finite value %q", raw)
	}
	obs.Mean = mean

	return Row{Line: line, Observation: obs}, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseRows turns a header row plus data rows into a Table. Fully blank
// rows are skipped.
func parseRows(source string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, loadError(source, 0, "", "no header row")
	}
	idx, err := indexHeader(source, rows[0])
	if err != nil {
		return nil, err
	}

	table := &Table{Source: source, Rows: make([]Row, 0, len(rows)-1)}
	for i, record := range rows[1:] {
		if isBlank(record) {
			continue
		}
		row, err := idx.parseRecord(source, i+2, record)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseCSV reads a comma-delimited UTF-8 table with a header row
func ParseCSV(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, loadError(source, 0, "", "no header row")
	}
	if err != nil {
		return nil, &DataLoadError{Source: source, Row: 1, Err: err}
	}
	idx, err := indexHeader(source, header)
	if err != nil {
		return nil, err
	}

	table := &Table{Source: source}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.StartLine
			}
			return nil, &DataLoadError{Source: source, Row: line, Err: err}
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		row, err := idx.parseRecord(source, line, record)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseXLSX reads the observation table from a workbook. The named sheet is
// used when set, otherwise the first sheet.
func ParseXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: fmt.Errorf("failed to open workbook: %w", err)}
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, loadError(path, 0, "", "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	return parseRows(path, rows)
}

// parseValues converts a Sheets API value range into a Table
func parseValues(source string, values [][]interface{}) (*Table, error) {
	rows := make([][]string, len(values))
	for i, vals := range values {
		row := make([]string, len(vals))
		for j, v := range vals {
			if v == nil {
				continue
			}
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return parseRows(source, rows)
}

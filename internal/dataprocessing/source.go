package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceKind identifies how a source is read
type SourceKind string

const (
	SourceCSV    SourceKind = "csv"
	SourceXLSX   SourceKind = "xlsx"
	SourceSheets SourceKind = "sheets"
)

// SheetsPrefix marks a Google Sheets source: sheets:<spreadsheetID>/<range>
const SheetsPrefix = "sheets:"

// Source is a resolved input location
type Source struct {
	Kind SourceKind
	// Location is an absolute file path, or the spreadsheet ID for sheets
	Location string
	// Range is the A1 range (sheets) or sheet name (xlsx, optional)
	Range string
}

// Identity is the cache key of the source
func (s Source) Identity() string {
	switch s.Kind {
	case SourceSheets:
		return SheetsPrefix + s.Location + "/" + s.Range
	case SourceXLSX:
		if s.Range != "" {
			return s.Location + "#" + s.Range
		}
	}
	return s.Location
}

func (s Source) String() string {
	return s.Identity()
}

// ParseSource resolves a raw source string. File paths are made absolute so
// that the same file reached through different relative paths shares one
// cache entry. An xlsx path may name a sheet with a "#Sheet" suffix.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, &DataLoadError{Source: raw, Err: fmt.Errorf("empty source")}
	}

	if strings.HasPrefix(raw, SheetsPrefix) {
		rest := strings.TrimPrefix(raw, SheetsPrefix)
		id, rng, ok := strings.Cut(rest, "/")
		if !ok || id == "" || rng == "" {
			return Source{}, loadError(raw, 0, "", "sheets source must be sheets:<spreadsheetID>/<range>")
		}
		return Source{Kind: SourceSheets, Location: id, Range: rng}, nil
	}

	path, sheet, _ := strings.Cut(raw, "#")
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, &DataLoadError{Source: raw, Err: err}
	}

	switch strings.ToLower(filepath.Ext(abs)) {
	case ".xlsx", ".xlsm":
		return Source{Kind: SourceXLSX, Location: abs, Range: sheet}, nil
	case ".csv", ".txt", "":
		if sheet != "" {
			return Source{}, loadError(raw, 0, "", "sheet suffix is only valid for workbooks")
		}
		return Source{Kind: SourceCSV, Location: abs}, nil
	default:
		return Source{}, loadError(raw, 0, "", "unsupported file type %q", filepath.Ext(abs))
	}
}

// Reader reads the observation table of a source
type Reader interface {
	Read(ctx context.Context, src Source) (*Table, error)
}

// ReaderFunc adapts a function to Reader
type ReaderFunc func(ctx context.Context, src Source) (*Table, error)

func (f ReaderFunc) Read(ctx context.Context, src Source) (*Table, error) {
	return f(ctx, src)
}

// SourceReader dispatches to the file or Sheets reader by source kind
type SourceReader struct {
	logger *slog.Logger
	sheets Reader
}

// NewSourceReader creates a reader for csv, xlsx and Google Sheets sources
func NewSourceReader(logger *slog.Logger, sheetsCfg SheetsConfig) *SourceReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceReader{
		logger: logger,
		sheets: NewSheetsReader(sheetsCfg, logger),
	}
}

// Read implements Reader
func (r *SourceReader) Read(ctx context.Context, src Source) (*Table, error) {
	start := time.Now()
	var (
		table *Table
		err   error
	)

	switch src.Kind {
	case SourceCSV:
		table, err = readCSVFile(src.Location)
	case SourceXLSX:
		table, err = ParseXLSX(src.Location, src.Range)
	case SourceSheets:
		table, err = r.sheets.Read(ctx, src)
	default:
		err = loadError(src.Identity(), 0, "", "unknown source kind %q", src.Kind)
	}
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "source read",
		slog.String("source", src.Identity()),
		slog.String("kind", string(src.Kind)),
		slog.Int("rows", len(table.Rows)),
		slog.Duration("duration", time.Since(start)))
	return table, nil
}

func readCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	defer f.Close()
	return ParseCSV(f, path)
}

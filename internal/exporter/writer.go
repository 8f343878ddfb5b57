package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/jgtann/gdp-dashboard/internal/errors"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// Writer encodes change summaries in one format
type Writer interface {
	Write(out io.Writer, summaries []domain.GroupSummary) error
	ContentType() string
	Extension() string
}

// For returns the writer for format
func For(format Format) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(), nil
	case FormatJSON:
		return NewJSONWriter(), nil
	case FormatXLSX:
		return NewXLSXWriter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile exports summaries to path, creating parent directories
func WriteFile(path string, format Format, summaries []domain.GroupSummary) error {
	w, err := For(format)
	if err != nil {
		return err
	}

	slog.Info("writing export file",
		slog.String("file_path", path),
		slog.String("format", string(format)),
		slog.Int("groups", len(summaries)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create export directory", err).WithContext("path", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("create export file", err).WithContext("path", path)
	}
	if err := w.Write(file, summaries); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// FileName suggests a download name for format
func FileName(base string, format Format) string {
	w, err := For(format)
	if err != nil {
		return base
	}
	return base + w.Extension()
}

package dataprocessing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// Sentinel errors matched with errors.Is
var (
	ErrDataLoad         = errors.New("data load failed")
	ErrMissingData      = errors.New("missing data")
	ErrUnknownSelection = errors.New("unknown selection value")
)

// DataLoadError reports an unreadable or malformed input table.
// Row is the 1-based line of the offending row (the header is row 1), or 0
// when the failure is not tied to a row.
type DataLoadError struct {
	Source string
	Row    int
	Column string
	Err    error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	b.WriteString("load ")
	b.WriteString(e.Source)
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %s", e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

func loadError(source string, row int, column string, format string, args ...any) *DataLoadError {
	return &DataLoadError{Source: source, Row: row, Column: column, Err: fmt.Errorf(format, args...)}
}

// MissingDataError reports a (group, measure) pair without a row for Day
type MissingDataError struct {
	Group   string
	Measure string
	Day     domain.Day
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no %s value for measure %q in group %q", e.Day, e.Measure, e.Group)
}

func (e *MissingDataError) Is(target error) bool { return target == ErrMissingData }

// UnknownSelectionError reports selection values absent from the dataset
type UnknownSelectionError struct {
	Dimension string
	Values    []string
}

func (e *UnknownSelectionError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Dimension, strings.Join(e.Values, ", "))
}

func (e *UnknownSelectionError) Is(target error) bool { return target == ErrUnknownSelection }

// IsDataLoad reports whether err is a load failure
func IsDataLoad(err error) bool {
	return errors.Is(err, ErrDataLoad)
}

// IsMissingData reports whether err is a missing pair
func IsMissingData(err error) bool {
	return errors.Is(err, ErrMissingData)
}

// IsUnknownSelection reports whether err names values absent from a dataset
func IsUnknownSelection(err error) bool {
	return errors.Is(err, ErrUnknownSelection)
}

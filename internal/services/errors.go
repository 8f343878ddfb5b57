package services

import "errors"

var (
	// ErrSourceNotFound is returned for a source name that is not a
	// discovered file of the data directory
	ErrSourceNotFound = errors.New("source not found")
	// ErrUnsupportedFormat is returned for an unknown export format
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNoDefaultSource is returned when no source is configured and the
	// data directory holds none
	ErrNoDefaultSource = errors.New("no default source configured")
)

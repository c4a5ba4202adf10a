package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	// ErrNoValidData means no row of the input produced a sample.
	ErrNoValidData = errors.New("no valid data found in CSV file")
	// ErrReadFailure means the underlying reader failed before parsing.
	ErrReadFailure = errors.New("failed to read file")
)

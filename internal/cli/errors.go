package cli

import "errors"

var (
	// ErrUsage marks invalid flag or argument combinations.
	ErrUsage = errors.New("usage error")
	// ErrPartialFailure is returned when some inputs of a batch failed.
	ErrPartialFailure = errors.New("some inputs failed")
)

package seed

import "errors"

var (
	// ErrInvalidConfig is returned for unusable generation parameters.
	ErrInvalidConfig = errors.New("invalid seed config")
	// ErrWriteFailure wraps filesystem errors from WriteDir.
	ErrWriteFailure = errors.New("seed write failed")
)

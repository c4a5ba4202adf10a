package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrMissingDomain = errors.New("Domain parameter is required") //nolint:staticcheck // matches the /api/ranks contract
	ErrMissingFile   = errors.New("missing file field")
	ErrInvalidLimit  = errors.New("invalid limit")
)

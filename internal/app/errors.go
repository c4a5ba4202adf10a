package service

import "errors"

// Sentinel errors returned by Service.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrTooFewDomains  = errors.New("select at least two domains to compare")
	ErrTooManyDomains = errors.New("too many domains to compare")
	ErrNoData         = errors.New("No data found for the requested domains") //nolint:staticcheck // shown to users verbatim
	ErrNoDataInRange  = errors.New("no data in the selected date range")
	ErrUnknownDomain  = errors.New("domain not found")
	ErrEmptyUpload    = errors.New("upload has no content")
)

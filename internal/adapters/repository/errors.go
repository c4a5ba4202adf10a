package repository

import "errors"

// Sentinel errors for the sample store and its blob backends.
var (
	// ErrPersistFailure wraps a failed write of the whole store. The
	// in-memory state has already changed when it is returned.
	ErrPersistFailure = errors.New("failed to persist domain data")
	// ErrBlobNotFound is returned by Blob.Load when nothing was saved yet.
	ErrBlobNotFound = errors.New("stored domain data not found")
	// ErrUnknownBackend is returned by NewBlob for an unsupported backend.
	ErrUnknownBackend = errors.New("unknown store backend")
)

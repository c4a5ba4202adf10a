package rankapi

import "errors"

// ErrReadFailure wraps every failure to obtain samples from the rank API.
var ErrReadFailure = errors.New("failed to read ranks")

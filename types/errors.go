package types

import "errors"

// Sentinel errors for the request path. Handlers map these onto HTTP statuses;
// provider failures never appear here because they degrade instead of failing.
var (
	ErrInvalidBounds = errors.New("southwest corner must not exceed northeast corner")
	ErrMissingCenter = errors.New("query needs an explicit center or valid bounds")
	ErrNotFound      = errors.New("record not found")
)

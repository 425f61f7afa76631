package repository

import "errors"

// Sentinel errors for result stores.
var (
	ErrNotFound      = errors.New("job record not found")
	ErrInvalidLimit  = errors.New("invalid list limit")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrClosed        = errors.New("store closed")
)

package pool

import "errors"

// Sentinel errors for pool files and generation.
var (
	ErrUnknownFormat    = errors.New("unknown pool file format")
	ErrUnknownDirection = errors.New("unknown direction")
)

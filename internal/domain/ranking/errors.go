package ranking

import "errors"

var (
	// ErrInvalidWeightConfig is returned before any scoring when the weights
	// fail validation. It wraps the underlying scoring.ConfigError.
	ErrInvalidWeightConfig = errors.New("invalid weight config")
	// ErrInvalidSubject is returned when the record everything is scored
	// against is malformed.
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrCancelled wraps the context error when a batch is abandoned.
	ErrCancelled = errors.New("ranking cancelled")
)

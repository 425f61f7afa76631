package service

import "errors"

// Sentinel errors returned by Service operations.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrInvalidRequest = errors.New("invalid request")
	ErrPoolTooLarge   = errors.New("pool too large")
	ErrBackpressure   = errors.New("job queue full")
	ErrJobNotFound    = errors.New("job not found")
)

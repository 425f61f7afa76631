package repository

import "time"

type settings struct {
	busyTimeout time.Duration
	now         func() time.Time
}

func defaultSettings() settings {
	return settings{busyTimeout: 5 * time.Second, now: time.Now}
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithBusyTimeout sets how long sqlite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithClock overrides the time source used to stamp UpdatedAt when a record
// arrives without one.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

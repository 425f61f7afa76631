package scoring

import (
	"errors"
	"fmt"
)

// ErrConfig is the sentinel every weight validation failure unwraps to.
var ErrConfig = errors.New("invalid weight config")

// ConfigError describes why a weight configuration was rejected.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfig.Error(), e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrConfig) match.
func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

package layout

import (
	"errors"
	"fmt"
)

// ErrConfiguration is returned when a clustering parameter is out of range.
// It signals a caller bug rather than bad input data.
var ErrConfiguration = errors.New("invalid clustering configuration")

// ConfigError identifies the offending parameter.
type ConfigError struct {
	Strategy string
	Param    string
	Value    float64
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s strategy: %s = %g", ErrConfiguration, e.Strategy, e.Param, e.Value)
}

// Unwrap returns ErrConfiguration so callers can use errors.Is.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

package model

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned when a detection's polygon or rectangle
// cannot describe a region: odd coordinate count, fewer than two points,
// non-finite values or a negative rectangle size.
var ErrInvalidGeometry = errors.New("invalid geometry")

// GeometryError reports which detection was rejected and why.
type GeometryError struct {
	// Index is the detection's position in the backend's native order.
	Index int

	// Reason describes the defect.
	Reason string
}

// Error implements the error interface.
func (e *GeometryError) Error() string {
	return fmt.Sprintf("detection %d: %s: %s", e.Index, ErrInvalidGeometry, e.Reason)
}

// Unwrap returns ErrInvalidGeometry so callers can use errors.Is.
func (e *GeometryError) Unwrap() error {
	return ErrInvalidGeometry
}

func invalidGeometry(index int, format string, args ...interface{}) error {
	return &GeometryError{Index: index, Reason: fmt.Sprintf(format, args...)}
}

package interp

import "errors"

var (
	// ErrShapeMismatch is returned when frames, flow fields or masks of
	// one interpolation do not share the same size.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDegenerateHoleField is returned when hole filling cannot make
	// progress because no valid vector can reach the remaining holes.
	ErrDegenerateHoleField = errors.New("degenerate hole field")

	// ErrInvalidTime is returned for a time outside [0,1] or NaN.
	ErrInvalidTime = errors.New("interpolation time must be within [0,1]")
)

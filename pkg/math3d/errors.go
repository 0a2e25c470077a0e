package math3d

import "errors"

var (
	// ErrZeroLength is returned when a zero-length vector cannot be normalized.
	ErrZeroLength = errors.New("math3d: zero-length vector")

	// ErrDegenerateMatrix is returned by the transform builders when the
	// requested matrix would be singular or ill-conditioned.
	ErrDegenerateMatrix = errors.New("math3d: degenerate matrix")
)

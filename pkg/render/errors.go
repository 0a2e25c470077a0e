package render

import "errors"

var (
	// ErrPointBehindEye marks a vertex with clip-space w <= 0. The vertex
	// has no screen position and its triangles are skipped.
	ErrPointBehindEye = errors.New("render: point behind eye")

	// ErrOutsideDepthRange marks a vertex rejected by the depth range test.
	ErrOutsideDepthRange = errors.New("render: point outside depth range")

	ErrInvalidCamera   = errors.New("render: invalid camera")
	ErrInvalidViewport = errors.New("render: invalid viewport")
	ErrNilMesh         = errors.New("render: nil mesh")
)

package render

import (
	"image"
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
)

// ScreenPoint is a projected vertex: pixel coordinates with the origin at the
// top-left corner and y growing downward, plus normalized depth.
type ScreenPoint struct {
	X, Y  float64
	Depth float64
}

// Vec2 returns the screen position.
func (p ScreenPoint) Vec2() math3d.Vec2 {
	return math3d.V2(p.X, p.Y)
}

// Pixel returns the pixel containing the point.
func (p ScreenPoint) Pixel() image.Point {
	return pixelOf(p.Vec2())
}

// Project transforms a model-space point by mvp and maps it to pixel
// coordinates in a width×height viewport.
//
// A point with clip-space w <= 0 returns ErrPointBehindEye; it has no
// meaningful screen position and must be skipped, never drawn. When
// opts.Depth is enabled a depth outside the range returns
// ErrOutsideDepthRange. With opts.ClampToViewport the result is pinned to
// [0, width-1] × [0, height-1].
func Project(v math3d.Vec3, mvp math3d.Mat4, width, height int, opts Options) (ScreenPoint, error) {
	if width <= 0 || height <= 0 {
		return ScreenPoint{}, ErrInvalidViewport
	}
	return project(v, mvp, float64(width), float64(height), opts)
}

func project(v math3d.Vec3, mvp math3d.Mat4, width, height float64, opts Options) (ScreenPoint, error) {
	clip := mvp.MulVec4(math3d.V4FromV3(v, 1))
	ndc, ok := clip.PerspectiveDivide()
	if !ok || !finiteVec3(ndc) {
		return ScreenPoint{}, ErrPointBehindEye
	}
	if !opts.Depth.Contains(ndc.Z) {
		return ScreenPoint{}, ErrOutsideDepthRange
	}

	p := viewport(ndc, width, height)
	if opts.ClampToViewport {
		p.X = clamp(p.X, 0, width-1)
		p.Y = clamp(p.Y, 0, height-1)
	}
	return p, nil
}

// viewport maps normalized device coordinates to pixels.
func viewport(ndc math3d.Vec3, width, height float64) ScreenPoint {
	return ScreenPoint{
		X:     (ndc.X + 1) * 0.5 * width,
		Y:     (1 - ndc.Y) * 0.5 * height, // screen y grows downward
		Depth: ndc.Z,
	}
}

func finiteVec3(v math3d.Vec3) bool {
	for _, f := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

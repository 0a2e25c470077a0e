package render

import "github.com/taigrr/softrender/pkg/math3d"

// SignedArea returns (b-a) × (c-a), twice the signed area of the triangle.
// On a y-down screen a positive value means the vertices run clockwise as
// seen by the viewer.
func SignedArea(a, b, c math3d.Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// CanonicalWinding reorders a triangle so its signed area is non-negative,
// swapping the second and third vertex when needed. Applying it twice gives
// the same result as applying it once.
func CanonicalWinding(a, b, c math3d.Vec2) (math3d.Vec2, math3d.Vec2, math3d.Vec2) {
	if SignedArea(a, b, c) < 0 {
		return a, c, b
	}
	return a, b, c
}

// IsFrontFacing reports whether a screen-space triangle faces the viewer
// under the given front-face convention. Degenerate triangles face nobody.
func IsFrontFacing(a, b, c math3d.Vec2, front Winding) bool {
	area := SignedArea(a, b, c)
	if front == FrontClockwise {
		return area > 0
	}
	return area < 0
}

// FaceNormal returns the unit normal on the front side of a world-space
// triangle. For FrontClockwise it is normalize((v1-v0) × (v2-v0)); the
// counter-clockwise convention uses the opposite order. A degenerate
// triangle has a zero normal.
func FaceNormal(v0, v1, v2 math3d.Vec3, front Winding) math3d.Vec3 {
	e1, e2 := v1.Sub(v0), v2.Sub(v0)
	if front == FrontClockwise {
		return e1.Cross(e2).Normalize()
	}
	return e2.Cross(e1).Normalize()
}

// IsBackface reports whether a world-space triangle faces away from a
// camera at cameraPos. The triangle is culled when the front normal and the
// direction from the camera to v0 satisfy dot(normal, viewDir) >= 0, which
// also culls edge-on and degenerate triangles.
func IsBackface(v0, v1, v2, cameraPos math3d.Vec3, front Winding) bool {
	return IsBackfaceDir(v0, v1, v2, v0.Sub(cameraPos), front)
}

// IsBackfaceDir is IsBackface for a fixed view direction, as seen by an
// orthographic camera. viewDir need not be normalized.
func IsBackfaceDir(v0, v1, v2, viewDir math3d.Vec3, front Winding) bool {
	normal := FaceNormal(v0, v1, v2, front)
	if normal == math3d.Zero3() {
		return true
	}
	return normal.Dot(viewDir.Normalize()) >= 0
}

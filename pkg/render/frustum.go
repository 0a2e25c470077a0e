package render

import (
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
)

// Plane represents a plane using the equation Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the 6 planes of a view volume with normals pointing inward.
type Frustum struct {
	Planes [6]Plane
}

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the planes of a view-projection (or
// model-view-projection) matrix with the Gribb/Hartmann method. Clip-space
// depth runs from 0 at the near plane to w at the far plane, so the near
// plane is row 2 on its own rather than row 3 + row 2.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	// For column-major m, row i element j is m[i + j*4].
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	r0, d0 := row(0)
	r1, d1 := row(1)
	r2, d2 := row(2)
	r3, d3 := row(3)

	var f Frustum
	f.Planes[FrustumLeft] = Plane{Normal: r3.Add(r0), D: d3 + d0}
	f.Planes[FrustumRight] = Plane{Normal: r3.Sub(r0), D: d3 - d0}
	f.Planes[FrustumBottom] = Plane{Normal: r3.Add(r1), D: d3 + d1}
	f.Planes[FrustumTop] = Plane{Normal: r3.Sub(r1), D: d3 - d1}
	f.Planes[FrustumNear] = Plane{Normal: r2, D: d2}
	f.Planes[FrustumFar] = Plane{Normal: r3.Sub(r2), D: d3 - d2}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// Frustum returns the camera's world-space view frustum.
func (c Camera) Frustum() (Frustum, error) {
	vp, err := c.ViewProjectionMatrix()
	if err != nil {
		return Frustum{}, err
	}
	return NewFrustumFromMatrix(vp), nil
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(lo, hi math3d.Vec3) AABB {
	return AABB{Min: lo, Max: hi}
}

// MeshAABB returns the model-space bounds of a mesh.
func MeshAABB(m *models.Mesh) AABB {
	lo, hi := m.Bounds()
	return AABB{Min: lo, Max: hi}
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns the AABB enclosing all 8 corners of b after
// transformation by m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	first := true
	var out AABB
	for i := range 8 {
		corner := b.Min
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		p := m.MulVec3(corner)
		if first {
			out = AABB{Min: p, Max: p}
			first = false
			continue
		}
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// IntersectAABB reports whether any part of the box may be inside the
// frustum. It is conservative: a box near a frustum corner can pass
// although it is outside, but a visible box never fails.
func (f Frustum) IntersectAABB(box AABB) bool {
	for i := range f.Planes {
		plane := f.Planes[i]

		// The corner furthest along the plane normal
		pVertex := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(pVertex) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere tests if a sphere intersects the frustum. A zero radius
// tests a single point.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

package render

import (
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
)

// Wireframe draws world-space debug geometry (axes, grids, bounds) over a
// rendered frame. Lines are clipped against the near and far planes, so a
// grid that passes behind the camera still draws its visible part.
type Wireframe struct {
	viewProj math3d.Mat4
	frustum  Frustum
	fb       *Framebuffer
	line     LineAlgorithm
}

// NewWireframe creates a wireframe drawer for a camera and target buffer.
func NewWireframe(cam Camera, fb *Framebuffer, line LineAlgorithm) (*Wireframe, error) {
	vp, err := cam.ViewProjectionMatrix()
	if err != nil {
		return nil, err
	}
	frustum, err := cam.Frustum()
	if err != nil {
		return nil, err
	}
	return &Wireframe{viewProj: vp, frustum: frustum, fb: fb, line: line}, nil
}

// DrawLine3D draws a line in world space. It reports whether any part of the
// line survived depth clipping.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) bool {
	c1 := w.viewProj.MulVec4(math3d.V4FromV3(p1, 1))
	c2 := w.viewProj.MulVec4(math3d.V4FromV3(p2, 1))

	// Near plane: z >= 0
	var ok bool
	if c1, c2, ok = clipHomogeneous(c1, c2, c1.Z, c2.Z); !ok {
		return false
	}
	// Far plane: z <= w
	if c1, c2, ok = clipHomogeneous(c1, c2, c1.W-c1.Z, c2.W-c2.Z); !ok {
		return false
	}

	n1, ok1 := c1.PerspectiveDivide()
	n2, ok2 := c2.PerspectiveDivide()
	if !ok1 || !ok2 {
		return false
	}
	width, height := float64(w.fb.Width), float64(w.fb.Height)
	a := viewport(n1, width, height)
	b := viewport(n2, width, height)
	w.fb.DrawSegment(a.Vec2(), b.Vec2(), color, w.line)
	return true
}

// clipHomogeneous keeps the part of segment a-b where the plane distance
// (da at a, db at b) is non-negative.
func clipHomogeneous(a, b math3d.Vec4, da, db float64) (math3d.Vec4, math3d.Vec4, bool) {
	switch {
	case da < 0 && db < 0:
		return a, b, false
	case da < 0:
		a = lerp4(a, b, da/(da-db))
	case db < 0:
		b = lerp4(b, a, db/(db-da))
	}
	return a, b, true
}

func lerp4(a, b math3d.Vec4, t float64) math3d.Vec4 {
	return a.Add(b.Add(a.Scale(-1)).Scale(t))
}

// DrawBox draws the 12 edges of a box after transforming it by model.
// It reports false, drawing nothing, when the box is outside the view.
func (w *Wireframe) DrawBox(box AABB, model math3d.Mat4, color Color) bool {
	if !w.frustum.IntersectAABB(box.Transform(model)) {
		return false
	}
	var corners [8]math3d.Vec3
	for i := range corners {
		c := box.Min
		if i&1 != 0 {
			c.X = box.Max.X
		}
		if i&2 != 0 {
			c.Y = box.Max.Y
		}
		if i&4 != 0 {
			c.Z = box.Max.Z
		}
		corners[i] = model.MulVec3(c)
	}

	// Corners differing in exactly one bit share an edge
	for i := range corners {
		for bit := 1; bit < 8; bit <<= 1 {
			if j := i | bit; j != i {
				w.DrawLine3D(corners[i], corners[j], color)
			}
		}
	}
	return true
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// DrawGrid draws a grid on the XZ plane at y=0.
func (w *Wireframe) DrawGrid(size, step float64, color Color) {
	if step <= 0 {
		return
	}
	half := size / 2
	for x := -half; x <= half; x += step {
		w.DrawLine3D(math3d.V3(x, 0, -half), math3d.V3(x, 0, half), color)
	}
	for z := -half; z <= half; z += step {
		w.DrawLine3D(math3d.V3(-half, 0, z), math3d.V3(half, 0, z), color)
	}
}

// DrawPoint draws a point as a small 3D cross. Crosses entirely outside the
// view are skipped.
func (w *Wireframe) DrawPoint(pos math3d.Vec3, size float64, color Color) {
	h := size / 2
	if !w.frustum.IntersectsSphere(pos, h) {
		return
	}
	w.DrawLine3D(pos.Sub(math3d.V3(h, 0, 0)), pos.Add(math3d.V3(h, 0, 0)), color)
	w.DrawLine3D(pos.Sub(math3d.V3(0, h, 0)), pos.Add(math3d.V3(0, h, 0)), color)
	w.DrawLine3D(pos.Sub(math3d.V3(0, 0, h)), pos.Add(math3d.V3(0, 0, h)), color)
}

// DrawSceneGuides overlays a ground grid sized to the model's world bounds,
// the axes, the bounds box and a marker at target.
func (w *Wireframe) DrawSceneGuides(bounds AABB, model math3d.Mat4, target math3d.Vec3) {
	world := bounds.Transform(model)
	size := world.Size()
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	if !(extent > 0) || math.IsInf(extent, 0) {
		extent = 1
	}

	// Grid covers the model's footprint around the origin in whole steps
	step := math.Pow(10, math.Floor(math.Log10(extent)))
	c := world.Center()
	reach := math.Max(math.Abs(c.X), math.Abs(c.Z)) + extent
	w.DrawGrid(2*math.Ceil(reach/step)*step, step, ColorGray)

	w.DrawAxes(extent)
	w.DrawBox(bounds, model, ColorCyan)
	w.DrawPoint(target, extent/10, ColorYellow)
}

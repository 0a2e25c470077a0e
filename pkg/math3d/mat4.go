package math3d

import (
	"fmt"
	"math"
)

// Mat4 is a 4x4 matrix stored in column-major order and applied to column
// vectors.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// For a transform matrix:
// | Xx Yx Zx Tx |   X,Y,Z = basis vectors (rotation/scale)
// | Xy Yy Zy Ty |   T = translation
// | Xz Yz Zz Tz |
// | 0  0  0  1  |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Rotate creates a rotation matrix around an arbitrary axis using
// Rodrigues' formula. angle is in radians. The axis is normalized first;
// a zero axis yields the identity.
func Rotate(axis Vec3, angle float64) Mat4 {
	axis, err := axis.NormalizeChecked()
	if err != nil {
		return Identity()
	}
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// RotateAxisDegrees creates a rotation of degrees around axis.
func RotateAxisDegrees(axis Vec3, degrees float64) Mat4 {
	return Rotate(axis, degrees*math.Pi/180)
}

// LookAt creates a view matrix for an eye looking towards target.
//
// The basis is forward = normalize(target-eye), right = normalize(up ×
// forward), trueUp = forward × right, so view space is left-handed with the
// camera looking down +Z. The result translates by -eye first and then
// rotates by the transpose of the basis.
func LookAt(eye, target, up Vec3) (Mat4, error) {
	f, err := target.Sub(eye).NormalizeChecked()
	if err != nil {
		return Identity(), fmt.Errorf("look at: eye equals target: %w", ErrDegenerateMatrix)
	}
	r, err := up.Cross(f).NormalizeChecked()
	if err != nil {
		return Identity(), fmt.Errorf("look at: up is parallel to view direction: %w", ErrDegenerateMatrix)
	}
	u := f.Cross(r)

	basis := Mat4{
		r.X, r.Y, r.Z, 0,
		u.X, u.Y, u.Z, 0,
		f.X, f.Y, f.Z, 0,
		0, 0, 0, 1,
	}
	return basis.Transpose().Mul(Translate(eye.Negate())), nil
}

// Perspective creates a perspective projection matrix.
// fovy is the full vertical field of view in radians and must lie in
// (0, π). aspect is width/height. Depth in [near, far] maps to [0, 1] and
// the clip-space w equals the view-space z.
func Perspective(fovy, aspect, near, far float64) (Mat4, error) {
	switch {
	case !(fovy > 0 && fovy < math.Pi):
		return Mat4{}, fmt.Errorf("perspective: fov %v out of range: %w", fovy, ErrDegenerateMatrix)
	case !(aspect > 0) || math.IsInf(aspect, 0):
		return Mat4{}, fmt.Errorf("perspective: aspect %v: %w", aspect, ErrDegenerateMatrix)
	case !(near > 0) || !(far > near) || math.IsInf(far, 0):
		return Mat4{}, fmt.Errorf("perspective: clip planes %v..%v: %w", near, far, ErrDegenerateMatrix)
	}

	f := 1.0 / math.Tan(fovy/2)
	fn := far / (far - near)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, fn, 1,
		0, 0, -near * fn, 0,
	}, nil
}

// Orthographic creates an orthographic projection matrix.
// The view volume maps to x, y in [-1, 1] and z in [0, 1]; w stays 1.
func Orthographic(left, right, bottom, top, near, far float64) (Mat4, error) {
	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)
	fn := 1.0 / (far - near)
	if !finite(rl) || !finite(tb) || !(far > near) || !finite(fn) {
		return Mat4{}, fmt.Errorf("orthographic: empty view volume: %w", ErrDegenerateMatrix)
	}

	return Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, fn, 0,
		-(right + left) * rl, -(top + bottom) * tb, -near * fn, 1,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Mul multiplies two matrices: a * b.
// Applied to a vector, b acts first.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1).
func (m Mat4) MulVec3(v Vec3) Vec3 {
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]) / w,
		(m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]) / w,
		(m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]) / w,
	}
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// IsFinite reports whether every element is neither NaN nor infinite.
func (m Mat4) IsFinite() bool {
	for _, v := range m {
		if !finite(v) {
			return false
		}
	}
	return true
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row+col*4] = val
}

// Package models provides triangle meshes for the software renderer.
package models

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/taigrr/softrender/pkg/math3d"
)

var (
	// ErrIndexOutOfRange is returned when a triangle names a vertex the mesh
	// does not have.
	ErrIndexOutOfRange = errors.New("models: vertex index out of range")

	// ErrIndexCount is returned when the index list is not a whole number of
	// triangles.
	ErrIndexCount = errors.New("models: index count is not a multiple of 3")

	// ErrFaceColorCount is returned when there is not exactly one color per
	// triangle.
	ErrFaceColorCount = errors.New("models: face color count does not match triangle count")
)

// Mesh is an indexed triangle list with one flat color per triangle.
//
// Indices are grouped in triples, each naming one triangle in author-supplied
// winding. FaceColors[i] colors the triangle formed by Indices[3i:3i+3].
// Meshes built with NewMesh are valid; code that assembles a Mesh by hand
// should call Validate before rendering it.
type Mesh struct {
	Name       string
	Vertices   []math3d.Vec3
	Indices    []int
	FaceColors []color.RGBA
}

// NewMesh creates a mesh and validates it.
// The slices are used as given, not copied.
func NewMesh(name string, vertices []math3d.Vec3, indices []int, faceColors []color.RGBA) (*Mesh, error) {
	m := &Mesh{
		Name:       name,
		Vertices:   vertices,
		Indices:    indices,
		FaceColors: faceColors,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the mesh invariants.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: %d indices: %w", m.Name, len(m.Indices), ErrIndexCount)
	}
	if len(m.FaceColors) != len(m.Indices)/3 {
		return fmt.Errorf("mesh %q: %d colors for %d triangles: %w",
			m.Name, len(m.FaceColors), len(m.Indices)/3, ErrFaceColorCount)
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Vertices) {
			return fmt.Errorf("mesh %q: triangle %d references vertex %d of %d: %w",
				m.Name, i/3, idx, len(m.Vertices), ErrIndexOutOfRange)
		}
	}
	return nil
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Face returns the vertex indices of triangle i.
func (m *Mesh) Face(i int) [3]int {
	return [3]int{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// FaceColor returns the color of triangle i.
func (m *Mesh) FaceColor(i int) color.RGBA {
	return m.FaceColors[i]
}

// Bounds returns the axis-aligned bounding box of the vertices.
// An empty mesh has zero bounds.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	if len(m.Vertices) == 0 {
		return math3d.Zero3(), math3d.Zero3()
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	min, max := m.Bounds()
	return min.Add(max).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	min, max := m.Bounds()
	return max.Sub(min)
}

// Transform applies a transformation matrix to all vertices in place.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i] = mat.MulVec3(m.Vertices[i])
	}
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:       m.Name,
		Vertices:   make([]math3d.Vec3, len(m.Vertices)),
		Indices:    make([]int, len(m.Indices)),
		FaceColors: make([]color.RGBA, len(m.FaceColors)),
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Indices, m.Indices)
	copy(clone.FaceColors, m.FaceColors)
	return clone
}

// Normalized returns a copy of the mesh centered on the origin with its
// largest dimension scaled to size. A mesh with no extent is only centered.
func (m *Mesh) Normalized(size float64) *Mesh {
	out := m.Clone()
	ext := m.Size()
	scale := 1.0
	if largest := max(ext.X, ext.Y, ext.Z); largest > 0 && size > 0 {
		scale = size / largest
	}
	out.Transform(math3d.ScaleUniform(scale).Mul(math3d.Translate(m.Center().Scale(-1))))
	return out
}

// SetColor paints every triangle with c.
func (m *Mesh) SetColor(c color.RGBA) {
	for i := range m.FaceColors {
		m.FaceColors[i] = c
	}
}

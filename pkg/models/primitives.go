package models

import (
	"image/color"

	"github.com/taigrr/softrender/pkg/math3d"
)

// cubeIndices lists the 12 triangles of a cube whose vertex i has
// x = bit 0, y = bit 1, z = bit 2 of i (set bit = +half).
// Front faces are counter-clockwise seen from outside, two triangles per
// face in the order -Z, +Z, -X, +X, -Y, +Y.
var cubeIndices = []int{
	0, 1, 2, 1, 3, 2, // -Z
	4, 6, 5, 5, 6, 7, // +Z
	0, 2, 4, 2, 6, 4, // -X
	1, 5, 3, 3, 5, 7, // +X
	0, 4, 1, 1, 4, 5, // -Y
	2, 3, 6, 3, 7, 6, // +Y
}

// DefaultFaceColors are the per-face colors NewCube uses when none are
// given, in face order -Z, +Z, -X, +X, -Y, +Y.
var DefaultFaceColors = []color.RGBA{
	{220, 60, 60, 255},
	{60, 180, 75, 255},
	{70, 110, 230, 255},
	{240, 200, 50, 255},
	{160, 80, 200, 255},
	{70, 200, 210, 255},
}

// NewCube creates an axis-aligned cube of edge length size centered on the
// origin. Colors are assigned per face (two triangles each) and cycle when
// fewer than six are given.
func NewCube(size float64, colors ...color.RGBA) *Mesh {
	if len(colors) == 0 {
		colors = DefaultFaceColors
	}
	half := size / 2

	vertices := make([]math3d.Vec3, 8)
	for i := range vertices {
		v := math3d.V3(-half, -half, -half)
		if i&1 != 0 {
			v.X = half
		}
		if i&2 != 0 {
			v.Y = half
		}
		if i&4 != 0 {
			v.Z = half
		}
		vertices[i] = v
	}

	indices := make([]int, len(cubeIndices))
	copy(indices, cubeIndices)

	faceColors := make([]color.RGBA, len(indices)/3)
	for i := range faceColors {
		faceColors[i] = colors[(i/2)%len(colors)]
	}

	return &Mesh{
		Name:       "cube",
		Vertices:   vertices,
		Indices:    indices,
		FaceColors: faceColors,
	}
}

// NewQuad creates a single square in the z=0 plane facing -Z (toward a
// camera on the negative Z axis), split along its diagonal.
func NewQuad(size float64, c color.RGBA) *Mesh {
	half := size / 2
	return &Mesh{
		Name: "quad",
		Vertices: []math3d.Vec3{
			{X: -half, Y: -half},
			{X: half, Y: -half},
			{X: -half, Y: half},
			{X: half, Y: half},
		},
		Indices:    []int{0, 1, 2, 1, 3, 2},
		FaceColors: []color.RGBA{c, c},
	}
}

package models

import (
	"errors"
	"image/color"
	"testing"

	"github.com/taigrr/softrender/pkg/math3d"
)

var red = color.RGBA{255, 0, 0, 255}

func triangleVertices() []math3d.Vec3 {
	return []math3d.Vec3{
		math3d.V3(0, 0, 0),
		math3d.V3(1, 0, 0),
		math3d.V3(0, 1, 0),
	}
}

func TestNewMeshValid(t *testing.T) {
	m, err := NewMesh("tri", triangleVertices(), []int{0, 1, 2}, []color.RGBA{red})
	if err != nil {
		t.Fatalf("NewMesh error: %v", err)
	}
	if m.TriangleCount() != 1 || m.VertexCount() != 3 {
		t.Errorf("counts = %d triangles, %d vertices; want 1, 3", m.TriangleCount(), m.VertexCount())
	}
	if m.Face(0) != [3]int{0, 1, 2} {
		t.Errorf("Face(0) = %v, want [0 1 2]", m.Face(0))
	}
	if m.FaceColor(0) != red {
		t.Errorf("FaceColor(0) = %v, want red", m.FaceColor(0))
	}
}

func TestNewMeshInvalid(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		colors  []color.RGBA
		want    error
	}{
		{"index past end", []int{0, 1, 3}, []color.RGBA{red}, ErrIndexOutOfRange},
		{"negative index", []int{0, -1, 2}, []color.RGBA{red}, ErrIndexOutOfRange},
		{"partial triangle", []int{0, 1, 2, 0}, []color.RGBA{red}, ErrIndexCount},
		{"missing color", []int{0, 1, 2}, nil, ErrFaceColorCount},
		{"extra color", []int{0, 1, 2}, []color.RGBA{red, red}, ErrFaceColorCount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewMesh("bad", triangleVertices(), tc.indices, tc.colors)
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
			if m != nil {
				t.Error("invalid mesh should not be returned")
			}
		})
	}
}

func TestNewCube(t *testing.T) {
	cube := NewCube(2)
	if err := cube.Validate(); err != nil {
		t.Fatalf("cube is invalid: %v", err)
	}
	if cube.VertexCount() != 8 || cube.TriangleCount() != 12 {
		t.Errorf("cube has %d vertices, %d triangles; want 8, 12", cube.VertexCount(), cube.TriangleCount())
	}

	min, max := cube.Bounds()
	if min != math3d.V3(-1, -1, -1) || max != math3d.V3(1, 1, 1) {
		t.Errorf("bounds = %v..%v, want ±1", min, max)
	}

	// Two triangles per face share a color.
	for i := 0; i < cube.TriangleCount(); i += 2 {
		if cube.FaceColor(i) != cube.FaceColor(i+1) {
			t.Errorf("triangles %d and %d of one face differ in color", i, i+1)
		}
	}
}

func TestNewCubeOutwardNormals(t *testing.T) {
	// With counter-clockwise front faces in the left-handed world, the
	// outward normal is (v2-v0) × (v1-v0).
	cube := NewCube(2)
	for i := range cube.TriangleCount() {
		f := cube.Face(i)
		v0, v1, v2 := cube.Vertices[f[0]], cube.Vertices[f[1]], cube.Vertices[f[2]]
		normal := v2.Sub(v0).Cross(v1.Sub(v0)).Normalize()
		centroid := v0.Add(v1).Add(v2).Scale(1.0 / 3)
		if normal.Dot(centroid) <= 0 {
			t.Errorf("triangle %d normal %v points inward", i, normal)
		}
	}
}

func TestNewCubeColorCycle(t *testing.T) {
	blue := color.RGBA{0, 0, 255, 255}
	cube := NewCube(1, red, blue)
	want := []color.RGBA{red, red, blue, blue, red, red}
	for i, c := range want {
		if cube.FaceColor(i) != c {
			t.Errorf("FaceColor(%d) = %v, want %v", i, cube.FaceColor(i), c)
		}
	}
}

func TestMeshCloneIsIndependent(t *testing.T) {
	cube := NewCube(2)
	clone := cube.Clone()

	clone.Vertices[0] = math3d.V3(9, 9, 9)
	clone.Indices[0] = 7
	clone.SetColor(red)

	if cube.Vertices[0] == clone.Vertices[0] {
		t.Error("Clone should copy vertices")
	}
	if cube.Indices[0] == 7 {
		t.Error("Clone should copy indices")
	}
	if cube.FaceColor(0) == red {
		t.Error("Clone should copy face colors")
	}
}

func TestMeshTransform(t *testing.T) {
	cube := NewCube(2)
	cube.Transform(math3d.Translate(math3d.V3(0, 0, 5)))
	if c := cube.Center(); !c.ApproxEqual(math3d.V3(0, 0, 5), 1e-12) {
		t.Errorf("center after translate = %v, want (0, 0, 5)", c)
	}
	if s := cube.Size(); !s.ApproxEqual(math3d.V3(2, 2, 2), 1e-12) {
		t.Errorf("size after translate = %v, want (2, 2, 2)", s)
	}
}

func TestMeshNormalized(t *testing.T) {
	tests := []struct {
		name     string
		mesh     *Mesh
		size     float64
		wantSize math3d.Vec3
	}{
		{"offset cube", NewCube(4), 2, math3d.V3(2, 2, 2)},
		{"flat triangle", &Mesh{
			Vertices:   []math3d.Vec3{math3d.V3(10, 0, 0), math3d.V3(14, 0, 0), math3d.V3(10, 2, 0)},
			Indices:    []int{0, 1, 2},
			FaceColors: []color.RGBA{red},
		}, 1, math3d.V3(1, 0.5, 0)},
		{"single point", &Mesh{
			Vertices:   []math3d.Vec3{math3d.V3(3, 3, 3), math3d.V3(3, 3, 3), math3d.V3(3, 3, 3)},
			Indices:    []int{0, 1, 2},
			FaceColors: []color.RGBA{red},
		}, 2, math3d.Zero3()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mesh.Transform(math3d.Translate(math3d.V3(5, -3, 7)))
			before := tt.mesh.Vertices[0]

			got := tt.mesh.Normalized(tt.size)
			if c := got.Center(); !c.ApproxEqual(math3d.Zero3(), 1e-9) {
				t.Errorf("center = %v, want origin", c)
			}
			if s := got.Size(); !s.ApproxEqual(tt.wantSize, 1e-9) {
				t.Errorf("size = %v, want %v", s, tt.wantSize)
			}
			if tt.mesh.Vertices[0] != before {
				t.Error("Normalized modified the source mesh")
			}
		})
	}
}

func TestNewQuadFacesNegativeZ(t *testing.T) {
	q := NewQuad(2, red)
	if err := q.Validate(); err != nil {
		t.Fatalf("quad invalid: %v", err)
	}
	for i := range q.TriangleCount() {
		f := q.Face(i)
		v0, v1, v2 := q.Vertices[f[0]], q.Vertices[f[1]], q.Vertices[f[2]]
		n := v2.Sub(v0).Cross(v1.Sub(v0))
		if n.Z >= 0 {
			t.Errorf("triangle %d normal %v, want -Z", i, n)
		}
	}
}

package render

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
)

// testCamera is the reference view: 10 units in front of the origin on -Z,
// 60° vertical field of view, 4:3 aspect.
func testCamera(t testing.TB) Camera {
	t.Helper()
	cam, err := NewCamera(math3d.V3(0, 0, -10), math3d.Zero3(), math3d.Up(), math.Pi/3, 4.0/3.0, 0.1, 100)
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	return cam
}

func TestProjectCube(t *testing.T) {
	cam := testCamera(t)
	vp, err := cam.ViewProjectionMatrix()
	if err != nil {
		t.Fatal(err)
	}
	cube := models.NewCube(2)

	points := make([]ScreenPoint, len(cube.Vertices))
	for i, v := range cube.Vertices {
		p, err := Project(v, vp, 800, 600, DefaultOptions())
		if err != nil {
			t.Fatalf("vertex %d: %v", i, err)
		}
		if p.X < 0 || p.X >= 800 || p.Y < 0 || p.Y >= 600 {
			t.Errorf("vertex %d projected outside the viewport: %v", i, p)
		}
		if p.Depth < 0 || p.Depth > 1 {
			t.Errorf("vertex %d depth %v outside [0,1]", i, p.Depth)
		}
		points[i] = p
	}

	// Mirrored vertices land symmetrically about the viewport center
	for i := range points {
		if sx := points[i].X + points[i^1].X; math.Abs(sx-800) > 1e-9 {
			t.Errorf("vertices %d and %d: x sum %v, want 800", i, i^1, sx)
		}
		if sy := points[i].Y + points[i^2].Y; math.Abs(sy-600) > 1e-9 {
			t.Errorf("vertices %d and %d: y sum %v, want 600", i, i^2, sy)
		}
	}

	// Vertex 0 is (-1,-1,-1), 9 units from the camera
	f := 1 / math.Tan(math.Pi/6)
	wantX := (1 - f*0.75/9) * 400
	wantY := (1 + f/9) * 300
	if math.Abs(points[0].X-wantX) > 1e-9 || math.Abs(points[0].Y-wantY) > 1e-9 {
		t.Errorf("vertex 0 = (%v, %v), want (%v, %v)", points[0].X, points[0].Y, wantX, wantY)
	}

	// The near face is larger on screen than the far face
	near := points[1].X - points[0].X
	far := points[5].X - points[4].X
	if near <= far {
		t.Errorf("near face width %v should exceed far face width %v", near, far)
	}
}

func TestProjectErrors(t *testing.T) {
	proj, err := math3d.Perspective(math.Pi/2, 1, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	noDepth := DefaultOptions()
	noDepth.Depth.Enabled = false

	tests := []struct {
		name  string
		point math3d.Vec3
		opts  Options
		want  error
	}{
		{"in front", math3d.V3(0, 0, 5), DefaultOptions(), nil},
		{"behind eye", math3d.V3(0, 0, -5), DefaultOptions(), ErrPointBehindEye},
		{"at eye", math3d.V3(0, 0, 0), DefaultOptions(), ErrPointBehindEye},
		{"behind eye without depth test", math3d.V3(1, 1, -5), noDepth, ErrPointBehindEye},
		{"closer than near", math3d.V3(0, 0, 0.5), DefaultOptions(), ErrOutsideDepthRange},
		{"beyond far", math3d.V3(0, 0, 20), DefaultOptions(), ErrOutsideDepthRange},
		{"beyond far without depth test", math3d.V3(0, 0, 20), noDepth, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Project(tc.point, proj, 100, 100, tc.opts)
			if !errors.Is(err, tc.want) {
				t.Errorf("Project(%v) error = %v, want %v", tc.point, err, tc.want)
			}
		})
	}
}

func TestProjectDepthRange(t *testing.T) {
	proj, err := math3d.Perspective(math.Pi/2, 1, 1, 10)
	if err != nil {
		t.Fatal(err)
	}

	nearPt, err := Project(math3d.V3(0, 0, 1), proj, 100, 100, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	farPt, err := Project(math3d.V3(0, 0, 10), proj, 100, 100, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(nearPt.Depth) > 1e-12 || math.Abs(farPt.Depth-1) > 1e-12 {
		t.Errorf("depths = %v, %v, want 0 and 1", nearPt.Depth, farPt.Depth)
	}

	narrow := DefaultOptions()
	narrow.Depth = DepthRange{Enabled: true, Min: 0, Max: 0.5}
	if _, err := Project(math3d.V3(0, 0, 9), proj, 100, 100, narrow); !errors.Is(err, ErrOutsideDepthRange) {
		t.Errorf("custom depth range not applied: %v", err)
	}
}

func TestProjectClampToViewport(t *testing.T) {
	proj, err := math3d.Perspective(math.Pi/2, 1, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	v := math3d.V3(50, -50, 5) // far right, far below

	free, err := Project(v, proj, 100, 80, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if free.X < 100 || free.Y < 80 {
		t.Fatalf("unclamped point %v should be outside the viewport", free)
	}

	opts := DefaultOptions()
	opts.ClampToViewport = true
	p, err := Project(v, proj, 100, 80, opts)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 99 || p.Y != 79 {
		t.Errorf("clamped point = (%v, %v), want (99, 79)", p.X, p.Y)
	}
	if p.Pixel() != image.Pt(99, 79) {
		t.Errorf("Pixel() = %v, want (99,79)", p.Pixel())
	}
}

func TestProjectInvalidViewport(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		_, err := Project(math3d.Zero3(), math3d.Identity(), size[0], size[1], DefaultOptions())
		if !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("Project with %dx%d viewport: %v, want ErrInvalidViewport", size[0], size[1], err)
		}
	}
}

func TestProjectOrthographic(t *testing.T) {
	proj, err := math3d.Orthographic(-2, 2, -1, 1, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Project(math3d.V3(2, 1, 5), proj, 400, 200, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.X-400) > 1e-9 || math.Abs(p.Y) > 1e-9 || math.Abs(p.Depth-0.5) > 1e-9 {
		t.Errorf("Project = %+v, want (400, 0) at depth 0.5", p)
	}
}

func BenchmarkProject(b *testing.B) {
	cam := testCamera(b)
	vp, _ := cam.ViewProjectionMatrix()
	v := math3d.V3(0.5, -0.25, 1)
	opts := DefaultOptions()

	for b.Loop() {
		_, _ = Project(v, vp, 800, 600, opts)
	}
}

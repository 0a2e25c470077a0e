package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

func newCamera(t *testing.T, pos math3d.Vec3) render.Camera {
	t.Helper()
	cam, err := render.NewCamera(pos, math3d.Zero3(), math3d.Up(), math.Pi/3, 1, 0.1, 100)
	if err != nil {
		t.Fatal(err)
	}
	return cam
}

func TestOrbitStateStartsAtCamera(t *testing.T) {
	tests := []struct {
		name     string
		pos      math3d.Vec3
		wantYaw  float64
		wantDist float64
	}{
		{"behind", math3d.V3(0, 0, -10), 0, 10},
		{"right", math3d.V3(5, 0, 0), math.Pi / 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := newCamera(t, tt.pos)
			o := NewOrbitState(30, cam, math3d.Zero3())
			if math.Abs(o.Yaw.Position-tt.wantYaw) > 1e-9 || math.Abs(o.Distance-tt.wantDist) > 1e-9 {
				t.Errorf("yaw %v dist %v, want %v %v", o.Yaw.Position, o.Distance, tt.wantYaw, tt.wantDist)
			}
			if err := o.Update(&cam); err != nil {
				t.Fatal(err)
			}
			if !cam.Position.ApproxEqual(tt.pos, 1e-9) {
				t.Errorf("camera moved to %v, want %v", cam.Position, tt.pos)
			}
		})
	}
}

func TestOrbitImpulseDecays(t *testing.T) {
	cam := newCamera(t, math3d.V3(0, 0, -10))
	o := NewOrbitState(30, cam, math3d.Zero3())
	o.ApplyImpulse(0.1, 0)

	for range 300 {
		if err := o.Update(&cam); err != nil {
			t.Fatal(err)
		}
	}
	if o.Yaw.Position <= 0 {
		t.Errorf("yaw = %v, want positive after impulse", o.Yaw.Position)
	}
	if math.Abs(o.Yaw.Velocity) > 1e-3 {
		t.Errorf("velocity = %v, want near 0", o.Yaw.Velocity)
	}
	if d := cam.Position.Len(); math.Abs(d-10) > 1e-9 {
		t.Errorf("orbit radius = %v, want 10", d)
	}

	o.Reset()
	if o.Yaw.Position != 0 || o.Yaw.Velocity != 0 {
		t.Errorf("Reset left yaw %v velocity %v", o.Yaw.Position, o.Yaw.Velocity)
	}
}

func TestOrbitZoomClamps(t *testing.T) {
	o := NewOrbitState(30, newCamera(t, math3d.V3(0, 0, -10)), math3d.Zero3())

	o.Zoom(-100)
	if o.Distance != 1 {
		t.Errorf("min distance = %v, want 1", o.Distance)
	}
	o.Zoom(1000)
	if o.Distance != 90 {
		t.Errorf("max distance = %v, want 90", o.Distance)
	}
}

func TestToggle(t *testing.T) {
	if got := toggle(render.FillSolid, render.FillSolid, render.FillOutline); got != render.FillOutline {
		t.Errorf("toggle(solid) = %v", got)
	}
	if got := toggle(render.FillOutline, render.FillSolid, render.FillOutline); got != render.FillSolid {
		t.Errorf("toggle(outline) = %v", got)
	}
}

func TestToggleOption(t *testing.T) {
	tests := []struct {
		key   string
		check func(render.Options) bool
	}{
		{"f", func(o render.Options) bool { return o.Fill == render.FillOutline }},
		{"c", func(o render.Options) bool { return !o.BackfaceCulling }},
		{"b", func(o render.Options) bool { return o.Line == render.LineParametric }},
		{"v", func(o render.Options) bool { return o.FrontFace == render.FrontClockwise }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			r := render.NewRenderer(render.DefaultOptions())
			if !toggleOption(&r.Options, tt.key) {
				t.Fatalf("toggleOption(%q) = false", tt.key)
			}
			if !tt.check(r.Options) {
				t.Errorf("options after %q: %+v", tt.key, r.Options)
			}
			toggleOption(&r.Options, tt.key)
			if r.Options != render.DefaultOptions() {
				t.Errorf("second toggle of %q did not restore defaults: %+v", tt.key, r.Options)
			}
		})
	}

	opts := render.DefaultOptions()
	if toggleOption(&opts, "x") || opts != render.DefaultOptions() {
		t.Error("unbound key changed the options")
	}
}

func TestDrawGuides(t *testing.T) {
	s := scene.Default()
	mesh, err := s.LoadMesh()
	if err != nil {
		t.Fatal(err)
	}
	fb := render.NewFramebuffer(80, 60)
	fb.Clear(render.ColorBlack)
	cam, err := render.NewCamera(math3d.V3(4, 3, -6), math3d.Zero3(), math3d.Up(), math.Pi/3, aspect(fb), 0.1, 100)
	if err != nil {
		t.Fatal(err)
	}

	if err := drawGuides(fb, cam, render.LineBresenham, mesh, math3d.Identity(), math3d.Zero3()); err != nil {
		t.Fatal(err)
	}
	seen := make(map[render.Color]bool)
	for _, p := range fb.Pixels {
		seen[p] = true
	}
	for _, c := range []render.Color{render.ColorGray, render.ColorCyan} {
		if !seen[c] {
			t.Errorf("no %v pixels in the guides", c)
		}
	}

	if err := drawGuides(fb, render.Camera{}, render.LineBresenham, mesh, math3d.Identity(), math3d.Zero3()); err == nil {
		t.Error("drawGuides succeeded with a zero camera")
	}
}

func TestHUDDraw(t *testing.T) {
	fb := render.NewFramebuffer(200, 60)
	fb.Clear(render.ColorRed)
	hud := NewHUD()
	hud.Draw(fb, render.FrameStats{Triangles: 12, Drawn: 6}, render.DefaultOptions(), nil)
	if got := fb.GetPixel(0, 0); got != hudBackdrop {
		t.Errorf("HUD corner = %v, want the backdrop", got)
	}

	fb.Clear(render.ColorRed)
	hud.Visible = false
	hud.Draw(fb, render.FrameStats{}, render.DefaultOptions(), nil)
	if got := fb.GetPixel(0, 0); got != render.ColorRed {
		t.Error("hidden HUD drew")
	}
}

func TestLoadSceneModelOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte("name: quad\nmesh: {primitive: quad}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := loadScene(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "quad" || s.Mesh.Primitive != scene.PrimitiveQuad {
		t.Errorf("loaded %q with mesh %+v", s.Name, s.Mesh)
	}

	s, err = loadScene(path, "model.glb")
	if err != nil {
		t.Fatal(err)
	}
	if s.Mesh.Path != "model.glb" || s.Mesh.Primitive != "" {
		t.Errorf("override gave mesh %+v", s.Mesh)
	}

	if _, err := loadScene(filepath.Join(dir, "missing.yaml"), ""); err == nil {
		t.Error("loadScene succeeded for a missing file")
	}
}

func TestExportFrames(t *testing.T) {
	s := scene.Default()
	s.Viewport = scene.Viewport{Width: 40, Height: 30}
	mesh, err := s.LoadMesh()
	if err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	if err := exportFrames(s, mesh, dir, 3, render.FormatBMP); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"frame_0000.bmp", "frame_0001.bmp", "frame_0002.bmp"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	if err := exportFrames(s, mesh, dir, 1, render.ImageFormat("gif")); err == nil {
		t.Error("gif export succeeded")
	}
	if err := exportFrames(s, mesh, dir, 0, render.FormatPNG); err == nil {
		t.Error("zero-frame export succeeded")
	}
}

package render

import (
	"fmt"
	"log/slog"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
)

// FrameStats summarizes one RenderFrame call.
type FrameStats struct {
	Triangles int // Triangles in the mesh
	Drawn     int // Filled or outlined
	Culled    int // Rejected as backfaces
	// Skipped counts triangles with at least one vertex that failed
	// projection. In outline mode their surviving edges are still drawn.
	Skipped          int
	VerticesRejected int
	// MeshRejected is set when the whole mesh was outside the view frustum
	// and nothing was processed.
	MeshRejected bool
}

func (s FrameStats) String() string {
	if s.MeshRejected {
		return fmt.Sprintf("%d tris, mesh outside view", s.Triangles)
	}
	return fmt.Sprintf("%d tris: %d drawn, %d culled, %d skipped",
		s.Triangles, s.Drawn, s.Culled, s.Skipped)
}

// LogValue implements slog.LogValuer.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("triangles", s.Triangles),
		slog.Int("drawn", s.Drawn),
		slog.Int("culled", s.Culled),
		slog.Int("skipped", s.Skipped),
		slog.Int("vertices_rejected", s.VerticesRejected),
		slog.Bool("mesh_rejected", s.MeshRejected),
	)
}

// Renderer turns a mesh, a model transform and a camera into pixels.
//
// A Renderer keeps scratch buffers between frames to avoid allocating per
// frame; nothing else carries over. It is not safe for concurrent use.
type Renderer struct {
	Options Options

	points []ScreenPoint
	valid  []bool
	world  []math3d.Vec3
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{Options: opts}
}

// RenderFrame draws mesh, transformed by model and seen through cam, into a
// width×height framebuffer.
//
// Invalid input (a viewport that does not match fb, an invalid mesh, an
// invalid camera or a non-finite model-view-projection matrix) returns an
// error before any pixel is written. Vertices that cannot be projected are
// not errors: their triangles are skipped and counted in FrameStats.
//
// Triangles are drawn in list order with no depth sorting, so later
// triangles overwrite earlier ones where they overlap. The same inputs
// always produce the same pixels.
func (r *Renderer) RenderFrame(mesh *models.Mesh, model math3d.Mat4, cam Camera, width, height int, fb *Framebuffer) (FrameStats, error) {
	var stats FrameStats

	if width <= 0 || height <= 0 {
		return stats, fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	if fb == nil {
		return stats, fmt.Errorf("%w: nil framebuffer", ErrInvalidViewport)
	}
	if fb.Width != width || fb.Height != height || len(fb.Pixels) != width*height {
		return stats, fmt.Errorf("%w: %dx%d viewport for %dx%d framebuffer",
			ErrInvalidViewport, width, height, fb.Width, fb.Height)
	}
	if mesh == nil {
		return stats, ErrNilMesh
	}
	if err := mesh.Validate(); err != nil {
		return stats, fmt.Errorf("render mesh: %w", err)
	}
	viewProj, err := cam.ViewProjectionMatrix()
	if err != nil {
		return stats, err
	}
	mvp := viewProj.Mul(model)
	if !mvp.IsFinite() {
		Logger().Warn("degenerate transform", "mesh", mesh.Name, "model", model)
		return stats, fmt.Errorf("model-view-projection of %q: %w", mesh.Name, math3d.ErrDegenerateMatrix)
	}

	opts := r.Options
	if opts.Clear {
		fb.Clear(opts.Background)
	}

	stats.Triangles = mesh.TriangleCount()
	if opts.FrustumReject && !NewFrustumFromMatrix(mvp).IntersectAABB(MeshAABB(mesh)) {
		stats.MeshRejected = true
		Logger().Debug("frame", "mesh", mesh.Name, "stats", stats)
		return stats, nil
	}

	stats.VerticesRejected = r.projectVertices(mesh, mvp, width, height)
	if opts.BackfaceCulling {
		r.transformVertices(mesh, model)
	}

	for i := range stats.Triangles {
		face := mesh.Face(i)
		col := mesh.FaceColor(i)

		if opts.BackfaceCulling && r.isBackface(face, cam) {
			stats.Culled++
			continue
		}

		if !r.valid[face[0]] || !r.valid[face[1]] || !r.valid[face[2]] {
			stats.Skipped++
			if opts.Fill == FillOutline {
				r.drawSurvivingEdges(fb, face, col)
			}
			continue
		}

		a := r.points[face[0]].Vec2()
		b := r.points[face[1]].Vec2()
		c := r.points[face[2]].Vec2()
		if opts.Fill == FillOutline {
			fb.DrawTriangleOutline(a, b, c, col, opts.Line)
		} else {
			fb.FillTriangle(a, b, c, col)
		}
		stats.Drawn++
	}

	Logger().Debug("frame", "mesh", mesh.Name, "stats", stats)
	return stats, nil
}

// projectVertices projects every vertex once into the scratch buffers and
// returns how many failed.
func (r *Renderer) projectVertices(mesh *models.Mesh, mvp math3d.Mat4, width, height int) int {
	n := mesh.VertexCount()
	r.points = grow(r.points, n)
	r.valid = grow(r.valid, n)

	w, h := float64(width), float64(height)
	rejected := 0
	for i, v := range mesh.Vertices {
		p, err := project(v, mvp, w, h, r.Options)
		r.points[i] = p
		r.valid[i] = err == nil
		if err != nil {
			rejected++
		}
	}
	return rejected
}

func (r *Renderer) transformVertices(mesh *models.Mesh, model math3d.Mat4) {
	r.world = grow(r.world, mesh.VertexCount())
	for i, v := range mesh.Vertices {
		r.world[i] = model.MulVec3(v)
	}
}

func (r *Renderer) isBackface(face [3]int, cam Camera) bool {
	v0, v1, v2 := r.world[face[0]], r.world[face[1]], r.world[face[2]]
	if cam.Projection == ProjectionOrthographic {
		return IsBackfaceDir(v0, v1, v2, cam.Forward, r.Options.FrontFace)
	}
	return IsBackface(v0, v1, v2, cam.Position, r.Options.FrontFace)
}

func (r *Renderer) drawSurvivingEdges(fb *Framebuffer, face [3]int, col Color) {
	for k := range 3 {
		i, j := face[k], face[(k+1)%3]
		if r.valid[i] && r.valid[j] {
			fb.DrawSegment(r.points[i].Vec2(), r.points[j].Vec2(), col, r.Options.Line)
		}
	}
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}

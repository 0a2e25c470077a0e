package render

import (
	"image"
	"image/color"
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
	"golang.org/x/image/math/fixed"
)

// lineClipMargin bounds how far outside the buffer an integer line may start
// before it is clipped instead of stepped pixel by pixel.
const lineClipMargin = 1 << 12

// maxRasterCoord is the largest pixel coordinate the fixed-point fill
// accepts. Edge products stay inside int64 below it.
const maxRasterCoord = 1 << 22

// guardBand is how far past the buffer edges FillTriangle clips triangles
// that exceed maxRasterCoord.
const guardBand = 1 << 16

// DrawLine draws a line with Bresenham's algorithm. Both endpoints are
// included. Pixels outside the buffer are skipped.
func (fb *Framebuffer) DrawLine(p0, p1 image.Point, c color.RGBA) {
	margin := fb.Bounds().Inset(-lineClipMargin)
	if !p0.In(margin) || !p1.In(margin) {
		a, b, ok := fb.clipSegment(pointVec(p0), pointVec(p1))
		if !ok {
			return
		}
		p0, p1 = roundPoint(a), roundPoint(b)
	}
	fb.bresenham(p0.X, p0.Y, p1.X, p1.Y, c)
}

func (fb *Framebuffer) bresenham(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawLineParametric draws a line by stepping a parameter t from 0 to 1 in
// as many steps as the longer axis spans, plotting the pixel containing each
// sample. A zero-length line plots a single pixel.
func (fb *Framebuffer) DrawLineParametric(a, b math3d.Vec2, c color.RGBA) {
	a, b, ok := fb.clipSegment(a, b)
	if !ok {
		return
	}
	d := b.Sub(a)
	steps := int(math.Ceil(math.Max(math.Abs(d.X), math.Abs(d.Y))))
	if steps == 0 {
		p := pixelOf(a)
		fb.SetPixel(p.X, p.Y, c)
		return
	}
	inv := 1 / float64(steps)
	for i := 0; i <= steps; i++ {
		p := pixelOf(a.Add(d.Scale(float64(i) * inv)))
		fb.SetPixel(p.X, p.Y, c)
	}
}

// DrawSegment draws a line between two screen-space points with the chosen
// algorithm.
func (fb *Framebuffer) DrawSegment(a, b math3d.Vec2, c color.RGBA, alg LineAlgorithm) {
	if alg == LineParametric {
		fb.DrawLineParametric(a, b, c)
		return
	}
	a, b, ok := fb.clipSegment(a, b)
	if !ok {
		return
	}
	p0, p1 := pixelOf(a), pixelOf(b)
	fb.bresenham(p0.X, p0.Y, p1.X, p1.Y, c)
}

// DrawTriangleOutline draws the three edges a-b, b-c and c-a.
func (fb *Framebuffer) DrawTriangleOutline(a, b, c math3d.Vec2, col color.RGBA, alg LineAlgorithm) {
	fb.DrawSegment(a, b, col, alg)
	fb.DrawSegment(b, c, col, alg)
	fb.DrawSegment(c, a, col, alg)
}

// FillTriangle fills a screen-space triangle with a solid color.
//
// Vertices are snapped to 26.6 fixed point and pixels are sampled at their
// centers. A pixel whose center lies exactly on an edge is drawn only when
// that edge is a top or left edge, so triangles sharing an edge never draw
// the same pixel twice and leave no gap between them. Either vertex order is
// accepted. Degenerate triangles and non-finite vertices draw nothing.
//
// Triangles reaching further than maxRasterCoord from the origin are first
// clipped to a guard band around the buffer and drawn as a fan.
func (fb *Framebuffer) FillTriangle(a, b, c math3d.Vec2, col color.RGBA) {
	if !finiteVec2(a) || !finiteVec2(b) || !finiteVec2(c) {
		return
	}
	if rasterizable(a) && rasterizable(b) && rasterizable(c) {
		fb.fillFixed(toFixed(a), toFixed(b), toFixed(c), col)
		return
	}

	lo := math3d.V2(-guardBand, -guardBand)
	hi := math3d.V2(
		math.Min(float64(fb.Width)+guardBand, maxRasterCoord),
		math.Min(float64(fb.Height)+guardBand, maxRasterCoord),
	)
	poly := clipPolygon([]math3d.Vec2{a, b, c}, lo, hi)
	if len(poly) < 3 {
		return
	}
	v0 := toFixed(poly[0])
	for i := 1; i+1 < len(poly); i++ {
		fb.fillFixed(v0, toFixed(poly[i]), toFixed(poly[i+1]), col)
	}
}

func (fb *Framebuffer) fillFixed(v0, v1, v2 fixed.Point26_6, col color.RGBA) {
	area := orient(v0, v1, v2)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
	}

	// Bounding box in pixels, clamped to the buffer
	minX := max(0, floorPixel(min(v0.X, v1.X, v2.X)))
	maxX := min(fb.Width-1, floorPixel(max(v0.X, v1.X, v2.X)))
	minY := max(0, floorPixel(min(v0.Y, v1.Y, v2.Y)))
	maxY := min(fb.Height-1, floorPixel(max(v0.Y, v1.Y, v2.Y)))
	if minX > maxX || minY > maxY {
		return
	}

	e0 := newEdge(v1, v2)
	e1 := newEdge(v2, v0)
	e2 := newEdge(v0, v1)

	// Edge values at the first pixel center
	start := fixed.Point26_6{
		X: fixed.I(minX) + fixed.Int26_6(32),
		Y: fixed.I(minY) + fixed.Int26_6(32),
	}
	w0Row := e0.eval(start)
	w1Row := e1.eval(start)
	w2Row := e2.eval(start)

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		row := fb.Pixels[y*fb.Width : (y+1)*fb.Width]
		for x := minX; x <= maxX; x++ {
			if w0+e0.bias >= 0 && w1+e1.bias >= 0 && w2+e2.bias >= 0 {
				row[x] = col
			}
			w0 += e0.stepX
			w1 += e1.stepX
			w2 += e2.stepX
		}
		w0Row += e0.stepY
		w1Row += e1.stepY
		w2Row += e2.stepY
	}
}

// clipPolygon clips a convex polygon to the rectangle lo..hi
// (Sutherland-Hodgman), keeping its vertex order.
func clipPolygon(poly []math3d.Vec2, lo, hi math3d.Vec2) []math3d.Vec2 {
	for side := range 4 {
		if len(poly) == 0 {
			break
		}
		out := make([]math3d.Vec2, 0, len(poly)+1)
		prev := poly[len(poly)-1]
		prevIn := insideSide(prev, side, lo, hi)
		for _, cur := range poly {
			curIn := insideSide(cur, side, lo, hi)
			if curIn != prevIn {
				out = append(out, crossSide(prev, cur, side, lo, hi))
			}
			if curIn {
				out = append(out, cur)
			}
			prev, prevIn = cur, curIn
		}
		poly = out
	}
	return poly
}

// Rectangle sides for clipPolygon: x >= lo.X, x <= hi.X, y >= lo.Y, y <= hi.Y.
func insideSide(p math3d.Vec2, side int, lo, hi math3d.Vec2) bool {
	switch side {
	case 0:
		return p.X >= lo.X
	case 1:
		return p.X <= hi.X
	case 2:
		return p.Y >= lo.Y
	default:
		return p.Y <= hi.Y
	}
}

// crossSide returns where segment p-q crosses a rectangle side. The
// endpoints are put in a fixed order first so two triangles sharing the
// edge get the same point.
func crossSide(p, q math3d.Vec2, side int, lo, hi math3d.Vec2) math3d.Vec2 {
	if q.X < p.X || (q.X == p.X && q.Y < p.Y) {
		p, q = q, p
	}
	switch side {
	case 0, 1:
		x := lo.X
		if side == 1 {
			x = hi.X
		}
		t := (x - p.X) / (q.X - p.X)
		return math3d.V2(x, p.Y+t*(q.Y-p.Y))
	default:
		y := lo.Y
		if side == 3 {
			y = hi.Y
		}
		t := (y - p.Y) / (q.Y - p.Y)
		return math3d.V2(p.X+t*(q.X-p.X), y)
	}
}

// edge is the fixed-point edge function of a directed edge from p to q,
// E(s) = (q-p) × (s-p), positive on the interior side of a triangle with
// positive signed area.
type edge struct {
	p            fixed.Point26_6
	dx, dy       int64
	stepX, stepY int64
	// bias is 0 for top and left edges and -1 otherwise, turning the
	// E >= 0 test into E > 0 for pixels on the other edges.
	bias int64
}

func newEdge(p, q fixed.Point26_6) edge {
	dx := int64(q.X - p.X)
	dy := int64(q.Y - p.Y)
	e := edge{
		p:     p,
		dx:    dx,
		dy:    dy,
		stepX: -dy * 64,
		stepY: dx * 64,
		bias:  -1,
	}
	// On a y-down screen with positive area, the top edge runs
	// horizontally to the right and left edges run upward.
	if (dy == 0 && dx > 0) || dy < 0 {
		e.bias = 0
	}
	return e
}

func (e edge) eval(s fixed.Point26_6) int64 {
	return e.dx*int64(s.Y-e.p.Y) - e.dy*int64(s.X-e.p.X)
}

func orient(a, b, c fixed.Point26_6) int64 {
	return int64(b.X-a.X)*int64(c.Y-a.Y) - int64(b.Y-a.Y)*int64(c.X-a.X)
}

func toFixed(v math3d.Vec2) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(math.Round(v.X * 64)),
		Y: fixed.Int26_6(math.Round(v.Y * 64)),
	}
}

// floorPixel returns the pixel index containing a fixed-point coordinate.
func floorPixel(v fixed.Int26_6) int {
	return v.Floor()
}

func finiteVec2(v math3d.Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

func rasterizable(v math3d.Vec2) bool {
	return math.Abs(v.X) <= maxRasterCoord && math.Abs(v.Y) <= maxRasterCoord
}

// clipSegment clips a segment to the buffer grown by one pixel on every side
// (Liang-Barsky). It reports false when nothing of the segment remains or a
// coordinate is not finite.
func (fb *Framebuffer) clipSegment(a, b math3d.Vec2) (math3d.Vec2, math3d.Vec2, bool) {
	for _, f := range [...]float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return a, b, false
		}
	}
	xmin, ymin := -1.0, -1.0
	xmax, ymax := float64(fb.Width)+1, float64(fb.Height)+1

	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return false
			}
			t1 = min(t1, r)
		}
		return true
	}
	if !clip(-d.X, a.X-xmin) || !clip(d.X, xmax-a.X) ||
		!clip(-d.Y, a.Y-ymin) || !clip(d.Y, ymax-a.Y) {
		return a, b, false
	}
	if t1 < 1 {
		b = a.Add(d.Scale(t1))
	}
	if t0 > 0 {
		a = a.Add(d.Scale(t0))
	}
	return a, b, true
}

// pixelOf returns the pixel containing a screen-space point.
func pixelOf(v math3d.Vec2) image.Point {
	return image.Pt(int(math.Floor(v.X)), int(math.Floor(v.Y)))
}

func roundPoint(v math3d.Vec2) image.Point {
	return image.Pt(int(math.Round(v.X)), int(math.Round(v.Y)))
}

func pointVec(p image.Point) math3d.Vec2 {
	return math3d.V2(float64(p.X), float64(p.Y))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

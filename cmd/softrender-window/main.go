// softrender-window - Desktop Mesh Viewer
// Shows the same scenes as softrender in a native window.
//
// Controls:
//
//	W/S         - Move toward/away from the target
//	A/D         - Circle left/right
//	Q/E         - Move down/up
//	F           - Toggle solid/outline fill
//	C           - Toggle backface culling
//	B           - Toggle Bresenham/parametric lines
//	V           - Toggle front-face winding
//	G           - Toggle grid, axes and bounds guides
//	P           - Save a PNG screenshot
//	Tab         - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

var (
	scenePath = flag.String("scene", "", "Path to a YAML scene file")
	scale     = flag.Int("scale", 1, "Window scale factor")
	logLevel  = flag.String("log-level", "info", "Log level (debug|info|warn|error)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softrender-window - Desktop Mesh Viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softrender-window [options] [model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	render.SetLogger(l.With("component", "render"))

	s := scene.Default()
	if *scenePath != "" {
		var err error
		if s, err = scene.Load(*scenePath); err != nil {
			return err
		}
	}
	if flag.NArg() > 0 {
		s.SetMeshPath(flag.Arg(0))
	}

	g, err := newGame(s)
	if err != nil {
		return err
	}

	ebiten.SetWindowTitle("softrender - " + g.mesh.Name)
	ebiten.SetWindowSize(s.Viewport.Width*max(*scale, 1), s.Viewport.Height*max(*scale, 1))
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type game struct {
	scene    *scene.Scene
	mesh     *models.Mesh
	cam      render.Camera
	target   math3d.Vec3
	renderer *render.Renderer
	fb       *render.Framebuffer
	img      *ebiten.Image
	pix      []byte
	stats    render.FrameStats
	err      error
	start    time.Time
	showHUD  bool
	guides   bool
	shots    int
}

func newGame(s *scene.Scene) (*game, error) {
	mesh, err := s.LoadMesh()
	if err != nil {
		return nil, err
	}
	cam, err := s.CameraFor(s.Aspect())
	if err != nil {
		return nil, err
	}
	return &game{
		scene:    s,
		mesh:     mesh,
		cam:      cam,
		target:   s.Camera.Target.Vec3(),
		renderer: render.NewRenderer(s.Options()),
		fb:       render.NewFramebuffer(s.Viewport.Width, s.Viewport.Height),
		start:    time.Now(),
		showHUD:  true,
	}, nil
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// Speed scales with distance to the target
	speed := g.cam.Position.Distance(g.target) / 60
	moved := false
	move := func(key ebiten.Key, fn func(float64), d float64) {
		if ebiten.IsKeyPressed(key) {
			fn(d)
			moved = true
		}
	}
	move(ebiten.KeyW, g.cam.MoveForward, speed)
	move(ebiten.KeyS, g.cam.MoveForward, -speed)
	move(ebiten.KeyD, g.cam.MoveRight, speed)
	move(ebiten.KeyA, g.cam.MoveRight, -speed)
	move(ebiten.KeyE, g.cam.MoveUp, speed)
	move(ebiten.KeyQ, g.cam.MoveUp, -speed)
	if moved && g.cam.Position.Distance(g.target) > g.cam.Near {
		if err := g.cam.LookAt(g.target); err != nil {
			slog.Warn("look at target", "err", err)
		}
	}

	opts := &g.renderer.Options
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		opts.Fill = toggle(opts.Fill, render.FillSolid, render.FillOutline)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		opts.BackfaceCulling = !opts.BackfaceCulling
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		opts.Line = toggle(opts.Line, render.LineBresenham, render.LineParametric)
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		opts.FrontFace = toggle(opts.FrontFace, render.FrontCounterClockwise, render.FrontClockwise)
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.guides = !g.guides
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.showHUD = !g.showHUD
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.shots++
		path := fmt.Sprintf("softrender-%03d.png", g.shots)
		if err := g.fb.SavePNG(path); err != nil {
			slog.Error("save screenshot", "path", path, "err", err)
		} else {
			slog.Info("saved screenshot", "path", path)
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	fb := g.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.Width || g.img.Bounds().Dy() != fb.Height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(fb.Width, fb.Height)
	}

	model := g.scene.Model(time.Since(g.start).Seconds())
	g.stats, g.err = g.renderer.RenderFrame(g.mesh, model, g.cam, fb.Width, fb.Height, fb)
	if g.err != nil {
		slog.Warn("render frame", "err", g.err)
	}

	if g.guides {
		wf, err := render.NewWireframe(g.cam, fb, g.renderer.Options.Line)
		if err != nil {
			slog.Warn("scene guides", "err", err)
		} else {
			wf.DrawSceneGuides(render.MeshAABB(g.mesh), model, g.target)
		}
	}

	if g.showHUD {
		opts := g.renderer.Options
		fb.DrawPanel(2, 2, []string{
			fmt.Sprintf("%.0f fps  %s", ebiten.ActualFPS(), g.stats),
			fmt.Sprintf("%s  %s  cull:%t %s", opts.Fill, opts.Line, opts.BackfaceCulling, opts.FrontFace),
		}, render.ColorWhite, render.ColorBlack)
	}

	g.pix = fb.RGBABytes(g.pix)
	g.img.WritePixels(g.pix)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width, g.fb.Height
}

func toggle[T comparable](v, a, b T) T {
	if v == a {
		return b
	}
	return a
}

// softrender - Terminal Mesh Viewer
// Renders a YAML scene or a GLB model with flat colors or outlines, either
// live in the terminal or as a numbered sequence of image files.
//
// Controls:
//
//	Mouse drag  - Orbit the camera (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Orbit up/down
//	A/D         - Orbit left/right
//	Space       - Apply random impulse
//	F           - Toggle solid/outline fill
//	C           - Toggle backface culling
//	B           - Toggle Bresenham/parametric lines
//	V           - Toggle front-face winding
//	G           - Toggle grid, axes and bounds guides
//	R           - Reset view
//	?           - Toggle HUD overlay
//	+/-         - Adjust zoom
//	Esc/Q       - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/schollz/progressbar/v3"
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

var (
	scenePath = flag.String("scene", "", "Path to a YAML scene file")
	targetFPS = flag.Int("fps", 30, "Target FPS")
	logPath   = flag.String("log", "", "Write debug logs to this file")
	exportDir = flag.String("export", "", "Render frames into this directory instead of the terminal")
	frames    = flag.Int("frames", 60, "Number of frames to export")
	format    = flag.String("format", "png", "Export image format (png|bmp)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softrender - Terminal Mesh Viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softrender [options] [model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit camera\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Orbit up/down/left/right\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  F           - Toggle outline\n")
		fmt.Fprintf(os.Stderr, "  C           - Toggle backface culling\n")
		fmt.Fprintf(os.Stderr, "  B           - Toggle line algorithm\n")
		fmt.Fprintf(os.Stderr, "  V           - Toggle front-face winding\n")
		fmt.Fprintf(os.Stderr, "  G           - Toggle scene guides\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc/Q       - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	closeLog, err := setupLogging(*logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := loadScene(*scenePath, flag.Arg(0))
	if err != nil {
		return err
	}
	mesh, err := s.LoadMesh()
	if err != nil {
		return err
	}
	slog.Info("loaded scene", "name", s.Name, "mesh", mesh.Name,
		"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())

	if *exportDir != "" {
		return exportFrames(s, mesh, *exportDir, *frames, render.ImageFormat(*format))
	}
	return view(s, mesh)
}

// setupLogging routes both the renderer's and the program's logs to path at
// debug level. Without a path all logging is discarded, since stderr belongs
// to the terminal UI.
func setupLogging(path string) (func(), error) {
	if path == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	l := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(l)
	render.SetLogger(l.With("component", "render"))
	return func() { f.Close() }, nil
}

// loadScene reads the scene file, or the default scene when path is empty.
// A model path replaces the scene's mesh.
func loadScene(path, model string) (*scene.Scene, error) {
	s := scene.Default()
	if path != "" {
		var err error
		if s, err = scene.Load(path); err != nil {
			return nil, err
		}
	}
	if model != "" {
		s.SetMeshPath(model)
	}
	return s, nil
}

// exportFrames renders n frames of the scene's spin animation at the target
// frame rate and writes each one to dir.
func exportFrames(s *scene.Scene, mesh *models.Mesh, dir string, n int, f render.ImageFormat) error {
	if f != render.FormatPNG && f != render.FormatBMP {
		return fmt.Errorf("unsupported format %q (use png or bmp)", f)
	}
	if n <= 0 {
		return errors.New("frames must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	cam, err := s.CameraFor(s.Aspect())
	if err != nil {
		return err
	}
	fb := render.NewFramebuffer(s.Viewport.Width, s.Viewport.Height)
	r := render.NewRenderer(s.Options())
	dt := 1 / float64(max(*targetFPS, 1))

	pb := progressbar.Default(int64(n), "rendering")
	defer pb.Close()

	for i := range n {
		stats, err := r.RenderFrame(mesh, s.Model(float64(i)*dt), cam, fb.Width, fb.Height, fb)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.%s", i, f))
		if f == render.FormatBMP {
			err = fb.SaveBMP(path)
		} else {
			err = fb.SavePNG(path)
		}
		if err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
		slog.Debug("exported frame", "path", path, "stats", stats)

		pb.Add(1)
	}
	return nil
}

// OrbitAxis tracks one orbit angle with spring-decayed velocity.
type OrbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity of Velocity itself
}

// NewOrbitAxis creates an axis starting at pos.
func NewOrbitAxis(fps int, pos float64) OrbitAxis {
	// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
	return OrbitAxis{
		Position:  pos,
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and eases velocity toward 0.
func (a *OrbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// OrbitState places the camera on a sphere around the scene target.
type OrbitState struct {
	Yaw, Pitch OrbitAxis
	Distance   float64
	Target     math3d.Vec3

	fps              int
	home             math3d.Vec3
	minDist, maxDist float64
}

// NewOrbitState starts the orbit at the camera's current position.
func NewOrbitState(fps int, cam render.Camera, target math3d.Vec3) *OrbitState {
	o := &OrbitState{Target: target, fps: fps, home: cam.Position}
	o.Reset()
	o.minDist = math.Max(cam.Near*2, o.Distance*0.1)
	o.maxDist = math.Min(cam.Far*0.9, o.Distance*10)
	return o
}

// Reset returns the camera to its starting position.
func (o *OrbitState) Reset() {
	offset := o.home.Sub(o.Target)
	o.Distance = offset.Len()
	pitch, yaw := 0.0, 0.0
	if o.Distance > 0 {
		pitch = math.Asin(offset.Y / o.Distance)
		yaw = math.Atan2(offset.X, -offset.Z)
	}
	o.Yaw = NewOrbitAxis(o.fps, yaw)
	o.Pitch = NewOrbitAxis(o.fps, pitch)
}

func (o *OrbitState) ApplyImpulse(yaw, pitch float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
}

func (o *OrbitState) Zoom(delta float64) {
	o.Distance = math.Max(o.minDist, math.Min(o.maxDist, o.Distance+delta))
}

// Update steps the springs and moves cam onto the orbit.
func (o *OrbitState) Update(cam *render.Camera) error {
	o.Yaw.Update()
	o.Pitch.Update()
	// Keep the stored pitch inside the range Orbit accepts so the springs
	// never wind up past the poles.
	o.Pitch.Position = math.Max(-1.5, math.Min(1.5, o.Pitch.Position))
	return cam.Orbit(o.Target, o.Yaw.Position, o.Pitch.Position, o.Distance)
}

// HUD draws frame statistics and mode toggles into the framebuffer.
type HUD struct {
	Visible   bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD() *HUD {
	return &HUD{Visible: true, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func (h *HUD) Draw(fb *render.Framebuffer, stats render.FrameStats, opts render.Options, err error) {
	if !h.Visible {
		return
	}
	culling := "off"
	if opts.BackfaceCulling {
		culling = opts.FrontFace.String()
	}
	lines := []string{
		fmt.Sprintf("%.0f fps  %s", h.fps, stats),
		fmt.Sprintf("%s  %s  cull:%s", opts.Fill, opts.Line, culling),
	}
	if err != nil {
		lines = append(lines, err.Error())
	}

	fb.DrawPanel(1, 1, lines, render.ColorWhite, hudBackdrop)
}

var hudBackdrop = color.RGBA{24, 24, 24, 255}

// toggleOption flips the render option bound to key. It reports false for
// keys that are not option toggles.
func toggleOption(opts *render.Options, key string) bool {
	switch key {
	case "f":
		opts.Fill = toggle(opts.Fill, render.FillSolid, render.FillOutline)
	case "c":
		opts.BackfaceCulling = !opts.BackfaceCulling
	case "b":
		opts.Line = toggle(opts.Line, render.LineBresenham, render.LineParametric)
	case "v":
		opts.FrontFace = toggle(opts.FrontFace, render.FrontCounterClockwise, render.FrontClockwise)
	default:
		return false
	}
	return true
}

// drawGuides overlays the ground grid, axes, mesh bounds and orbit target.
func drawGuides(fb *render.Framebuffer, cam render.Camera, line render.LineAlgorithm, mesh *models.Mesh, model math3d.Mat4, target math3d.Vec3) error {
	wf, err := render.NewWireframe(cam, fb, line)
	if err != nil {
		return err
	}
	wf.DrawSceneGuides(render.MeshAABB(mesh), model, target)
	return nil
}

func view(s *scene.Scene, mesh *models.Mesh) error {
	fps := max(*targetFPS, 1)

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	fb := render.NewFramebuffer(render.TerminalSize(width, height))
	cam, err := s.CameraFor(aspect(fb))
	if err != nil {
		return err
	}
	r := render.NewRenderer(s.Options())
	orbit := NewOrbitState(fps, cam, s.Camera.Target.Vec3())
	hud := NewHUD()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		mouseDown              bool
		lastMouseX, lastMouseY int
		guides                 bool
	)
	start := time.Now()
	zoomStep := orbit.Distance / 20

	events := term.Events()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb.Resize(render.TerminalSize(width, height))
				cam.Aspect = aspect(fb)
				slog.Debug("resized", "cols", width, "rows", height)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "q", "ctrl+c"):
					return nil
				case ev.MatchString("w", "up"):
					orbit.ApplyImpulse(0, 0.02)
				case ev.MatchString("s", "down"):
					orbit.ApplyImpulse(0, -0.02)
				case ev.MatchString("a", "left"):
					orbit.ApplyImpulse(-0.03, 0)
				case ev.MatchString("d", "right"):
					orbit.ApplyImpulse(0.03, 0)
				case ev.MatchString("space"):
					orbit.ApplyImpulse((rand.Float64()-0.5)*0.3, (rand.Float64()-0.5)*0.1)
				case ev.MatchString("+", "="):
					orbit.Zoom(-zoomStep)
				case ev.MatchString("-", "_"):
					orbit.Zoom(zoomStep)
				case ev.MatchString("r"):
					orbit.Reset()
				case ev.MatchString("f", "c", "b", "v"):
					toggleOption(&r.Options, ev.String())
				case ev.MatchString("g"):
					guides = !guides
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					hud.Visible = !hud.Visible
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					orbit.ApplyImpulse(float64(dx)*0.01, float64(dy)*0.01)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					orbit.Zoom(-zoomStep)
				case uv.MouseWheelDown:
					orbit.Zoom(zoomStep)
				}
			}

		case <-ticker.C:
			if err := orbit.Update(&cam); err != nil {
				slog.Warn("orbit camera", "err", err)
			}
			model := s.Model(time.Since(start).Seconds())
			stats, err := r.RenderFrame(mesh, model, cam, fb.Width, fb.Height, fb)
			if err != nil {
				slog.Warn("render frame", "err", err)
			}
			if guides {
				if err := drawGuides(fb, cam, r.Options.Line, mesh, model, orbit.Target); err != nil {
					slog.Warn("scene guides", "err", err)
				}
			}

			hud.UpdateFPS()
			hud.Draw(fb, stats, r.Options, err)

			fb.Draw(term, term.Bounds())
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

func toggle[T comparable](v, a, b T) T {
	if v == a {
		return b
	}
	return a
}

func aspect(fb *render.Framebuffer) float64 {
	if fb.Width == 0 || fb.Height == 0 {
		return 1
	}
	return float64(fb.Width) / float64(fb.Height)
}

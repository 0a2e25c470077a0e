// Package scene loads YAML scene files describing a mesh, its transform, a
// camera and render options.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
	"github.com/taigrr/softrender/pkg/render"
	"gopkg.in/yaml.v3"
)

const (
	PrimitiveCube = "cube"
	PrimitiveQuad = "quad"
)

var (
	ErrUnknownPrimitive = errors.New("scene: unknown primitive")
	ErrInvalidColor     = errors.New("scene: invalid color")
)

// Scene is the on-disk description of a single-mesh scene.
type Scene struct {
	Version   int       `yaml:"version"`
	Name      string    `yaml:"name"`
	Viewport  Viewport  `yaml:"viewport"`
	Camera    Camera    `yaml:"camera"`
	Render    Render    `yaml:"render"`
	Mesh      Mesh      `yaml:"mesh"`
	Transform Transform `yaml:"transform"`

	// dir resolves relative mesh paths. Empty for parsed scenes.
	dir string
}

type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Camera mirrors render.Camera with the field of view in degrees and a
// look-at target instead of a forward vector.
type Camera struct {
	Projection  render.Projection `yaml:"projection"`
	Position    Vec               `yaml:"position"`
	Target      Vec               `yaml:"target"`
	Up          Vec               `yaml:"up"`
	FOV         float64           `yaml:"fov"`
	OrthoHeight float64           `yaml:"orthoHeight,omitempty"`
	Near        float64           `yaml:"near"`
	Far         float64           `yaml:"far"`
}

// Render holds render.Options fields. Pointer fields distinguish "unset"
// from an explicit false.
type Render struct {
	Fill            render.FillMode      `yaml:"fill"`
	Line            render.LineAlgorithm `yaml:"line"`
	BackfaceCulling *bool                `yaml:"backfaceCulling,omitempty"`
	FrontFace       render.Winding       `yaml:"frontFace"`
	Depth           *render.DepthRange   `yaml:"depth,omitempty"`
	ClampToViewport bool                 `yaml:"clampToViewport,omitempty"`
	FrustumReject   *bool                `yaml:"frustumReject,omitempty"`
	Background      Color                `yaml:"background,omitempty"`
}

// Mesh selects either a built-in primitive or a glTF file. With Fit set, a
// loaded file is centered on the origin and scaled so its largest
// dimension equals Size.
type Mesh struct {
	Primitive string  `yaml:"primitive,omitempty"`
	Path      string  `yaml:"path,omitempty"`
	Size      float64 `yaml:"size,omitempty"`
	Fit       bool    `yaml:"fit,omitempty"`
	Colors    []Color `yaml:"colors,omitempty"`
}

// Transform places the mesh in the world. Rotations are in degrees and
// applied about X, then Y, then Z. Spin is an extra rotation in degrees per
// second that viewers apply over time.
type Transform struct {
	Translate Vec     `yaml:"translate"`
	Rotate    Vec     `yaml:"rotate"`
	Scale     float64 `yaml:"scale"`
	Spin      Vec     `yaml:"spin,omitempty"`
}

// Vec is a 3-component vector written as a YAML sequence.
type Vec [3]float64

// Vec3 converts v to a math3d vector.
func (v Vec) Vec3() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Color is an RGB or RGBA color written as a sequence of 0-255 integers.
type Color []int

// ToRGBA converts c, defaulting alpha to 255.
func (c Color) ToRGBA() (color.RGBA, error) {
	if len(c) != 3 && len(c) != 4 {
		return color.RGBA{}, fmt.Errorf("%w: %v has %d components", ErrInvalidColor, []int(c), len(c))
	}
	var out [4]uint8
	out[3] = 255
	for i, v := range c {
		if v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("%w: component %d out of range", ErrInvalidColor, v)
		}
		out[i] = uint8(v)
	}
	return color.RGBA{out[0], out[1], out[2], out[3]}, nil
}

func (s *Scene) normalize() {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Viewport.Width == 0 {
		s.Viewport.Width = 800
	}
	if s.Viewport.Height == 0 {
		s.Viewport.Height = 600
	}

	c := &s.Camera
	if c.Position == (Vec{}) && c.Target == (Vec{}) {
		c.Position = Vec{0, 0, -10}
	}
	if c.Up == (Vec{}) {
		c.Up = Vec{0, 1, 0}
	}
	if c.FOV == 0 {
		c.FOV = 60
	}
	if c.OrthoHeight == 0 && c.Projection == render.ProjectionOrthographic {
		c.OrthoHeight = 4
	}
	if c.Near == 0 && c.Far == 0 {
		c.Near, c.Far = 0.1, 100
	}

	if s.Mesh.Primitive == "" && s.Mesh.Path == "" {
		s.Mesh.Primitive = PrimitiveCube
	}
	if s.Mesh.Size == 0 {
		s.Mesh.Size = 2
	}
	if s.Transform.Scale == 0 {
		s.Transform.Scale = 1
	}
}

// Validate checks the parts of a scene that do not need the mesh file.
func (s *Scene) Validate() error {
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return fmt.Errorf("viewport %dx%d: %w", s.Viewport.Width, s.Viewport.Height, render.ErrInvalidViewport)
	}
	if s.Mesh.Path == "" {
		switch s.Mesh.Primitive {
		case PrimitiveCube, PrimitiveQuad:
		default:
			return fmt.Errorf("%w %q", ErrUnknownPrimitive, s.Mesh.Primitive)
		}
	}
	for _, c := range s.Mesh.Colors {
		if _, err := c.ToRGBA(); err != nil {
			return fmt.Errorf("mesh colors: %w", err)
		}
	}
	if len(s.Render.Background) > 0 {
		if _, err := s.Render.Background.ToRGBA(); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	}
	if _, err := s.Camera.Build(s.Aspect()); err != nil {
		return err
	}
	return nil
}

// Default returns the scene used when no file is given: a 2-unit cube with
// the default face colors ten units in front of a 60° perspective camera.
func Default() *Scene {
	var s Scene
	s.normalize()
	return &s
}

// SetMeshPath replaces the mesh with a glTF file. A relative path resolves
// against the working directory.
func (s *Scene) SetMeshPath(path string) {
	s.Mesh.Primitive = ""
	s.Mesh.Path = path
	s.Mesh.Fit = true
	s.dir = ""
}

// Parse decodes a scene from YAML, fills in defaults and validates it.
// Relative mesh paths resolve against the working directory.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scene file. Relative mesh paths resolve against the file's
// directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Write encodes a scene as YAML, filling in defaults first.
func Write(path string, s Scene) error {
	s.normalize()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&s); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close scene: %w", err)
	}
	return nil
}

// Aspect returns the viewport aspect ratio.
func (s *Scene) Aspect() float64 {
	return float64(s.Viewport.Width) / float64(s.Viewport.Height)
}

// Build converts the camera description into a render.Camera.
func (c Camera) Build(aspect float64) (render.Camera, error) {
	var (
		cam render.Camera
		err error
	)
	pos, target, up := c.Position.Vec3(), c.Target.Vec3(), c.Up.Vec3()
	if c.Projection == render.ProjectionOrthographic {
		cam, err = render.NewOrthographicCamera(pos, target, up, c.OrthoHeight, aspect, c.Near, c.Far)
	} else {
		cam, err = render.NewCamera(pos, target, up, c.FOV*math.Pi/180, aspect, c.Near, c.Far)
	}
	if err != nil {
		return render.Camera{}, fmt.Errorf("camera: %w", err)
	}
	return cam, nil
}

// CameraFor returns the scene camera for the given aspect ratio.
func (s *Scene) CameraFor(aspect float64) (render.Camera, error) {
	return s.Camera.Build(aspect)
}

// Options returns the render options, starting from render.DefaultOptions.
func (s *Scene) Options() render.Options {
	opts := render.DefaultOptions()
	r := s.Render
	opts.Fill = r.Fill
	opts.Line = r.Line
	opts.FrontFace = r.FrontFace
	opts.ClampToViewport = r.ClampToViewport
	if r.BackfaceCulling != nil {
		opts.BackfaceCulling = *r.BackfaceCulling
	}
	if r.FrustumReject != nil {
		opts.FrustumReject = *r.FrustumReject
	}
	if r.Depth != nil {
		opts.Depth = *r.Depth
	}
	if bg, err := r.Background.ToRGBA(); err == nil {
		opts.Background = bg
	}
	return opts
}

// LoadMesh builds or loads the scene's mesh.
func (s *Scene) LoadMesh() (*models.Mesh, error) {
	colors := make([]color.RGBA, 0, len(s.Mesh.Colors))
	for _, c := range s.Mesh.Colors {
		rgba, err := c.ToRGBA()
		if err != nil {
			return nil, err
		}
		colors = append(colors, rgba)
	}

	if s.Mesh.Path != "" {
		path := s.Mesh.Path
		if !filepath.IsAbs(path) && s.dir != "" {
			path = filepath.Join(s.dir, path)
		}
		mesh, err := models.LoadGLTF(path)
		if err != nil {
			return nil, fmt.Errorf("load mesh: %w", err)
		}
		if len(colors) > 0 {
			mesh.SetColor(colors[0])
		}
		if s.Mesh.Fit {
			mesh = mesh.Normalized(s.Mesh.Size)
		}
		return mesh, nil
	}

	switch s.Mesh.Primitive {
	case PrimitiveCube:
		return models.NewCube(s.Mesh.Size, colors...), nil
	case PrimitiveQuad:
		c := render.ColorWhite
		if len(colors) > 0 {
			c = colors[0]
		}
		return models.NewQuad(s.Mesh.Size, c), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPrimitive, s.Mesh.Primitive)
	}
}

// Model returns the model matrix at time t seconds.
func (s *Scene) Model(t float64) math3d.Mat4 {
	tr := s.Transform
	rot := tr.Rotate.Vec3().Add(tr.Spin.Vec3().Scale(t))
	return math3d.Translate(tr.Translate.Vec3()).
		Mul(math3d.RotateAxisDegrees(math3d.V3(0, 0, 1), rot.Z)).
		Mul(math3d.RotateAxisDegrees(math3d.V3(0, 1, 0), rot.Y)).
		Mul(math3d.RotateAxisDegrees(math3d.V3(1, 0, 0), rot.X)).
		Mul(math3d.ScaleUniform(tr.Scale))
}

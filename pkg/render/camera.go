package render

import (
	"fmt"
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
)

// Projection selects the camera lens.
type Projection int

const (
	ProjectionPerspective Projection = iota
	ProjectionOrthographic
)

func (p Projection) String() string {
	switch p {
	case ProjectionPerspective:
		return "perspective"
	case ProjectionOrthographic:
		return "orthographic"
	default:
		return fmt.Sprintf("Projection(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Projection) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Projection) UnmarshalText(text []byte) error {
	switch string(text) {
	case "perspective":
		*p = ProjectionPerspective
	case "orthographic", "ortho":
		*p = ProjectionOrthographic
	default:
		return fmt.Errorf("unknown projection %q", text)
	}
	return nil
}

// maxPitch keeps Orbit away from the poles where forward and up align.
const maxPitch = math.Pi/2 - 0.01

// Camera describes a viewpoint and lens. Forward and Up are unit length and
// orthogonal; the right vector is derived from them on demand.
//
// View space is left-handed: the camera looks down +Z with +Y up and +X to
// the right.
type Camera struct {
	Position math3d.Vec3
	Forward  math3d.Vec3
	Up       math3d.Vec3

	Projection  Projection
	FOV         float64 // Vertical field of view in radians (perspective)
	OrthoHeight float64 // Height of the view volume in world units (orthographic)
	Aspect      float64 // Width / Height
	Near        float64
	Far         float64
}

// NewCamera creates a perspective camera at position looking at target.
// up is a hint; it is re-orthogonalized against the view direction.
func NewCamera(position, target, up math3d.Vec3, fov, aspect, near, far float64) (Camera, error) {
	c := Camera{
		Position:   position,
		Projection: ProjectionPerspective,
		FOV:        fov,
		Aspect:     aspect,
		Near:       near,
		Far:        far,
	}
	if err := c.orient(target.Sub(position), up); err != nil {
		return Camera{}, err
	}
	if err := c.Validate(); err != nil {
		return Camera{}, err
	}
	return c, nil
}

// NewOrthographicCamera creates an orthographic camera at position looking
// at target. height is the height of the view volume in world units.
func NewOrthographicCamera(position, target, up math3d.Vec3, height, aspect, near, far float64) (Camera, error) {
	c := Camera{
		Position:    position,
		Projection:  ProjectionOrthographic,
		OrthoHeight: height,
		Aspect:      aspect,
		Near:        near,
		Far:         far,
	}
	if err := c.orient(target.Sub(position), up); err != nil {
		return Camera{}, err
	}
	if err := c.Validate(); err != nil {
		return Camera{}, err
	}
	return c, nil
}

// orient sets Forward and Up from a view direction and an up hint.
func (c *Camera) orient(dir, upHint math3d.Vec3) error {
	forward, err := dir.NormalizeChecked()
	if err != nil {
		return fmt.Errorf("%w: position equals target", ErrInvalidCamera)
	}
	right, err := upHint.Cross(forward).NormalizeChecked()
	if err != nil {
		return fmt.Errorf("%w: up is parallel to the view direction", ErrInvalidCamera)
	}
	c.Forward = forward
	c.Up = forward.Cross(right)
	return nil
}

// Validate reports whether the camera can produce view and projection
// matrices. Errors wrap ErrInvalidCamera.
func (c Camera) Validate() error {
	if c.Forward.Len() == 0 || c.Up.Len() == 0 {
		return fmt.Errorf("%w: zero forward or up vector", ErrInvalidCamera)
	}
	if c.Up.Cross(c.Forward).Len() < 1e-9 {
		return fmt.Errorf("%w: up is parallel to forward", ErrInvalidCamera)
	}
	if !(c.Aspect > 0) || math.IsInf(c.Aspect, 0) {
		return fmt.Errorf("%w: aspect %v", ErrInvalidCamera, c.Aspect)
	}
	if !(c.Far > c.Near) || math.IsInf(c.Far, 0) {
		return fmt.Errorf("%w: clip planes %v..%v", ErrInvalidCamera, c.Near, c.Far)
	}
	switch c.Projection {
	case ProjectionPerspective:
		if !(c.FOV > 0 && c.FOV < math.Pi) {
			return fmt.Errorf("%w: fov %v", ErrInvalidCamera, c.FOV)
		}
		if !(c.Near > 0) {
			return fmt.Errorf("%w: near plane %v must be positive", ErrInvalidCamera, c.Near)
		}
	case ProjectionOrthographic:
		if !(c.OrthoHeight > 0) || math.IsInf(c.OrthoHeight, 0) {
			return fmt.Errorf("%w: ortho height %v", ErrInvalidCamera, c.OrthoHeight)
		}
	default:
		return fmt.Errorf("%w: %v", ErrInvalidCamera, c.Projection)
	}
	return nil
}

// Right returns the unit right vector, Up × Forward.
func (c Camera) Right() math3d.Vec3 {
	return c.Up.Cross(c.Forward).Normalize()
}

// ViewMatrix returns the world-to-view transform.
func (c Camera) ViewMatrix() (math3d.Mat4, error) {
	m, err := math3d.LookAt(c.Position, c.Position.Add(c.Forward), c.Up)
	if err != nil {
		return math3d.Identity(), fmt.Errorf("%w: %w", ErrInvalidCamera, err)
	}
	return m, nil
}

// ProjectionMatrix returns the view-to-clip transform for the camera's lens.
func (c Camera) ProjectionMatrix() (math3d.Mat4, error) {
	if err := c.Validate(); err != nil {
		return math3d.Identity(), err
	}

	var (
		m   math3d.Mat4
		err error
	)
	if c.Projection == ProjectionOrthographic {
		halfH := c.OrthoHeight / 2
		halfW := halfH * c.Aspect
		m, err = math3d.Orthographic(-halfW, halfW, -halfH, halfH, c.Near, c.Far)
	} else {
		m, err = math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
	}
	if err != nil {
		return math3d.Identity(), fmt.Errorf("%w: %w", ErrInvalidCamera, err)
	}
	return m, nil
}

// ViewProjectionMatrix returns projection * view.
func (c Camera) ViewProjectionMatrix() (math3d.Mat4, error) {
	view, err := c.ViewMatrix()
	if err != nil {
		return math3d.Identity(), err
	}
	proj, err := c.ProjectionMatrix()
	if err != nil {
		return math3d.Identity(), err
	}
	return proj.Mul(view), nil
}

// MoveForward moves the camera along its view direction (or backward if
// negative).
func (c *Camera) MoveForward(distance float64) {
	c.Position = c.Position.Add(c.Forward.Scale(distance))
}

// MoveRight moves the camera right (or left if negative).
func (c *Camera) MoveRight(distance float64) {
	c.Position = c.Position.Add(c.Right().Scale(distance))
}

// MoveUp moves the camera along the world Y axis.
func (c *Camera) MoveUp(distance float64) {
	c.Position = c.Position.Add(math3d.Up().Scale(distance))
}

// LookAt turns the camera toward target, keeping world Y as the up hint.
func (c *Camera) LookAt(target math3d.Vec3) error {
	return c.orient(target.Sub(c.Position), math3d.Up())
}

// Orbit places the camera on a sphere of the given radius around target and
// points it at target. yaw turns around the world Y axis and pitch raises
// the camera above the XZ plane, both in radians; pitch is clamped short of
// the poles. Yaw and pitch of zero put the camera on the -Z side of target.
func (c *Camera) Orbit(target math3d.Vec3, yaw, pitch, distance float64) error {
	pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))
	offset := math3d.V3(
		math.Cos(pitch)*math.Sin(yaw),
		math.Sin(pitch),
		-math.Cos(pitch)*math.Cos(yaw),
	)
	c.Position = target.Add(offset.Scale(distance))
	return c.LookAt(target)
}

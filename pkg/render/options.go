package render

import (
	"fmt"
	"image/color"
)

// FillMode selects how triangles are rasterized.
type FillMode int

const (
	FillSolid   FillMode = iota // Filled with the face color
	FillOutline                 // Three edges only
)

// LineAlgorithm selects the line stepper used for outlines.
type LineAlgorithm int

const (
	LineBresenham  LineAlgorithm = iota // Integer error-accumulator stepping
	LineParametric                      // One interpolation step per pixel of the major axis
)

// Winding names the screen-space vertex order, as seen by the viewer, that
// counts as a front face.
type Winding int

const (
	FrontCounterClockwise Winding = iota
	FrontClockwise
)

// DepthRange rejects vertices whose normalized depth falls outside
// [Min, Max]. The projection builders map near..far to 0..1.
type DepthRange struct {
	Enabled bool    `yaml:"enabled"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// Contains reports whether depth passes the range test.
// A disabled range accepts everything.
func (d DepthRange) Contains(depth float64) bool {
	return !d.Enabled || (depth >= d.Min && depth <= d.Max)
}

// Options holds every renderer knob. It is plain data; the zero value is
// usable but DefaultOptions is the intended starting point.
type Options struct {
	Fill            FillMode      `yaml:"fill"`
	Line            LineAlgorithm `yaml:"line"`
	BackfaceCulling bool          `yaml:"backfaceCulling"`
	FrontFace       Winding       `yaml:"frontFace"`
	Depth           DepthRange    `yaml:"depth"`
	// ClampToViewport pins projected points to the viewport instead of
	// letting them fall outside it.
	ClampToViewport bool `yaml:"clampToViewport"`
	// FrustumReject skips a whole mesh whose bounds are outside the view
	// frustum. It never clips individual triangles.
	FrustumReject bool       `yaml:"frustumReject"`
	Clear         bool       `yaml:"clear"`
	Background    color.RGBA `yaml:"-"`
}

// DefaultOptions returns filled rendering with backface culling,
// counter-clockwise front faces and depth rejection outside [0, 1].
func DefaultOptions() Options {
	return Options{
		Fill:            FillSolid,
		Line:            LineBresenham,
		BackfaceCulling: true,
		FrontFace:       FrontCounterClockwise,
		Depth:           DepthRange{Enabled: true, Min: 0, Max: 1},
		FrustumReject:   true,
		Clear:           true,
		Background:      ColorBlack,
	}
}

func (m FillMode) String() string {
	switch m {
	case FillSolid:
		return "solid"
	case FillOutline:
		return "outline"
	default:
		return fmt.Sprintf("FillMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m FillMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *FillMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "solid", "fill", "filled":
		*m = FillSolid
	case "outline", "wireframe":
		*m = FillOutline
	default:
		return fmt.Errorf("unknown fill mode %q", text)
	}
	return nil
}

func (a LineAlgorithm) String() string {
	switch a {
	case LineBresenham:
		return "bresenham"
	case LineParametric:
		return "parametric"
	default:
		return fmt.Sprintf("LineAlgorithm(%d)", int(a))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a LineAlgorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *LineAlgorithm) UnmarshalText(text []byte) error {
	switch string(text) {
	case "bresenham":
		*a = LineBresenham
	case "parametric":
		*a = LineParametric
	default:
		return fmt.Errorf("unknown line algorithm %q", text)
	}
	return nil
}

func (w Winding) String() string {
	switch w {
	case FrontCounterClockwise:
		return "ccw"
	case FrontClockwise:
		return "cw"
	default:
		return fmt.Sprintf("Winding(%d)", int(w))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (w Winding) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Winding) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ccw", "counterclockwise", "counter-clockwise":
		*w = FrontCounterClockwise
	case "cw", "clockwise":
		*w = FrontClockwise
	default:
		return fmt.Errorf("unknown winding %q", text)
	}
	return nil
}

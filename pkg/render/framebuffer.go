// Package render implements the software rendering pipeline: camera and
// projection, vertex projection, backface culling and rasterization into a
// Framebuffer.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

// Framebuffer is a 2D array of pixels owned by the host.
// It is cleared, not reallocated, between frames.
type Framebuffer struct {
	Width  int          // Width in pixels
	Height int          // Height in pixels
	Pixels []color.RGBA // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
// Negative dimensions are treated as zero.
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(width, 0), max(height, 0)
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Resize changes the framebuffer dimensions, reusing the pixel storage when
// it is large enough. Contents are undefined afterwards; call Clear.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	n := width * height
	if cap(fb.Pixels) >= n {
		fb.Pixels = fb.Pixels[:n]
	} else {
		fb.Pixels = make([]color.RGBA, n)
	}
	fb.Width = width
	fb.Height = height
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	if len(fb.Pixels) == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < len(fb.Pixels); i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Writes outside the buffer are silently dropped.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ColorModel implements image.Image.
func (fb *Framebuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// At implements image.Image.
func (fb *Framebuffer) At(x, y int) color.Color {
	return fb.GetPixel(x, y)
}

// Set implements draw.Image so text and image helpers can draw directly
// into the framebuffer.
func (fb *Framebuffer) Set(x, y int, c color.Color) {
	fb.SetPixel(x, y, color.RGBAModel.Convert(c).(color.RGBA))
}

// DrawRect draws a filled rectangle.
func (fb *Framebuffer) DrawRect(x, y, w, h int, c color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(fb.Bounds())
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			fb.Pixels[py*fb.Width+px] = c
		}
	}
}

// RGBABytes copies the pixels into dst as packed 8-bit RGBA, growing dst
// when needed, and returns it.
func (fb *Framebuffer) RGBABytes(dst []byte) []byte {
	n := len(fb.Pixels) * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, p := range fb.Pixels {
		dst[i*4] = p.R
		dst[i*4+1] = p.G
		dst[i*4+2] = p.B
		dst[i*4+3] = p.A
	}
	return dst
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(fb.Bounds())
	img.Pix = fb.RGBABytes(img.Pix)
	return img
}

// ImageFormat selects the encoding used by Encode.
type ImageFormat string

const (
	FormatPNG ImageFormat = "png"
	FormatBMP ImageFormat = "bmp"
)

// Encode writes the framebuffer to w in the given format.
func (fb *Framebuffer) Encode(w io.Writer, format ImageFormat) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, fb.ToImage())
	case FormatBMP:
		return bmp.Encode(w, fb.ToImage())
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	return fb.save(path, FormatPNG)
}

// SaveBMP saves the framebuffer as a BMP file.
func (fb *Framebuffer) SaveBMP(path string) error {
	return fb.save(path, FormatBMP)
}

func (fb *Framebuffer) save(path string, format ImageFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fb.Encode(f, format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return f.Close()
}

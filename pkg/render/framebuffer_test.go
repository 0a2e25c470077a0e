package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func TestFramebufferClear(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 5}, {64, 33}, {0, 0}} {
		fb := NewFramebuffer(size[0], size[1])
		fb.Clear(ColorCyan)
		for i, p := range fb.Pixels {
			if p != ColorCyan {
				t.Fatalf("%dx%d: pixel %d = %v after Clear", size[0], size[1], i, p)
			}
		}
	}
}

func TestFramebufferPixelBounds(t *testing.T) {
	fb := NewFramebuffer(4, 3)

	for _, p := range []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 3}, {100, 100}} {
		fb.SetPixel(p.X, p.Y, ColorRed) // must not panic
		if got := fb.GetPixel(p.X, p.Y); got != (color.RGBA{}) {
			t.Errorf("GetPixel(%v) = %v, want transparent", p, got)
		}
	}
	for _, px := range fb.Pixels {
		if px != (color.RGBA{}) {
			t.Fatal("out-of-bounds write landed in the buffer")
		}
	}

	fb.SetPixel(3, 2, ColorRed)
	if got := fb.Pixels[2*4+3]; got != ColorRed {
		t.Errorf("pixel (3,2) = %v, want red", got)
	}
}

func TestNewFramebufferNegative(t *testing.T) {
	fb := NewFramebuffer(-3, 5)
	if fb.Width != 0 || len(fb.Pixels) != 0 {
		t.Errorf("NewFramebuffer(-3, 5) = %dx%d with %d pixels", fb.Width, fb.Height, len(fb.Pixels))
	}
}

func TestFramebufferResize(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	fb.Resize(5, 4)
	if fb.Width != 5 || fb.Height != 4 || len(fb.Pixels) != 20 {
		t.Fatalf("after shrink: %dx%d, %d pixels", fb.Width, fb.Height, len(fb.Pixels))
	}
	if cap(fb.Pixels) != 100 {
		t.Errorf("shrinking reallocated: cap %d", cap(fb.Pixels))
	}

	fb.Resize(20, 20)
	if len(fb.Pixels) != 400 {
		t.Errorf("after grow: %d pixels, want 400", len(fb.Pixels))
	}
}

func TestFramebufferDrawImage(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	var dst draw.Image = fb

	draw.Draw(dst, image.Rect(2, 2, 4, 4), image.NewUniform(ColorYellow), image.Point{}, draw.Src)
	if got := fb.GetPixel(3, 3); got != ColorYellow {
		t.Errorf("pixel (3,3) = %v, want yellow", got)
	}
	if got := fb.GetPixel(4, 4); got != (color.RGBA{}) {
		t.Errorf("pixel (4,4) = %v, want untouched", got)
	}
}

func TestFramebufferDrawRect(t *testing.T) {
	fb := NewFramebuffer(5, 5)
	fb.DrawRect(3, 3, 10, 10, ColorBlue)
	count := 0
	for _, p := range fb.Pixels {
		if p == ColorBlue {
			count++
		}
	}
	if count != 4 {
		t.Errorf("DrawRect clipped to %d pixels, want 4", count)
	}
}

func TestFramebufferRGBABytes(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.SetPixel(0, 0, RGB(1, 2, 3))
	fb.SetPixel(1, 0, color.RGBA{4, 5, 6, 7})

	got := fb.RGBABytes(nil)
	want := []byte{1, 2, 3, 255, 4, 5, 6, 7}
	if !bytes.Equal(got, want) {
		t.Errorf("RGBABytes = %v, want %v", got, want)
	}

	reused := fb.RGBABytes(make([]byte, 0, 64))
	if cap(reused) != 64 {
		t.Errorf("RGBABytes did not reuse dst capacity")
	}
}

func TestFramebufferEncode(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(ColorBlack)
	fb.SetPixel(2, 1, ColorMagenta)

	tests := []struct {
		format ImageFormat
		decode func(*bytes.Reader) (image.Image, error)
	}{
		{FormatPNG, func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }},
		{FormatBMP, func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }},
	}

	for _, tc := range tests {
		t.Run(string(tc.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := fb.Encode(&buf, tc.format); err != nil {
				t.Fatal(err)
			}
			img, err := tc.decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds() != fb.Bounds() {
				t.Errorf("bounds = %v, want %v", img.Bounds(), fb.Bounds())
			}
			r, g, b, _ := img.At(2, 1).RGBA()
			if r>>8 != 255 || g>>8 != 0 || b>>8 != 255 {
				t.Errorf("pixel (2,1) = %d,%d,%d, want magenta", r>>8, g>>8, b>>8)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		if err := fb.Encode(&bytes.Buffer{}, "gif"); err == nil {
			t.Error("Encode with unknown format should fail")
		}
	})
}

func TestFramebufferSave(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Clear(ColorWhite)
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "frame.png")
	if err := fb.SavePNG(pngPath); err != nil {
		t.Fatal(err)
	}
	bmpPath := filepath.Join(dir, "frame.bmp")
	if err := fb.SaveBMP(bmpPath); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{pngPath, bmpPath} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}

	if err := fb.SavePNG(filepath.Join(dir, "missing", "frame.png")); err == nil {
		t.Error("SavePNG into a missing directory should fail")
	}
}

func BenchmarkFramebufferClear(b *testing.B) {
	fb := NewFramebuffer(320, 240)

	for b.Loop() {
		fb.Clear(ColorBlack)
	}
}

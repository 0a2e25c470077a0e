package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelHeight is the height in pixels of one line drawn by DrawLabel.
var LabelHeight = basicfont.Face7x13.Height

// DrawLabel draws text with its top-left corner at (x, y) using a fixed
// 7x13 bitmap font. Glyphs outside the buffer are clipped.
func (fb *Framebuffer) DrawLabel(x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  fb,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}

// LabelWidth returns the width in pixels DrawLabel uses for text.
func LabelWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

// DrawPanel draws lines of text top to bottom starting at (x, y) over a
// filled backdrop one pixel larger than the text on every side.
func (fb *Framebuffer) DrawPanel(x, y int, lines []string, fg, bg color.RGBA) {
	if len(lines) == 0 {
		return
	}
	width := 0
	for _, line := range lines {
		width = max(width, LabelWidth(line))
	}
	fb.DrawRect(x-1, y-1, width+2, len(lines)*LabelHeight+2, bg)
	for i, line := range lines {
		fb.DrawLabel(x, y+i*LabelHeight, line, fg)
	}
}

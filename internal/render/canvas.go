package render

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/dailypush/homedash/internal/layout"
)

const (
	// Ink is a set pixel on either layer.
	Ink = image1bit.Off
	// Paper is the background.
	Paper = image1bit.On
)

// Canvas is the two-layer bitmap pushed to the panel. Both layers always
// share the same bounds.
type Canvas struct {
	Primary *image1bit.VerticalLSB
	Accent  *image1bit.VerticalLSB
}

// NewCanvas returns a canvas of the given bounds with both layers blank.
func NewCanvas(r image.Rectangle) *Canvas {
	c := &Canvas{
		Primary: image1bit.NewVerticalLSB(r),
		Accent:  image1bit.NewVerticalLSB(r),
	}
	c.clear(r)
	return c
}

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle {
	return c.Primary.Bounds()
}

// Inked reports whether the pixel at (x, y) is set on the given layer.
func (c *Canvas) Inked(ink layout.Ink, x, y int) bool {
	return c.layer(ink).BitAt(x, y) == Ink
}

func (c *Canvas) layer(ink layout.Ink) *image1bit.VerticalLSB {
	if ink == layout.Accent {
		return c.Accent
	}
	return c.Primary
}

// clear resets r to background on both layers.
func (c *Canvas) clear(r image.Rectangle) {
	draw.Draw(c.Primary, r, &image.Uniform{C: Paper}, image.Point{}, draw.Src)
	draw.Draw(c.Accent, r, &image.Uniform{C: Paper}, image.Point{}, draw.Src)
}

func (c *Canvas) erase(ink layout.Ink, r image.Rectangle) {
	draw.Draw(c.layer(ink), r, &image.Uniform{C: Paper}, image.Point{}, draw.Src)
}

func (c *Canvas) fill(ink layout.Ink, r image.Rectangle) {
	draw.Draw(c.layer(ink), r, &image.Uniform{C: Ink}, image.Point{}, draw.Src)
}

// text draws it with the top-left of its glyph box at (it.X, it.Y). Pixels
// outside clip are left alone.
func (c *Canvas) text(clip image.Rectangle, it Item) {
	d := font.Drawer{
		Dst:  clipped{Image: c.layer(it.Ink), r: clip},
		Src:  image.NewUniform(Ink),
		Face: it.Face,
		Dot:  fixed.P(it.X, it.Y+ascent(it.Face)),
	}
	d.DrawString(it.Text)
}

// clipped narrows the bounds of a draw.Image so draw operations stay
// inside r.
type clipped struct {
	draw.Image
	r image.Rectangle
}

func (c clipped) Bounds() image.Rectangle {
	return c.r.Intersect(c.Image.Bounds())
}

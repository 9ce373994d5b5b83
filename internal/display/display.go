// Package display pushes rendered frames to an output: an e-paper panel
// driven through periph.io, or PNG files for development.
package display

import (
	"errors"
	"image"
	"image/color"
)

// ErrHardware wraps every failure talking to a panel.
var ErrHardware = errors.New("display hardware failure")

// Sink receives the two ink layers of a frame. Init must be called before
// the first Clear or Display, and Shutdown when done. Shutdown(true) also
// releases the bus; a sink shut down with cleanup=false can be woken with
// Init again.
type Sink interface {
	Bounds() image.Rectangle
	Init() error
	Clear() error
	Display(primary, accent image.Image) error
	Shutdown(cleanup bool) error
}

// Ink colors of a composed frame.
var (
	White  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Black  = color.RGBA{A: 0xff}
	Red    = color.RGBA{R: 0xff, A: 0xff}
	Yellow = color.RGBA{R: 0xff, G: 0xff, A: 0xff}
)

// Compose flattens the two layers into one paletted image: accent ink
// wins over primary ink, which wins over paper. A layer pixel is ink when
// it is closer to black than to white. accentColor is the color accent
// ink is shown in.
func Compose(primary, accent image.Image, accentColor color.Color) *image.Paletted {
	r := primary.Bounds()
	img := image.NewPaletted(r, color.Palette{White, Black, accentColor})
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			switch {
			case inked(accent.At(x, y)):
				img.SetColorIndex(x, y, 2)
			case inked(primary.At(x, y)):
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

func inked(c color.Color) bool {
	y := color.GrayModel.Convert(c).(color.Gray).Y
	return y < 0x80
}

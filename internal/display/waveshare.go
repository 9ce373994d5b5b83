package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"
)

// Waveshare drives a Waveshare 2.13" v4 HAT. The panel is black and white
// only, so accent ink is shown black. Frames are landscape and rotated to
// the panel's portrait orientation on the way out.
type Waveshare struct {
	port spi.PortCloser
	dev  *waveshare2in13v4.Dev
}

// OpenWaveshare initializes the host and connects to the HAT.
func OpenWaveshare(spiName string) (*Waveshare, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %v", ErrHardware, err)
	}
	port, err := spireg.Open(spiName)
	if err != nil {
		return nil, fmt.Errorf("%w: opening spi %q: %v", ErrHardware, spiName, err)
	}
	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: waveshare: %v", ErrHardware, err)
	}
	return &Waveshare{port: port, dev: dev}, nil
}

// Bounds is the landscape frame size.
func (w *Waveshare) Bounds() image.Rectangle {
	b := w.dev.Bounds()
	return image.Rect(0, 0, b.Dy(), b.Dx())
}

func (w *Waveshare) Init() error {
	if err := w.dev.Init(); err != nil {
		return fmt.Errorf("%w: init: %v", ErrHardware, err)
	}
	return nil
}

func (w *Waveshare) Clear() error {
	if err := w.dev.Clear(color.White); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrHardware, err)
	}
	return nil
}

func (w *Waveshare) Display(primary, accent image.Image) error {
	portrait := toPortrait(Compose(primary, accent, Black))
	img := image1bit.NewVerticalLSB(w.dev.Bounds())
	draw.Draw(img, img.Bounds(), portrait, image.Point{}, draw.Src)
	if err := w.dev.Draw(img.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("%w: draw: %v", ErrHardware, err)
	}
	return nil
}

// Shutdown puts the panel to deep sleep; with cleanup it also halts the
// device and closes the bus.
func (w *Waveshare) Shutdown(cleanup bool) error {
	if err := w.dev.Sleep(); err != nil {
		return fmt.Errorf("%w: sleep: %v", ErrHardware, err)
	}
	if !cleanup {
		return nil
	}
	if err := w.dev.Halt(); err != nil {
		return fmt.Errorf("%w: halt: %v", ErrHardware, err)
	}
	if err := w.port.Close(); err != nil {
		return fmt.Errorf("%w: closing spi: %v", ErrHardware, err)
	}
	return nil
}

// toPortrait turns a landscape frame 90 degrees clockwise: portrait pixel
// (x, y) comes from landscape pixel (y, h-1-x).
func toPortrait(src image.Image) *image.NRGBA {
	return imaging.Rotate270(src)
}

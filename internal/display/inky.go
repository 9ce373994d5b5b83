package display

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/inky"
	"periph.io/x/host/v3"
)

// InkyConfig selects the board and its wiring.
type InkyConfig struct {
	// Model is "phat" or "what".
	Model string
	// Color is the third ink, "red" or "yellow".
	Color string
	SPI   string
	DC    string
	Reset string
	Busy  string
}

// Inky drives a Pimoroni Inky pHAT/wHAT, which shows black, white and one
// accent color. The pHAT is portrait; its frames are landscape and rotated
// on the way out.
type Inky struct {
	port   spi.PortCloser
	dev    *inky.Dev
	accent color.Color
	rotate bool
}

// OpenInky initializes the host and connects to the board.
func OpenInky(cfg InkyConfig) (*Inky, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %v", ErrHardware, err)
	}
	dc, err := outPin(cfg.DC)
	if err != nil {
		return nil, err
	}
	reset, err := outPin(cfg.Reset)
	if err != nil {
		return nil, err
	}
	busy := gpioreg.ByName(cfg.Busy)
	if busy == nil {
		return nil, fmt.Errorf("%w: gpio %q not found", ErrHardware, cfg.Busy)
	}

	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, fmt.Errorf("%w: opening spi %q: %v", ErrHardware, cfg.SPI, err)
	}
	i, err := newInky(port, dc, reset, busy, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return i, nil
}

func newInky(port spi.PortCloser, dc, reset gpio.PinOut, busy gpio.PinIn, cfg InkyConfig) (*Inky, error) {
	model := inky.PHAT
	if strings.EqualFold(cfg.Model, "what") {
		model = inky.WHAT
	}
	ink, accent := inky.Red, color.Color(Red)
	if strings.EqualFold(cfg.Color, "yellow") {
		ink, accent = inky.Yellow, Yellow
	}

	dev, err := inky.New(port, dc, reset, busy, &inky.Opts{
		Model:       model,
		ModelColor:  ink,
		BorderColor: inky.White,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: inky: %v", ErrHardware, err)
	}
	b := dev.Bounds()
	return &Inky{port: port, dev: dev, accent: accent, rotate: b.Dx() < b.Dy()}, nil
}

func outPin(name string) (gpio.PinOut, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: gpio %q not found", ErrHardware, name)
	}
	return p, nil
}

// Bounds is the landscape frame size.
func (i *Inky) Bounds() image.Rectangle {
	b := i.dev.Bounds()
	if i.rotate {
		return image.Rect(0, 0, b.Dy(), b.Dx())
	}
	return b
}

// Init is a no-op: the board resets itself on every update.
func (i *Inky) Init() error { return nil }

func (i *Inky) Clear() error {
	blank := image.NewPaletted(i.dev.Bounds(), color.Palette{White})
	if err := i.dev.Draw(i.dev.Bounds(), blank, image.Point{}); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrHardware, err)
	}
	return nil
}

func (i *Inky) Display(primary, accent image.Image) error {
	if !primary.Bounds().Eq(i.Bounds()) || !accent.Bounds().Eq(i.Bounds()) {
		return fmt.Errorf("%w: frame %v does not match panel %v", ErrHardware, primary.Bounds(), i.Bounds())
	}
	var frame image.Image = Compose(primary, accent, i.accent)
	if i.rotate {
		frame = toPortrait(frame)
	}
	if err := i.dev.Draw(i.dev.Bounds(), frame, image.Point{}); err != nil {
		return fmt.Errorf("%w: draw: %v", ErrHardware, err)
	}
	return nil
}

func (i *Inky) Shutdown(cleanup bool) error {
	if err := i.dev.Halt(); err != nil {
		return fmt.Errorf("%w: halt: %v", ErrHardware, err)
	}
	if cleanup {
		if err := i.port.Close(); err != nil {
			return fmt.Errorf("%w: closing spi: %v", ErrHardware, err)
		}
	}
	return nil
}

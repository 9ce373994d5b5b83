package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Sizes are the point sizes of the three faces at 72 DPI, so one point is
// one pixel.
type Sizes struct {
	Large  float64
	Medium float64
	Small  float64
}

// Fonts are the faces the renderer draws with.
type Fonts struct {
	Large  font.Face
	Medium font.Face
	Small  font.Face
}

// Close releases the faces.
func (f *Fonts) Close() error {
	var first error
	for _, face := range []font.Face{f.Large, f.Medium, f.Small} {
		if face == nil {
			continue
		}
		if err := face.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LoadFonts opens path (.ttf, .otf or .ttc; the first font of a collection
// is used) at the three sizes. An empty path falls back to the bundled Go
// fonts, bold for the large face.
func LoadFonts(path string, sizes Sizes) (*Fonts, error) {
	var regular, large *opentype.Font
	if path == "" {
		var err error
		if regular, err = opentype.Parse(goregular.TTF); err != nil {
			return nil, fmt.Errorf("parsing bundled font: %w", err)
		}
		if large, err = opentype.Parse(gobold.TTF); err != nil {
			return nil, fmt.Errorf("parsing bundled font: %w", err)
		}
	} else {
		f, err := parseFontFile(path)
		if err != nil {
			return nil, err
		}
		regular, large = f, f
	}

	fonts := &Fonts{}
	var err error
	if fonts.Large, err = newFace(large, sizes.Large); err != nil {
		return nil, err
	}
	if fonts.Medium, err = newFace(regular, sizes.Medium); err != nil {
		return nil, err
	}
	if fonts.Small, err = newFace(regular, sizes.Small); err != nil {
		return nil, err
	}
	return fonts, nil
}

func parseFontFile(path string) (*opentype.Font, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(b)
		if err != nil {
			return nil, fmt.Errorf("parsing font collection %s: %w", path, err)
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("font collection %s: %w", path, err)
		}
		return f, nil
	}
	f, err := opentype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	return f, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %.0fpt face: %w", size, err)
	}
	return face, nil
}

// Metrics measures strings in one face. It satisfies layout.Measurer.
type Metrics struct {
	Face font.Face
}

// Measure returns the glyph box of s drawn with its top-left corner at the
// origin: the advance width (or ink extent, if wider) and the height from
// the ascent line down to the lowest ink.
func (m Metrics) Measure(s string) (int, int) {
	if s == "" {
		return 0, 0
	}
	bounds, advance := font.BoundString(m.Face, s)
	w := advance.Ceil()
	if x := bounds.Max.X.Ceil(); x > w {
		w = x
	}
	return w, ascent(m.Face) + max(0, bounds.Max.Y.Ceil())
}

func ascent(face font.Face) int {
	return face.Metrics().Ascent.Ceil()
}

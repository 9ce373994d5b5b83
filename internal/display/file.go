package display

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// File writes each frame to a PNG, accent ink in red. It stands in for a
// panel on machines without one.
type File struct {
	Path string
	size image.Rectangle
}

// NewFile returns a sink writing w x h frames to path.
func NewFile(path string, w, h int) *File {
	return &File{Path: path, size: image.Rect(0, 0, w, h)}
}

func (f *File) Bounds() image.Rectangle { return f.size }

// Init creates the output directory.
func (f *File) Init() error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrHardware, err)
	}
	return nil
}

// Clear writes a blank frame.
func (f *File) Clear() error {
	return f.save(imaging.New(f.size.Dx(), f.size.Dy(), color.White))
}

func (f *File) Display(primary, accent image.Image) error {
	if !primary.Bounds().Eq(accent.Bounds()) {
		return fmt.Errorf("%w: layer bounds differ: %v vs %v", ErrHardware, primary.Bounds(), accent.Bounds())
	}
	return f.save(Compose(primary, accent, Red))
}

func (f *File) Shutdown(bool) error { return nil }

func (f *File) save(img image.Image) error {
	if err := imaging.Save(img, f.Path); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrHardware, f.Path, err)
	}
	return nil
}

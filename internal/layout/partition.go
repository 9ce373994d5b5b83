// Package layout computes where things go on the dashboard canvas: the pane
// rectangles and the word-wrapped placement of task text. It does not touch
// pixels; render paints what layout decides.
package layout

import "image"

// SeparatorWidth is the width of the vertical line between the two halves.
const SeparatorWidth = 2

// Panes holds the four content rectangles of the dashboard and the
// separator drawn over the boundary between the left and right halves.
type Panes struct {
	Weather    image.Rectangle
	Forecast   image.Rectangle
	Departures image.Rectangle
	Tasks      image.Rectangle
	Separator  image.Rectangle
}

// Partition splits a w x h canvas. The left half gets the floor of w/2 and
// the right half the rest, so an odd width gives the extra column to the
// right. The left half is split 30/70 into weather and forecast, the right
// half 25/75 into departures and tasks.
func Partition(w, h int) Panes {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	leftW := w / 2
	weatherH := int(float64(h) * 0.30)
	departuresH := int(float64(h) * 0.25)

	sx0 := leftW - SeparatorWidth/2
	sx1 := sx0 + SeparatorWidth
	if sx0 < 0 {
		sx0 = 0
	}
	if sx1 > w {
		sx1 = w
	}

	return Panes{
		Weather:    image.Rect(0, 0, leftW, weatherH),
		Forecast:   image.Rect(0, weatherH, leftW, h),
		Departures: image.Rect(leftW, 0, w, departuresH),
		Tasks:      image.Rect(leftW, departuresH, w, h),
		Separator:  image.Rect(sx0, 0, sx1, h),
	}
}

// All returns the content panes in drawing order.
func (p Panes) All() []image.Rectangle {
	return []image.Rectangle{p.Weather, p.Forecast, p.Departures, p.Tasks}
}

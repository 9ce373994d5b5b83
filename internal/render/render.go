// Package render draws the dashboard: it turns the feed data into a display
// list per pane and paints that list onto a two-layer Canvas.
package render

import (
	"image"
	"time"

	"golang.org/x/image/font"

	"github.com/dailypush/homedash/internal/feed"
	"github.com/dailypush/homedash/internal/layout"
)

// Options are the labels the renderer prints.
type Options struct {
	Location        string
	DeparturesTitle string
	TasksTitle      string
}

// Data is everything shown in one refresh. A nil Weather means the feed
// failed.
type Data struct {
	Now        time.Time
	Weather    *feed.Weather
	Departures []feed.Departure
	Tasks      []string
}

// Item is a placed string and the face it is drawn with.
type Item struct {
	layout.Placement
	Face font.Face
}

// Frame is the display list of one refresh.
type Frame struct {
	Panes      layout.Panes
	Weather    []Item
	Forecast   []Item
	Departures []Item
	Tasks      []Item
	// TasksTruncated is set when tasks did not fit the pane.
	TasksTruncated bool
}

// Renderer lays out and paints dashboards. It holds no state between
// refreshes beyond its fonts and labels.
type Renderer struct {
	fonts *Fonts
	opts  Options

	large, medium, small Metrics
}

// New returns a Renderer drawing with fonts.
func New(fonts *Fonts, opts Options) *Renderer {
	return &Renderer{
		fonts:  fonts,
		opts:   opts,
		large:  Metrics{Face: fonts.Large},
		medium: Metrics{Face: fonts.Medium},
		small:  Metrics{Face: fonts.Small},
	}
}

// Layout computes the display list for a canvas of the given size.
func (r *Renderer) Layout(size image.Point, d Data) Frame {
	panes := layout.Partition(size.X, size.Y)
	f := Frame{
		Panes:      panes,
		Weather:    r.weather(panes.Weather, d.Weather, d.Now),
		Forecast:   r.forecast(panes.Forecast, d.Weather),
		Departures: r.departures(panes.Departures, d.Departures),
	}
	f.Tasks, f.TasksTruncated = r.tasks(panes.Tasks, d.Tasks)
	return f
}

// Paint draws f onto a fresh canvas. Each pane is cleared and its items
// clipped to it; the separator goes on last.
func (f Frame) Paint(bounds image.Rectangle) *Canvas {
	c := NewCanvas(bounds)
	p := f.Panes
	for _, pane := range []struct {
		r     image.Rectangle
		items []Item
	}{
		{p.Weather, f.Weather},
		{p.Forecast, f.Forecast},
		{p.Departures, f.Departures},
		{p.Tasks, f.Tasks},
	} {
		r := pane.r.Add(bounds.Min)
		c.clear(r)
		for _, it := range pane.items {
			it.X += bounds.Min.X
			it.Y += bounds.Min.Y
			c.text(r, it)
		}
	}
	sep := p.Separator.Add(bounds.Min)
	c.fill(layout.Primary, sep)
	c.erase(layout.Accent, sep)
	return c
}

// Render lays out and paints d on a canvas of the given bounds.
func (r *Renderer) Render(bounds image.Rectangle, d Data) (*Canvas, Frame) {
	f := r.Layout(bounds.Size(), d)
	return f.Paint(bounds), f
}

package render

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/dailypush/homedash/internal/feed"
	"github.com/dailypush/homedash/internal/layout"
)

const (
	// weather pane
	weatherInset = 10
	// forecast pane
	forecastTop    = 10
	forecastInset  = 20
	forecastGap    = 8
	forecastMargin = 10
	forecastLines  = 5
	// departures pane
	departureSlots = 3
	departurePad   = 20
	departureGap   = 5
	// tasks pane
	taskMargin = 20
	// title and header spacing
	titleTop = 10
	titleGap = 10
)

const (
	noTemp          = "--°C"
	noForecast      = "No forecast data"
	noDepartureTime = "--:--"
	noDirection     = "No data"
	noTasks         = "No tasks today!"
)

func formatTemp(v float64) string {
	return fmt.Sprintf("%d°C", int(math.Round(v)))
}

func (r *Renderer) item(m Metrics, s string, x, y int) Item {
	w, h := m.Measure(s)
	return Item{Placement: layout.Placement{Text: s, X: x, Y: y, W: w, H: h}, Face: m.Face}
}

// centered places s horizontally centered in pane at y.
func (r *Renderer) centered(m Metrics, s string, pane image.Rectangle, y int) Item {
	w, _ := m.Measure(s)
	return r.item(m, s, pane.Min.X+(pane.Dx()-w)/2, y)
}

func (r *Renderer) weather(pane image.Rectangle, w *feed.Weather, now time.Time) []Item {
	header := r.centered(r.medium, now.Format("2 Jan"), pane, pane.Min.Y+weatherInset)
	items := []Item{header}

	temp, lo, hi := noTemp, noTemp, noTemp
	if w != nil {
		temp, lo, hi = formatTemp(w.Now.Temp), formatTemp(w.Now.Min), formatTemp(w.Now.Max)
	}

	top := header.Y + header.H + weatherInset
	rest := pane.Max.Y - top

	_, th := r.large.Measure(temp)
	_, lh := r.medium.Measure(r.opts.Location)
	ty := top + (rest-(th+lh))/2
	items = append(items, r.centered(r.large, temp, pane, ty))
	if r.opts.Location != "" {
		items = append(items, r.centered(r.medium, r.opts.Location, pane, ty+th))
	}

	_, loH := r.medium.Measure(lo)
	items = append(items, r.item(r.medium, lo, pane.Min.X+weatherInset, top+(rest-loH)/2))
	hiW, hiH := r.medium.Measure(hi)
	items = append(items, r.item(r.medium, hi, pane.Max.X-hiW-weatherInset, top+(rest-hiH)/2))
	return items
}

func (r *Renderer) forecast(pane image.Rectangle, w *feed.Weather) []Item {
	if w == nil {
		_, h := r.medium.Measure(noForecast)
		return []Item{r.centered(r.medium, noForecast, pane, pane.Min.Y+(pane.Dy()-h)/2)}
	}

	type line struct {
		label  string
		lo, hi float64
	}
	lines := []line{{"Today", w.Now.Min, w.Now.Max}}
	for _, d := range w.Forecast {
		if len(lines) == forecastLines {
			break
		}
		lines = append(lines, line{d.Date.Format("Mon"), d.Min, d.Max})
	}

	var items []Item
	y := pane.Min.Y + forecastTop
	for _, l := range lines {
		label := r.item(r.medium, l.label, pane.Min.X+forecastInset, y)
		span := formatTemp(l.lo) + " / " + formatTemp(l.hi)
		sw, _ := r.medium.Measure(span)
		temps := r.item(r.medium, span, pane.Max.X-forecastInset-sw, y)
		h := max(label.H, temps.H)
		if y+h > pane.Max.Y-forecastMargin {
			break
		}
		items = append(items, label, temps)
		y += h + forecastGap
	}
	return items
}

func (r *Renderer) departures(pane image.Rectangle, deps []feed.Departure) []Item {
	title := r.centered(r.medium, r.opts.DeparturesTitle, pane, pane.Min.Y+titleTop)
	items := []Item{title}

	slots := make([]feed.Departure, departureSlots)
	for i := range slots {
		if i < len(deps) {
			slots[i] = deps[i]
			continue
		}
		slots[i] = feed.Departure{Time: noDepartureTime, Direction: noDirection}
	}

	y := title.Y + title.H + titleGap
	usable := pane.Dx() - 2*departurePad
	for i, d := range slots {
		center := pane.Min.X + departurePad + usable*(i+1)/(departureSlots+1)
		tw, th := r.medium.Measure(d.Time)
		items = append(items, r.item(r.medium, d.Time, center-tw/2, y))
		dw, _ := r.small.Measure(d.Direction)
		items = append(items, r.item(r.small, d.Direction, center-dw/2, y+th+departureGap))
	}
	return items
}

func (r *Renderer) tasks(pane image.Rectangle, tasks []string) ([]Item, bool) {
	title := r.centered(r.medium, r.opts.TasksTitle, pane, pane.Min.Y+titleTop)
	items := []Item{title}
	top := title.Y + title.H + titleGap

	if len(tasks) == 0 {
		return append(items, r.item(r.small, noTasks, pane.Min.X+taskMargin, top)), false
	}

	flow := layout.TaskFlow{
		Measurer: r.small,
		Left:     pane.Min.X + taskMargin,
		Right:    pane.Max.X - taskMargin,
		Top:      top,
		Limit:    pane.Max.Y - taskMargin,
		Bottom:   pane.Max.Y,
	}
	placed, truncated := flow.Layout(tasks)
	for _, p := range placed {
		items = append(items, Item{Placement: p, Face: r.small.Face})
	}
	return items, truncated
}

package render

import (
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/basicfont"

	"github.com/dailypush/homedash/internal/feed"
	"github.com/dailypush/homedash/internal/layout"
)

// Face7x13 measures 7px per rune and 13px high for any non-empty string.
func testRenderer() *Renderer {
	face := basicfont.Face7x13
	return New(&Fonts{Large: face, Medium: face, Small: face}, Options{
		Location:        "Berlin/Schöneberg",
		DeparturesTitle: "Bus 106 Departures",
		TasksTitle:      "Tasks",
	})
}

var friday = time.Date(2024, time.May, 24, 8, 0, 0, 0, time.UTC)

func texts(items []Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Text)
	}
	return out
}

func TestMetrics_Measure(t *testing.T) {
	m := Metrics{Face: basicfont.Face7x13}

	if w, h := m.Measure("10:15"); w != 35 || h != 13 {
		t.Errorf("expected 35x13, got %dx%d", w, h)
	}
	if w, h := m.Measure(""); w != 0 || h != 0 {
		t.Errorf("expected 0x0 for empty string, got %dx%d", w, h)
	}
}

func TestFormatTemp(t *testing.T) {
	tests := map[float64]string{15.6: "16°C", 9.4: "9°C", -0.4: "0°C", -3.5: "-4°C"}
	for in, want := range tests {
		if got := formatTemp(in); got != want {
			t.Errorf("formatTemp(%v): expected %s, got %s", in, want, got)
		}
	}
}

func TestLayout_WeatherPlaceholders(t *testing.T) {
	f := testRenderer().Layout(image.Pt(800, 480), Data{Now: friday})

	want := []string{"24 May", "--°C", "Berlin/Schöneberg", "--°C", "--°C"}
	if diff := cmp.Diff(want, texts(f.Weather)); diff != "" {
		t.Errorf("weather pane mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"No forecast data"}, texts(f.Forecast)); diff != "" {
		t.Errorf("forecast pane mismatch (-want +got):\n%s", diff)
	}
}

func TestLayout_HeaderDayHasNoLeadingZero(t *testing.T) {
	may4 := time.Date(2024, time.May, 4, 8, 0, 0, 0, time.UTC)
	f := testRenderer().Layout(image.Pt(800, 480), Data{Now: may4})

	if got := f.Weather[0]; got.Text != "4 May" || got.X != (400-35)/2 {
		t.Errorf("expected centered \"4 May\" header, got %q at x=%d", got.Text, got.X)
	}
}

func TestLayout_WeatherGeometry(t *testing.T) {
	w := &feed.Weather{Now: feed.Current{Temp: 15.6, Min: 9.8, Max: 20.4}}
	f := testRenderer().Layout(image.Pt(800, 480), Data{Now: friday, Weather: w})

	// pane is (0,0)-(400,144); header at y=10, content block starts at 33
	got := map[string]image.Point{}
	for _, it := range f.Weather {
		got[it.Text] = image.Pt(it.X, it.Y)
	}
	want := map[string]image.Point{
		"24 May":            image.Pt((400-42)/2, 10),
		"16°C":              image.Pt((400-28)/2, 33+(111-26)/2),
		"Berlin/Schöneberg": image.Pt((400-119)/2, 33+(111-26)/2+13),
		"10°C":              image.Pt(10, 33+(111-13)/2),
		"20°C":              image.Pt(400-28-10, 33+(111-13)/2),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("weather positions mismatch (-want +got):\n%s", diff)
	}
}

func TestLayout_ForecastUsesStoredDates(t *testing.T) {
	day := func(d int) feed.Day {
		return feed.Day{Date: time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC), Min: 10, Max: 20}
	}
	w := &feed.Weather{
		Now:      feed.Current{Min: 9, Max: 19},
		Forecast: []feed.Day{day(25), day(26), day(27), day(28), day(29)},
	}
	f := testRenderer().Layout(image.Pt(800, 480), Data{Now: friday.AddDate(0, 1, 3), Weather: w})

	want := []string{
		"Today", "9°C / 19°C",
		"Sat", "10°C / 20°C",
		"Sun", "10°C / 20°C",
		"Mon", "10°C / 20°C",
		"Tue", "10°C / 20°C",
	}
	if diff := cmp.Diff(want, texts(f.Forecast)); diff != "" {
		t.Errorf("forecast mismatch (-want +got):\n%s", diff)
	}
	if f.Forecast[2].Y-f.Forecast[0].Y != 13+forecastGap {
		t.Errorf("expected line spacing %d, got %d", 13+forecastGap, f.Forecast[2].Y-f.Forecast[0].Y)
	}
}

func TestLayout_ForecastStopsAtPaneBottom(t *testing.T) {
	w := &feed.Weather{Forecast: make([]feed.Day, 5)}
	f := testRenderer().Layout(image.Pt(800, 160), Data{Now: friday, Weather: w})

	if len(f.Forecast) != 8 {
		t.Fatalf("expected 4 lines, got %v", texts(f.Forecast))
	}
	for _, it := range f.Forecast {
		if it.Y+it.H > f.Panes.Forecast.Max.Y-forecastMargin {
			t.Errorf("%q crosses the bottom margin at y=%d", it.Text, it.Y)
		}
	}
}

func TestLayout_DeparturesPadsToThreeColumns(t *testing.T) {
	deps := []feed.Departure{
		{Time: "10:15", Direction: "Zoo"},
		{Time: "10:30", Direction: "Lindenhof"},
	}
	f := testRenderer().Layout(image.Pt(800, 480), Data{Now: friday, Departures: deps})

	// pane (400,0)-(800,120): usable width 360, centers at 510, 600, 690
	want := []Item{
		{Placement: layout.Placement{Text: "Bus 106 Departures", X: 400 + (400-126)/2, Y: 10, W: 126, H: 13}},
		{Placement: layout.Placement{Text: "10:15", X: 510 - 17, Y: 33, W: 35, H: 13}},
		{Placement: layout.Placement{Text: "Zoo", X: 510 - 10, Y: 51, W: 21, H: 13}},
		{Placement: layout.Placement{Text: "10:30", X: 600 - 17, Y: 33, W: 35, H: 13}},
		{Placement: layout.Placement{Text: "Lindenhof", X: 600 - 31, Y: 51, W: 63, H: 13}},
		{Placement: layout.Placement{Text: "--:--", X: 690 - 17, Y: 33, W: 35, H: 13}},
		{Placement: layout.Placement{Text: "No data", X: 690 - 24, Y: 51, W: 49, H: 13}},
	}
	opt := cmp.Transformer("placement", func(it Item) layout.Placement { return it.Placement })
	if diff := cmp.Diff(want, f.Departures, opt); diff != "" {
		t.Errorf("departures mismatch (-want +got):\n%s", diff)
	}
}

func TestLayout_DeparturesUsesFirstThree(t *testing.T) {
	deps := []feed.Departure{{Time: "1"}, {Time: "2"}, {Time: "3"}, {Time: "4"}}
	f := testRenderer().Layout(image.Pt(800, 480), Data{Departures: deps})

	if len(f.Departures) != 7 {
		t.Fatalf("expected title and 3 columns, got %v", texts(f.Departures))
	}
	for _, it := range f.Departures {
		if it.Text == "4" {
			t.Error("fourth departure should not be shown")
		}
	}
}

func TestLayout_NoTasks(t *testing.T) {
	f := testRenderer().Layout(image.Pt(800, 480), Data{Now: friday})

	want := []string{"Tasks", "No tasks today!"}
	if diff := cmp.Diff(want, texts(f.Tasks)); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
	if f.Tasks[1].X != 420 || f.Tasks[1].Y != 120+10+13+10 {
		t.Errorf("unexpected placeholder position (%d,%d)", f.Tasks[1].X, f.Tasks[1].Y)
	}
}

func TestLayout_TasksStayInsidePane(t *testing.T) {
	tasks := make([]string, 40)
	for i := range tasks {
		tasks[i] = "Buy milk (urgent) today and also some bread"
	}
	f := testRenderer().Layout(image.Pt(800, 480), Data{Tasks: tasks})

	if !f.TasksTruncated {
		t.Error("expected the task list to be truncated")
	}
	for _, it := range f.Tasks {
		if !image.Rect(it.X, it.Y, it.X+it.W, it.Y+it.H).In(f.Panes.Tasks) {
			t.Errorf("%q at (%d,%d) leaves the tasks pane %v", it.Text, it.X, it.Y, f.Panes.Tasks)
		}
	}
}

func TestPaint_InkLayers(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 100)
	c, f := testRenderer().Render(bounds, Data{Now: friday, Tasks: []string{"ab (cd)"}})

	// tasks pane (100,25)-(200,100), title at y=35, flow from (120,58) to x=180
	var plain, note Item
	for _, it := range f.Tasks {
		switch it.Text {
		case " ab":
			plain = it
		case "(cd)":
			note = it
		}
	}
	if plain.X != 127 || plain.Y != 58 {
		t.Fatalf("unexpected \" ab\" placement %+v", plain.Placement)
	}
	if note.X != 120 || note.Y != 74 || note.Ink != layout.Accent {
		t.Fatalf("unexpected \"(cd)\" placement %+v", note.Placement)
	}

	noteBox := image.Rect(note.X, note.Y, note.X+note.W, note.Y+note.H)
	plainBox := image.Rect(plain.X, plain.Y, plain.X+plain.W, plain.Y+plain.H)
	if !anyInk(c, layout.Accent, noteBox) {
		t.Error("expected accent ink for the annotation")
	}
	if anyInk(c, layout.Primary, noteBox) {
		t.Error("annotation leaked onto the primary layer")
	}
	if !anyInk(c, layout.Primary, plainBox) {
		t.Error("expected primary ink for plain text")
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if c.Inked(layout.Accent, x, y) && !image.Pt(x, y).In(noteBox) {
				t.Fatalf("accent ink outside the annotation at (%d,%d)", x, y)
			}
		}
	}
}

func TestPaint_Separator(t *testing.T) {
	c, _ := testRenderer().Render(image.Rect(0, 0, 200, 100), Data{Now: friday})

	for y := 0; y < 100; y++ {
		for _, x := range []int{99, 100} {
			if !c.Inked(layout.Primary, x, y) {
				t.Fatalf("expected separator ink at (%d,%d)", x, y)
			}
			if c.Inked(layout.Accent, x, y) {
				t.Fatalf("unexpected accent ink on the separator at (%d,%d)", x, y)
			}
		}
	}
	if c.Inked(layout.Primary, 101, 99) || c.Inked(layout.Primary, 98, 99) {
		t.Error("separator wider than 2px")
	}
}

func TestPaint_LayersShareBounds(t *testing.T) {
	c, _ := testRenderer().Render(image.Rect(0, 0, 123, 77), Data{})

	if c.Primary.Bounds() != c.Accent.Bounds() {
		t.Errorf("layer bounds differ: %v vs %v", c.Primary.Bounds(), c.Accent.Bounds())
	}
	if c.Bounds() != image.Rect(0, 0, 123, 77) {
		t.Errorf("unexpected canvas bounds %v", c.Bounds())
	}
}

func anyInk(c *Canvas, ink layout.Ink, r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c.Inked(ink, x, y) {
				return true
			}
		}
	}
	return false
}

package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/basicfont"

	"github.com/dailypush/homedash/internal/display"
	"github.com/dailypush/homedash/internal/feed"
	"github.com/dailypush/homedash/internal/render"
)

type fakeSink struct {
	calls     []string
	failInit  error
	failDraw  error
	frames    []image.Rectangle
	onDisplay func()
}

func (s *fakeSink) Bounds() image.Rectangle { return image.Rect(0, 0, 200, 100) }

func (s *fakeSink) Init() error {
	s.calls = append(s.calls, "init")
	return s.failInit
}

func (s *fakeSink) Clear() error {
	s.calls = append(s.calls, "clear")
	return nil
}

func (s *fakeSink) Display(primary, accent image.Image) error {
	s.calls = append(s.calls, "display")
	if primary.Bounds() != accent.Bounds() {
		return fmt.Errorf("%w: bounds differ", display.ErrHardware)
	}
	s.frames = append(s.frames, primary.Bounds())
	if s.onDisplay != nil {
		s.onDisplay()
	}
	return s.failDraw
}

func (s *fakeSink) Shutdown(cleanup bool) error {
	s.calls = append(s.calls, fmt.Sprintf("shutdown(%v)", cleanup))
	return nil
}

type fakeFeeds struct {
	weather    *feed.Weather
	departures []feed.Departure
	tasks      []string
	err        error
	deadlines  []bool
}

func (f *fakeFeeds) note(ctx context.Context) {
	_, ok := ctx.Deadline()
	f.deadlines = append(f.deadlines, ok)
}

func (f *fakeFeeds) Weather(ctx context.Context) (*feed.Weather, error) {
	f.note(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return f.weather, nil
}

func (f *fakeFeeds) Departures(ctx context.Context) ([]feed.Departure, error) {
	f.note(ctx)
	return f.departures, nil
}

func (f *fakeFeeds) Tasks(ctx context.Context) ([]string, error) {
	f.note(ctx)
	return f.tasks, nil
}

func newDashboard(sink display.Sink, feeds *fakeFeeds) (*Dashboard, *bytes.Buffer) {
	face := basicfont.Face7x13
	var buf bytes.Buffer
	return &Dashboard{
		Sink:       sink,
		Renderer:   render.New(&render.Fonts{Large: face, Medium: face, Small: face}, render.Options{TasksTitle: "Tasks"}),
		Weather:    feeds,
		Departures: feeds,
		Tasks:      feeds,
		Interval:   time.Millisecond,
		Timeout:    time.Second,
		Log:        log.New(&buf, "", 0),
		Now:        func() time.Time { return time.Date(2024, time.May, 24, 8, 0, 0, 0, time.UTC) },
	}, &buf
}

func TestCollect(t *testing.T) {
	feeds := &fakeFeeds{
		weather:    &feed.Weather{Now: feed.Current{Temp: 12}},
		departures: []feed.Departure{{Time: "10:15", Direction: "Zoo"}},
		tasks:      []string{"- Buy milk"},
	}
	d, _ := newDashboard(&fakeSink{}, feeds)

	data := d.Collect(context.Background())

	want := render.Data{
		Now:        d.Now(),
		Weather:    feeds.weather,
		Departures: feeds.departures,
		Tasks:      feeds.tasks,
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, true, true}, feeds.deadlines); diff != "" {
		t.Errorf("expected every fetch to carry a deadline (-want +got):\n%s", diff)
	}
}

func TestCollect_FeedFailureDegrades(t *testing.T) {
	feeds := &fakeFeeds{
		err:   fmt.Errorf("weather: %w: status 500", feed.ErrUnavailable),
		tasks: []string{"- Buy milk"},
	}
	d, logs := newDashboard(&fakeSink{}, feeds)

	data := d.Collect(context.Background())

	if data.Weather != nil {
		t.Errorf("expected no weather, got %+v", data.Weather)
	}
	if len(data.Tasks) != 1 {
		t.Errorf("expected the other feeds to still be fetched, got %v", data.Tasks)
	}
	if !strings.Contains(logs.String(), "weather fetch failed") {
		t.Errorf("expected the failure to be logged, got %q", logs.String())
	}
}

func TestCollect_NilFeeds(t *testing.T) {
	d, _ := newDashboard(&fakeSink{}, &fakeFeeds{})
	d.Weather, d.Departures, d.Tasks = nil, nil, nil

	data := d.Collect(context.Background())
	if data.Weather != nil || data.Departures != nil || data.Tasks != nil {
		t.Errorf("expected empty data, got %+v", data)
	}
}

func TestCycle_SleepsAndWakes(t *testing.T) {
	sink := &fakeSink{}
	d, _ := newDashboard(sink, &fakeFeeds{})

	for i := 0; i < 2; i++ {
		if err := d.Cycle(context.Background()); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}

	want := []string{"display", "shutdown(false)", "init", "display", "shutdown(false)"}
	if diff := cmp.Diff(want, sink.calls); diff != "" {
		t.Errorf("sink calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]image.Rectangle{sink.Bounds(), sink.Bounds()}, sink.frames); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestCycle_HardwareFailure(t *testing.T) {
	sink := &fakeSink{failDraw: fmt.Errorf("%w: busy timeout", display.ErrHardware)}
	d, _ := newDashboard(sink, &fakeFeeds{})

	err := d.Cycle(context.Background())
	if !errors.Is(err, display.ErrHardware) {
		t.Fatalf("expected ErrHardware, got %v", err)
	}

	sink.failDraw = nil
	if err := d.Cycle(context.Background()); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	want := []string{"display", "shutdown(false)", "init", "display", "shutdown(false)"}
	if diff := cmp.Diff(want, sink.calls); diff != "" {
		t.Errorf("sink calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &fakeSink{}
	sink.onDisplay = func() {
		if len(sink.frames) == 1 {
			cancel()
		}
	}
	d, _ := newDashboard(sink, &fakeFeeds{})
	d.Interval = time.Hour

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}

	want := []string{
		"init", "clear",
		"display", "shutdown(false)",
		"init", "shutdown(true)",
	}
	if diff := cmp.Diff(want, sink.calls); diff != "" {
		t.Errorf("sink calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_InitFailureStillShutsDown(t *testing.T) {
	sink := &fakeSink{failInit: fmt.Errorf("%w: busy timeout", display.ErrHardware)}
	d, _ := newDashboard(sink, &fakeFeeds{})

	err := d.Run(context.Background())
	if !errors.Is(err, display.ErrHardware) {
		t.Fatalf("expected ErrHardware, got %v", err)
	}
	if diff := cmp.Diff([]string{"init", "shutdown(true)"}, sink.calls); diff != "" {
		t.Errorf("sink calls mismatch (-want +got):\n%s", diff)
	}
}

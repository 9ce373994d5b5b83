// Package dashboard runs the refresh loop: fetch the feeds, render a frame
// and push it to the display sink, then wait for the next interval.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dailypush/homedash/internal/display"
	"github.com/dailypush/homedash/internal/feed"
	"github.com/dailypush/homedash/internal/render"
)

// Dashboard wires the feeds, the renderer and a sink together. A nil feed
// leaves its pane on placeholders.
type Dashboard struct {
	Sink       display.Sink
	Renderer   *render.Renderer
	Weather    feed.WeatherFeed
	Departures feed.DepartureFeed
	Tasks      feed.TaskFeed

	// Interval is the wait between refreshes; Timeout bounds each feed.
	Interval time.Duration
	Timeout  time.Duration

	Log *log.Logger
	Now func() time.Time

	asleep bool
}

func (d *Dashboard) logf(format string, args ...any) {
	if d.Log != nil {
		d.Log.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (d *Dashboard) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Collect fetches the three feeds one after the other. A failed feed is
// logged and left empty so its pane renders placeholders.
func (d *Dashboard) Collect(ctx context.Context) render.Data {
	data := render.Data{Now: d.now()}

	if d.Weather != nil {
		fctx, cancel := d.fetchContext(ctx)
		w, err := d.Weather.Weather(fctx)
		cancel()
		if err != nil {
			d.logf("weather fetch failed: %v", err)
		} else {
			data.Weather = w
		}
	}
	if d.Departures != nil {
		fctx, cancel := d.fetchContext(ctx)
		deps, err := d.Departures.Departures(fctx)
		cancel()
		if err != nil {
			d.logf("departures fetch failed: %v", err)
		} else {
			data.Departures = deps
		}
	}
	if d.Tasks != nil {
		fctx, cancel := d.fetchContext(ctx)
		tasks, err := d.Tasks.Tasks(fctx)
		cancel()
		if err != nil {
			d.logf("tasks fetch failed: %v", err)
		} else {
			data.Tasks = tasks
		}
	}
	return data
}

func (d *Dashboard) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.Timeout)
}

// Cycle runs one refresh. The panel is woken if it was put to sleep, drawn
// and put back to sleep. A sink failure aborts the cycle and leaves the
// panel asleep so the next cycle starts from Init.
func (d *Dashboard) Cycle(ctx context.Context) error {
	data := d.Collect(ctx)

	if d.asleep {
		if err := d.Sink.Init(); err != nil {
			return fmt.Errorf("display wake: %w", err)
		}
		d.asleep = false
	}

	canvas, frame := d.Renderer.Render(d.Sink.Bounds(), data)
	if frame.TasksTruncated {
		d.logf("task list truncated to fit the pane")
	}
	if err := d.Sink.Display(canvas.Primary, canvas.Accent); err != nil {
		d.sleep()
		return fmt.Errorf("display: %w", err)
	}
	d.sleep()
	return nil
}

func (d *Dashboard) sleep() {
	if err := d.Sink.Shutdown(false); err != nil {
		d.logf("display sleep failed: %v", err)
	}
	d.asleep = true
}

// Run initializes and clears the sink, then refreshes every Interval until
// ctx is done. The sink is always shut down with cleanup on return, even
// when Init fails.
func (d *Dashboard) Run(ctx context.Context) error {
	defer d.shutdown()
	if err := d.Sink.Init(); err != nil {
		return fmt.Errorf("display init: %w", err)
	}

	if err := d.Sink.Clear(); err != nil {
		return fmt.Errorf("display clear: %w", err)
	}
	d.logf("dashboard started, refreshing every %s", d.Interval)

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logf("shutting down: %v", context.Cause(ctx))
			return nil
		case <-timer.C:
		}

		start := d.now()
		if err := d.Cycle(ctx); err != nil {
			d.logf("refresh failed: %v", err)
		} else {
			d.logf("refreshed in %s", d.now().Sub(start).Round(time.Millisecond))
		}
		timer.Reset(d.Interval)
	}
}

func (d *Dashboard) shutdown() {
	if d.asleep {
		if err := d.Sink.Init(); err != nil {
			d.logf("display wake for shutdown failed: %v", err)
		}
		d.asleep = false
	}
	if err := d.Sink.Shutdown(true); err != nil {
		d.logf("display shutdown failed: %v", err)
	}
}

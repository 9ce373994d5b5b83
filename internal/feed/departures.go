package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultDeparturesURL is the BVG transport.rest v6 API.
const DefaultDeparturesURL = "https://v6.bvg.transport.rest"

// BVG fetches departures of one line from one stop.
type BVG struct {
	BaseURL string
	StopID  string
	// Line filters departures by line name; empty keeps every line.
	Line string
	// Window is how far ahead to look.
	Window time.Duration
	Client *http.Client
}

// Departures implements DepartureFeed.
func (b *BVG) Departures(ctx context.Context) ([]Departure, error) {
	if b.StopID == "" {
		return nil, fmt.Errorf("departures: %w: no stop id", ErrUnavailable)
	}
	base := b.BaseURL
	if base == "" {
		base = DefaultDeparturesURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("departures: %w: %v", ErrUnavailable, err)
	}
	u = u.JoinPath("stops", b.StopID, "departures")
	q := u.Query()
	if b.Window > 0 {
		q.Set("duration", strconv.Itoa(int(b.Window/time.Minute)))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("departures: %w: %v", ErrUnavailable, err)
	}
	body, err := getJSON(ctx, b.Client, req)
	if err != nil {
		return nil, fmt.Errorf("departures: %w", err)
	}
	deps, err := parseDepartures(body, b.Line)
	if err != nil {
		return nil, fmt.Errorf("departures: %w", err)
	}
	return deps, nil
}

func parseDepartures(body []byte, line string) ([]Departure, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed json", ErrUnavailable)
	}
	list := gjson.GetBytes(body, "departures")
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: no departures list", ErrUnavailable)
	}

	var out []Departure
	for _, d := range list.Array() {
		if line != "" && d.Get("line.name").String() != line {
			continue
		}
		when := d.Get("when").String()
		if when == "" {
			when = d.Get("plannedWhen").String()
		}
		if when == "" {
			// cancelled trips carry neither
			continue
		}
		t, err := time.Parse(time.RFC3339, when)
		if err != nil {
			return nil, fmt.Errorf("%w: departure time %q: %v", ErrUnavailable, when, err)
		}
		direction := d.Get("direction").String()
		if direction == "" {
			direction = "Unknown"
		}
		out = append(out, Departure{
			Time:      t.Format("15:04"),
			Direction: direction,
			DelayMin:  floorDiv(int(d.Get("delay").Int()), 60),
		})
	}
	return out, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Package feed fetches the three data sources shown on the dashboard:
// weather from OpenWeather, bus departures from the BVG transport.rest API
// and due tasks from Todoist.
//
// Every fetch is a single blocking HTTP exchange bounded by the caller's
// context. Any failure is returned wrapped in ErrUnavailable; callers
// degrade to placeholders instead of retrying.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable wraps every error a feed returns: transport failures,
// non-2xx responses and malformed payloads alike.
var ErrUnavailable = errors.New("feed unavailable")

// Weather is a snapshot of current conditions and the coming days.
type Weather struct {
	Now      Current
	Forecast []Day
}

// Current holds today's conditions.
type Current struct {
	Temp float64
	Min  float64
	Max  float64
	Desc string
}

// Day is one forecast entry. Date is a calendar date at midnight UTC.
type Day struct {
	Date time.Time
	Min  float64
	Max  float64
	Desc string
}

// Departure is one bus leaving the stop. Time is "HH:MM" in the stop's
// local time.
type Departure struct {
	Time      string
	Direction string
	DelayMin  int
}

// WeatherFeed returns the current weather snapshot.
type WeatherFeed interface {
	Weather(ctx context.Context) (*Weather, error)
}

// DepartureFeed returns upcoming departures in chronological order.
type DepartureFeed interface {
	Departures(ctx context.Context) ([]Departure, error)
}

// TaskFeed returns task lines, oldest due first.
type TaskFeed interface {
	Tasks(ctx context.Context) ([]string, error)
}

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// getJSON performs a GET and returns the body of a 2xx response.
func getJSON(ctx context.Context, client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnavailable, req.URL.Path, resp.Status)
	}
	return body, nil
}

// civilDate returns t's calendar date in t's location, at midnight UTC.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

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

// DefaultWeatherURL is the OpenWeather One Call 3.0 endpoint.
const DefaultWeatherURL = "https://api.openweathermap.org/data/3.0/onecall"

// MaxForecastDays is the most forecast entries a snapshot carries.
const MaxForecastDays = 5

// OpenWeather fetches weather from the One Call API in metric units.
type OpenWeather struct {
	BaseURL string
	APIKey  string
	Lat     float64
	Lon     float64
	// Days is the number of forecast entries after today, capped at
	// MaxForecastDays.
	Days   int
	Client *http.Client
}

// Weather implements WeatherFeed.
func (o *OpenWeather) Weather(ctx context.Context) (*Weather, error) {
	if o.APIKey == "" {
		return nil, fmt.Errorf("weather: %w: no api key", ErrUnavailable)
	}
	base := o.BaseURL
	if base == "" {
		base = DefaultWeatherURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("weather: %w: %v", ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(o.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(o.Lon, 'f', -1, 64))
	q.Set("exclude", "minutely")
	q.Set("units", "metric")
	q.Set("appid", o.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: %w: %v", ErrUnavailable, err)
	}
	body, err := getJSON(ctx, o.Client, req)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	w, err := parseWeather(body, o.days())
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	return w, nil
}

func (o *OpenWeather) days() int {
	if o.Days <= 0 || o.Days > MaxForecastDays {
		return MaxForecastDays
	}
	return o.Days
}

func parseWeather(body []byte, days int) (*Weather, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed json", ErrUnavailable)
	}
	doc := gjson.ParseBytes(body)
	current := doc.Get("current")
	daily := doc.Get("daily").Array()
	if !current.Get("temp").Exists() || len(daily) == 0 {
		return nil, fmt.Errorf("%w: missing current or daily data", ErrUnavailable)
	}

	// Daily timestamps are local noon; the offset keeps the date right.
	loc := time.FixedZone(doc.Get("timezone").String(), int(doc.Get("timezone_offset").Int()))

	w := &Weather{
		Now: Current{
			Temp: current.Get("temp").Float(),
			Min:  daily[0].Get("temp.min").Float(),
			Max:  daily[0].Get("temp.max").Float(),
			Desc: current.Get("weather.0.description").String(),
		},
	}
	for _, d := range daily[1:] {
		if len(w.Forecast) == days {
			break
		}
		w.Forecast = append(w.Forecast, Day{
			Date: civilDate(time.Unix(d.Get("dt").Int(), 0).In(loc)),
			Min:  d.Get("temp.min").Float(),
			Max:  d.Get("temp.max").Float(),
			Desc: d.Get("weather.0.description").String(),
		})
	}
	return w, nil
}

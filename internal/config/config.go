// Package config loads the dashboard configuration from a TOML file,
// defaults and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// MinInterval is the shortest refresh interval; e-paper panels wear out
// when refreshed more often.
const MinInterval = 180 * time.Second

// Display drivers.
const (
	DriverPNG       = "png"
	DriverInky      = "inky"
	DriverWaveshare = "waveshare2in13v4"
)

// Config holds the application configuration.
type Config struct {
	Schedule   ScheduleConfig   `toml:"schedule"`
	Display    DisplayConfig    `toml:"display"`
	Fonts      FontsConfig      `toml:"fonts"`
	Weather    WeatherConfig    `toml:"weather"`
	Departures DeparturesConfig `toml:"departures"`
	Tasks      TasksConfig      `toml:"tasks"`
}

// ScheduleConfig holds refresh timing.
type ScheduleConfig struct {
	IntervalSeconds int64 `toml:"interval_seconds"`
	// TimeoutSeconds bounds each feed fetch.
	TimeoutSeconds int64 `toml:"timeout_seconds"`
}

// DisplayConfig selects and wires the output.
type DisplayConfig struct {
	Driver string `toml:"driver"` // "png", "inky", "waveshare2in13v4"
	Width  int    `toml:"width"`  // png only; panels report their own size
	Height int    `toml:"height"`
	Output string `toml:"output"` // png file path

	Model string `toml:"model"` // inky: "phat" or "what"
	Color string `toml:"color"` // inky: "red" or "yellow"
	SPI   string `toml:"spi"`   // "" picks the first port
	DC    string `toml:"dc_pin"`
	Reset string `toml:"reset_pin"`
	Busy  string `toml:"busy_pin"`
}

// FontsConfig picks the font file and sizes. An empty path uses the
// bundled Go fonts.
type FontsConfig struct {
	Path   string  `toml:"path"`
	Large  float64 `toml:"large"`
	Medium float64 `toml:"medium"`
	Small  float64 `toml:"small"`
}

// WeatherConfig holds OpenWeather One Call settings.
type WeatherConfig struct {
	APIKey   string  `toml:"api_key"`
	Lat      float64 `toml:"lat"`
	Lon      float64 `toml:"lon"`
	Location string  `toml:"location"`
	Days     int     `toml:"days"`
	BaseURL  string  `toml:"base_url"`
}

// DeparturesConfig holds BVG stop settings.
type DeparturesConfig struct {
	Stop          string `toml:"stop"`
	Line          string `toml:"line"`
	WindowMinutes int    `toml:"window_minutes"`
	Title         string `toml:"title"`
	BaseURL       string `toml:"base_url"`
}

// TasksConfig holds Todoist settings.
type TasksConfig struct {
	Token   string `toml:"token"`
	Project string `toml:"project"`
	Title   string `toml:"title"`
	BaseURL string `toml:"base_url"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			IntervalSeconds: 1800,
			TimeoutSeconds:  10,
		},
		Display: DisplayConfig{
			Driver: DriverPNG,
			Width:  800,
			Height: 480,
			Output: defaultOutputPath(),
			Model:  "what",
			Color:  "red",
			DC:     "22",
			Reset:  "27",
			Busy:   "17",
		},
		Fonts: FontsConfig{
			Large:  48,
			Medium: 24,
			Small:  18,
		},
		Weather: WeatherConfig{
			Lat:      52.483333,
			Lon:      13.366667,
			Location: "Berlin/Schöneberg",
			Days:     5,
			BaseURL:  "https://api.openweathermap.org/data/3.0/onecall",
		},
		Departures: DeparturesConfig{
			Stop:          "900058105",
			Line:          "106",
			WindowMinutes: 45,
			Title:         "Bus 106 Departures",
			BaseURL:       "https://v6.bvg.transport.rest",
		},
		Tasks: TasksConfig{
			Project: "6HhvWp5HFc6j46wq",
			Title:   "Lily's Tasks",
			BaseURL: "https://api.todoist.com/api/v1",
		},
	}
}

func defaultOutputPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "homedash.png"
	}
	return filepath.Join(home, ".local", "share", "homedash", "frame.png")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "homedash", "config.toml")
}

// LoadFrom starts with defaults, overlays the file at path if it exists,
// then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Display.Output = expandPath(cfg.Display.Output)
	cfg.Fonts.Path = expandPath(cfg.Fonts.Path)
	if cfg.Schedule.IntervalSeconds < int64(MinInterval/time.Second) {
		cfg.Schedule.IntervalSeconds = int64(MinInterval / time.Second)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides lets secrets and a few deployment knobs come from the
// environment. Environment variables take precedence over the file.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("OPENWEATHER_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("TODOIST_TOKEN"); v != "" {
		cfg.Tasks.Token = v
	}
	if v := os.Getenv("HOMEDASH_DRIVER"); v != "" {
		cfg.Display.Driver = v
	}
	if v := os.Getenv("HOMEDASH_OUTPUT"); v != "" {
		cfg.Display.Output = v
	}
	if v := os.Getenv("HOMEDASH_FONT"); v != "" {
		cfg.Fonts.Path = v
	}
	if v := os.Getenv("HOMEDASH_INTERVAL"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("HOMEDASH_INTERVAL: %w", err)
		}
		cfg.Schedule.IntervalSeconds = n
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Display.Driver {
	case DriverPNG:
		if c.Display.Width <= 0 || c.Display.Height <= 0 {
			return fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
		}
		if c.Display.Output == "" {
			return errors.New("display output must be set for the png driver")
		}
	case DriverInky:
		if m := strings.ToLower(c.Display.Model); m != "phat" && m != "what" {
			return fmt.Errorf("invalid inky model: %s", c.Display.Model)
		}
		if col := strings.ToLower(c.Display.Color); col != "red" && col != "yellow" {
			return fmt.Errorf("invalid inky color: %s", c.Display.Color)
		}
	case DriverWaveshare:
	default:
		return fmt.Errorf("unknown display driver: %s", c.Display.Driver)
	}

	if c.Fonts.Large <= 0 || c.Fonts.Medium <= 0 || c.Fonts.Small <= 0 {
		return errors.New("font sizes must be positive")
	}
	if c.Schedule.TimeoutSeconds <= 0 {
		return errors.New("timeout_seconds must be positive")
	}
	if c.Weather.Days < 1 || c.Weather.Days > 5 {
		return fmt.Errorf("weather days must be between 1 and 5, got %d", c.Weather.Days)
	}
	if c.Weather.Lat < -90 || c.Weather.Lat > 90 || c.Weather.Lon < -180 || c.Weather.Lon > 180 {
		return fmt.Errorf("invalid coordinates %v,%v", c.Weather.Lat, c.Weather.Lon)
	}
	if c.Departures.Stop == "" {
		return errors.New("departures stop must be set")
	}
	if c.Departures.WindowMinutes <= 0 {
		return errors.New("departures window_minutes must be positive")
	}
	return nil
}

// Interval returns the refresh interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Schedule.IntervalSeconds) * time.Second
}

// Timeout returns the per-feed fetch timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Schedule.TimeoutSeconds) * time.Second
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

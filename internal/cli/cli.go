// Package cli is the homedash command line.
package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dailypush/homedash/internal/config"
	"github.com/dailypush/homedash/internal/dashboard"
	"github.com/dailypush/homedash/internal/display"
	"github.com/dailypush/homedash/internal/feed"
	"github.com/dailypush/homedash/internal/render"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	root       *cobra.Command
	configPath string
	config     *config.Config
	log        *log.Logger
	// open connects to the display; tests swap it for a fake.
	open func() (display.Sink, error)
}

// NewApp creates the command tree. The config is loaded before any
// subcommand runs.
func NewApp() *App {
	a := &App{log: log.New(os.Stderr, "", log.LstdFlags)}
	a.open = a.openSink

	a.root = &cobra.Command{
		Use:   "homedash",
		Short: "E-paper home dashboard",
		Long: `homedash shows the weather, the next bus departures and today's tasks
on an e-paper panel, refreshing on a fixed interval.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.CommandPath() {
			case "homedash version", "homedash config init":
				return nil
			}
			cfg, err := config.LoadFrom(a.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			a.config = cfg
			return nil
		},
	}
	a.root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultConfigPath(), "Path to the config file")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.runCmd())
	a.root.AddCommand(a.renderCmd())
	a.root.AddCommand(a.clearCmd())
	a.root.AddCommand(a.feedsCmd())
	a.root.AddCommand(a.configCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "homedash %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// ExecuteContext runs the CLI application; cancelling ctx stops a running
// refresh loop.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// openSink connects to the configured display.
func (a *App) openSink() (display.Sink, error) {
	d := a.config.Display
	switch d.Driver {
	case config.DriverInky:
		return display.OpenInky(display.InkyConfig{
			Model: d.Model,
			Color: d.Color,
			SPI:   d.SPI,
			DC:    d.DC,
			Reset: d.Reset,
			Busy:  d.Busy,
		})
	case config.DriverWaveshare:
		return display.OpenWaveshare(d.SPI)
	default:
		return display.NewFile(d.Output, d.Width, d.Height), nil
	}
}

func (a *App) loadFonts() (*render.Fonts, error) {
	f := a.config.Fonts
	fonts, err := render.LoadFonts(f.Path, render.Sizes{Large: f.Large, Medium: f.Medium, Small: f.Small})
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}
	return fonts, nil
}

// feeds builds the three HTTP feeds from the config.
func (a *App) feeds() (*feed.OpenWeather, *feed.BVG, *feed.Todoist) {
	cfg := a.config
	client := &http.Client{Timeout: cfg.Timeout()}
	weather := &feed.OpenWeather{
		BaseURL: cfg.Weather.BaseURL,
		APIKey:  cfg.Weather.APIKey,
		Lat:     cfg.Weather.Lat,
		Lon:     cfg.Weather.Lon,
		Days:    cfg.Weather.Days,
		Client:  client,
	}
	departures := &feed.BVG{
		BaseURL: cfg.Departures.BaseURL,
		StopID:  cfg.Departures.Stop,
		Line:    cfg.Departures.Line,
		Window:  time.Duration(cfg.Departures.WindowMinutes) * time.Minute,
		Client:  client,
	}
	tasks := &feed.Todoist{
		BaseURL:   cfg.Tasks.BaseURL,
		Token:     cfg.Tasks.Token,
		ProjectID: cfg.Tasks.Project,
		Client:    client,
	}
	return weather, departures, tasks
}

// newDashboard assembles a dashboard drawing to sink. The caller closes
// the returned fonts.
func (a *App) newDashboard(sink display.Sink) (*dashboard.Dashboard, *render.Fonts, error) {
	fonts, err := a.loadFonts()
	if err != nil {
		return nil, nil, err
	}
	weather, departures, tasks := a.feeds()
	return &dashboard.Dashboard{
		Sink: sink,
		Renderer: render.New(fonts, render.Options{
			Location:        a.config.Weather.Location,
			DeparturesTitle: a.config.Departures.Title,
			TasksTitle:      a.config.Tasks.Title,
		}),
		Weather:    weather,
		Departures: departures,
		Tasks:      tasks,
		Interval:   a.config.Interval(),
		Timeout:    a.config.Timeout(),
		Log:        a.log,
	}, fonts, nil
}

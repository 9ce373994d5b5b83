package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dailypush/homedash/internal/dashboard"
	"github.com/dailypush/homedash/internal/render"
)

var (
	colorHeader = color.New(color.Bold)
	colorLate   = color.New(color.FgRed)
	colorEarly  = color.New(color.FgGreen)
	colorMuted  = color.New(color.FgWhite, color.Faint)
)

// consoleDepartures is how many departures the feeds command lists.
const consoleDepartures = 4

func (a *App) feedsCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Print what the dashboard would show",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				color.NoColor = true
			}
			weather, departures, tasks := a.feeds()
			d := &dashboard.Dashboard{
				Weather:    weather,
				Departures: departures,
				Tasks:      tasks,
				Timeout:    a.config.Timeout(),
				Log:        a.log,
			}
			printFeeds(cmd.OutOrStdout(), d.Collect(cmd.Context()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

func printFeeds(w io.Writer, data render.Data) {
	colorHeader.Fprintln(w, "Weather")
	if data.Weather == nil {
		colorMuted.Fprintln(w, "  unavailable")
	} else {
		now := data.Weather.Now
		fmt.Fprintf(w, "  now %.1f°C, %.1f to %.1f°C", now.Temp, now.Min, now.Max)
		if now.Desc != "" {
			fmt.Fprintf(w, ", %s", now.Desc)
		}
		fmt.Fprintln(w)
		for _, day := range data.Weather.Forecast {
			fmt.Fprintf(w, "  %s %.1f to %.1f°C", day.Date.Format("Mon 02 Jan"), day.Min, day.Max)
			if day.Desc != "" {
				fmt.Fprintf(w, ", %s", day.Desc)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w)
	colorHeader.Fprintln(w, "Departures")
	if len(data.Departures) == 0 {
		colorMuted.Fprintln(w, "  none")
	}
	for i, dep := range data.Departures {
		if i == consoleDepartures {
			break
		}
		fmt.Fprintf(w, "  %s  %s", dep.Time, dep.Direction)
		switch {
		case dep.DelayMin > 0:
			colorLate.Fprintf(w, " (+%d min)", dep.DelayMin)
		case dep.DelayMin < 0:
			colorEarly.Fprintf(w, " (%d min)", dep.DelayMin)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	colorHeader.Fprintln(w, "Tasks")
	if len(data.Tasks) == 0 {
		colorMuted.Fprintln(w, "  none due")
	}
	for _, t := range data.Tasks {
		fmt.Fprintf(w, "  - %s\n", t)
	}
}

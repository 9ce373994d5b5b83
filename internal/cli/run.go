package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dailypush/homedash/internal/display"
)

func (a *App) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Refresh the panel until interrupted",
		Long: `Fetch the feeds, draw the dashboard and push it to the configured
display, then wait for the refresh interval and repeat. SIGINT or SIGTERM
puts the panel to sleep and exits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sink, err := a.open()
			if err != nil {
				return fmt.Errorf("opening display: %w", err)
			}
			d, fonts, err := a.newDashboard(sink)
			if err != nil {
				a.release(sink)
				return err
			}
			defer func() { _ = fonts.Close() }()

			return d.Run(cmd.Context())
		},
	}
}

func (a *App) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Blank the panel and put it to sleep",
		RunE: func(_ *cobra.Command, _ []string) error {
			sink, err := a.open()
			if err != nil {
				return fmt.Errorf("opening display: %w", err)
			}
			if err := sink.Init(); err != nil {
				a.release(sink)
				return fmt.Errorf("display init: %w", err)
			}
			if err := sink.Clear(); err != nil {
				a.release(sink)
				return fmt.Errorf("display clear: %w", err)
			}
			if err := sink.Shutdown(true); err != nil {
				return fmt.Errorf("display shutdown: %w", err)
			}
			a.log.Printf("display cleared")
			return nil
		},
	}
}

// release is the best-effort shutdown on an error path.
func (a *App) release(sink display.Sink) {
	if err := sink.Shutdown(true); err != nil {
		a.log.Printf("display shutdown failed: %v", err)
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dailypush/homedash/internal/display"
)

func (a *App) renderCmd() *cobra.Command {
	var (
		out           string
		width, height int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame to a PNG file",
		Long: `Fetch the feeds once and write the dashboard to a PNG, accent ink in
red. Useful for checking a layout without a panel attached.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = a.config.Display.Output
			}
			if width <= 0 || height <= 0 {
				return fmt.Errorf("invalid size %dx%d", width, height)
			}
			sink := display.NewFile(out, width, height)
			if err := sink.Init(); err != nil {
				return err
			}

			d, fonts, err := a.newDashboard(sink)
			if err != nil {
				a.release(sink)
				return err
			}
			defer func() { _ = fonts.Close() }()

			if err := d.Cycle(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output PNG path (defaults to display.output)")
	cmd.Flags().IntVar(&width, "width", 800, "Frame width in pixels")
	cmd.Flags().IntVar(&height, "height", 480, "Frame height in pixels")
	return cmd
}

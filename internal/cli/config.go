package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dailypush/homedash/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(a.configInitCmd())
	return cmd
}

func (a *App) configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Long: `Write the default configuration to the --config path so it can be
edited. An existing file is kept unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", a.configPath)
			}
			if err := config.Default().SaveTo(a.configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}

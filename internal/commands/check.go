package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/intunewin/internal/config"
)

// NewCheckCommand creates a new cobra command for the check subcommand.
func NewCheckCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check [flags]",
		Short:   "Validate that exclude patterns match entries of the source folder",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg, config.ModeCheck),
		RunE:    run(cfg),
	}

	cmd.Flags().StringP("source", "c", "", "Folder holding the installer and its files")
	cmd.Flags().StringP("setup", "s", "", "Setup file that must not be excluded")

	addExcludeFlags(cmd)

	return cmd
}

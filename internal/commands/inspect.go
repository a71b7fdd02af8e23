package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/intunewin/internal/config"
)

// NewInspectCommand creates a new cobra command for the inspect subcommand.
func NewInspectCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "inspect [flags] packages/folders...",
		Aliases: []string{"info"},
		Short:   "Print the metadata of .intunewin containers",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(cfg, config.ModeInspect),
		RunE:    run(cfg),
	}
}

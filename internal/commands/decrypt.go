package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/intunewin/internal/config"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt [flags] payload",
		Aliases: []string{"dec"},
		Short:   "Decrypt an uploadable payload into a folder",
		Args:    cobra.ExactArgs(1),
		PreRunE: preRun(cfg, config.ModeDecrypt),
		RunE:    run(cfg),
	}

	cmd.Flags().StringP("metadata", "m", "", "Metadata document holding the payload keys")
	cmd.Flags().StringP("output", "o", "", "Folder to extract into")

	return cmd
}

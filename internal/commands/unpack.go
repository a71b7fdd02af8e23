package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/intunewin/internal/config"
)

// NewUnpackCommand creates a new cobra command for the unpack subcommand.
func NewUnpackCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpack [flags] packages/folders...",
		Short: "Extract the original files of .intunewin containers",
		Long: `Authenticate, decrypt and extract each container into the output folder.
Folders are searched for *.intunewin files. With more than one container, each one
is extracted into a subfolder named after it.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(cfg, config.ModeUnpack),
		RunE:    run(cfg),
	}

	cmd.Flags().StringP("output", "o", "", "Folder to extract into")
	cmd.Flags().StringSliceP("exclude", "e", nil, "Skip containers matching the pattern when searching folders")

	return cmd
}

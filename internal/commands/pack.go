package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/intunewin/internal/config"
)

// NewPackCommand creates a new cobra command for the pack subcommand.
func NewPackCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack [flags]",
		Short: "Package a source folder into a .intunewin container",
		Long: `Package every file below the source folder into <output>/<setup>.intunewin.
The setup file must live inside the source folder. The output folder is created
when missing and must not live inside the source folder.`,
		Example: `  intunewin pack -c ./installer -s setup.exe -o ./dist
  intunewin pack -c ./installer -s setup.exe -o ./dist -e '*.log' -e 'logs'`,
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg, config.ModePack),
		RunE:    run(cfg),
	}

	cmd.Flags().StringP("source", "c", "", "Folder holding the installer and its files")
	cmd.Flags().StringP("setup", "s", "", "Setup file, absolute or relative to the source folder")
	cmd.Flags().StringP("output", "o", "", "Folder the container is written to")
	cmd.Flags().String("key-file", "", "JSONC file with fixed base64 keys, for reproducible output")

	addDetailFlags(cmd)
	addExcludeFlags(cmd)

	return cmd
}

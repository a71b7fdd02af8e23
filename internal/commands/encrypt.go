package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/intunewin/internal/config"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] archive",
		Aliases: []string{"enc"},
		Short:   "Encrypt a zip archive into an uploadable payload",
		Long: `Encrypt a zip archive into a bare payload, without a container.
The metadata document holding the keys is written next to it as <output>.xml.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: preRun(cfg, config.ModeEncrypt),
		RunE:    run(cfg),
	}

	cmd.Flags().StringP("output", "o", "", "Payload file to write")
	cmd.Flags().StringP("setup", "s", "", "Setup file recorded in the metadata, relative to the archive root")
	cmd.Flags().String("key-file", "", "JSONC file with fixed base64 keys, for reproducible output")

	addDetailFlags(cmd)

	return cmd
}

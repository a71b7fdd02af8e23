// Package commands provides the command-line interface for the intunewin tool.
//
// It implements commands for:
//   - packing a source folder into a .intunewin container
//   - unpacking containers
//   - encrypting and decrypting bare upload payloads
//   - inspecting container metadata
//   - checking exclude patterns
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/intunewin/internal/config"
	"github.com/idelchi/intunewin/internal/logic"
)

// preRun returns a PreRunE handler that loads flags and environment into cfg, records
// the mode and positional args, and validates the result.
func preRun(cfg *config.Config, mode config.Mode) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.Load(cmd.Flags(), cfg); err != nil {
			return err
		}

		cfg.Mode = mode
		cfg.Files = args

		if cfg.Show {
			return nil
		}

		return cfg.Validate()
	}
}

// run executes the configured operation.
func run(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return logic.NewRunner(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()).Run(cmd.Context())
	}
}

func addExcludeFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("exclude", "e", nil, "Exclude paths matching the pattern (find -path syntax, repeatable)")
	cmd.Flags().String("exclude-from", "", "Path to a JSONC file with an array of exclude patterns")
	cmd.Flags().BoolP("ignore-case", "i", false, "Match exclude patterns case-insensitively (find -ipath)")
}

func addDetailFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", "", "Application name, defaults to the setup file name")
	cmd.Flags().String("description", "", "Application description")
}

package commands

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/intunewin/internal/config"
)

// NewRootCommand creates the root command with common configuration.
// Every flag can also be set through an INTUNEWIN_<FLAG> environment variable.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "intunewin [flags] command [flags]"
	root.Short = "Win32 app packaging utility"
	root.Long = `Packs installer folders into encrypted .intunewin containers and opens them again.
Also encrypts and decrypts the bare payloads accepted by the upload service.`

	AddGlobalFlags(root.PersistentFlags())
	AddCommands(root, cfg)

	return root
}

// AddGlobalFlags defines the flags shared by every subcommand.
func AddGlobalFlags(flags *pflag.FlagSet) {
	flags.BoolP("show", "S", false, "Show the configuration and exit")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.BoolP("verbose", "v", false, "Log every step")
	flags.Bool("stats", false, "Print statistics when done")
	flags.String("temp-dir", "", "Parent directory for temporary files, defaults to the system temp directory")
}

// AddCommands attaches every subcommand to root.
func AddCommands(root *cobra.Command, cfg *config.Config) {
	root.AddCommand(
		NewPackCommand(cfg),
		NewUnpackCommand(cfg),
		NewEncryptCommand(cfg),
		NewDecryptCommand(cfg),
		NewInspectCommand(cfg),
		NewCheckCommand(cfg),
	)
}

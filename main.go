// Command intunewin packs installer folders into encrypted .intunewin containers.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/idelchi/intunewin/internal/commands"
	"github.com/idelchi/intunewin/internal/config"
)

// Will be set by the build system.
var version = "unknown - unofficial & generated by unknown"

func main() {
	cfg := &config.Config{}

	root := commands.NewRootCommand(cfg, version)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

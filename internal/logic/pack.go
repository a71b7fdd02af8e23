package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/idelchi/intunewin/internal/fileutil"
	"github.com/idelchi/intunewin/internal/metadata"
	"github.com/idelchi/intunewin/internal/packager"
)

// Pack builds one container from the configured source directory and setup file.
// The output directory is created when missing.
func (r *Runner) Pack(ctx context.Context) error {
	start := time.Now()

	pkg, err := r.packager()
	if err != nil {
		return err
	}

	if err := ensureDir(r.cfg.Output); err != nil {
		return err
	}

	details := &metadata.ApplicationDetails{
		Name:        r.cfg.Name,
		Description: r.cfg.Description,
	}

	info, err := pkg.CreatePackage(ctx, r.cfg.Source, r.cfg.Setup, r.cfg.Output, details)
	if err != nil {
		if r.cfg.Stats {
			printStats(r.stderr, 1, 0, 0, 1, 0, time.Since(start))
		}

		return fmt.Errorf("packaging %q: %w", r.cfg.Source, err)
	}

	output := packager.OutputFileName(r.cfg.Setup, r.cfg.Output)

	size, err := fileutil.FinalizeOutput(output, time.Time{})
	if err != nil {
		return fmt.Errorf("finalizing output: %w", err)
	}

	r.printf("Packaged %q (%s) -> %q\n", info.Name, info.Kind(), output)

	if r.cfg.Stats {
		printStats(r.stderr, 1, 0, 1, 0, size, time.Since(start))
	}

	return nil
}

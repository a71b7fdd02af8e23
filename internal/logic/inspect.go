package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/idelchi/intunewin/internal/metadata"
)

// Inspect prints the metadata document of every given container without decrypting it.
func (r *Runner) Inspect(ctx context.Context) error {
	start := time.Now()

	files, scanned, err := r.resolvePackages()
	if err != nil {
		return err
	}

	pkg, err := r.packager()
	if err != nil {
		return err
	}

	var processed, errored int

	var totalSize int64

	for _, file := range files {
		info, err := pkg.ReadMetadata(ctx, file)
		if err != nil {
			errored++

			r.printError(file, err)

			continue
		}

		processed++

		totalSize += info.UnencryptedContentSize

		if len(files) > 1 {
			fmt.Fprintf(r.stdout, "# %s\n", file)
		}

		if err := metadata.Write(r.stdout, info); err != nil {
			return err
		}

		fmt.Fprintln(r.stdout)
	}

	if r.cfg.Stats {
		printStats(r.stderr, scanned, scanned-len(files), processed, errored, totalSize, time.Since(start))
	}

	if errored > 0 {
		return fmt.Errorf("%d package(s) could not be read", errored)
	}

	return nil
}

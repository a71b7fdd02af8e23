package logic

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/idelchi/intunewin/internal/filter"
	"github.com/idelchi/intunewin/internal/packager"
)

// resolvePackages expands the positional arguments into container files.
// Directories are searched recursively for *.intunewin files.
func (r *Runner) resolvePackages() (files []string, scanned int, err error) {
	files, scanned, err = filter.Resolve(r.cfg.Files, []string{"*" + packager.Extension}, r.cfg.Exclude)
	if err != nil {
		return nil, scanned, fmt.Errorf("resolving packages: %w", err)
	}

	return files, scanned, nil
}

// Unpack extracts every given container. With more than one container each one is
// extracted into its own subdirectory named after the container.
//
//nolint:cyclop // parallel processing pipeline with printer goroutine
func (r *Runner) Unpack(ctx context.Context) error {
	start := time.Now()

	files, scanned, err := r.resolvePackages()
	if err != nil {
		return err
	}

	excluded := scanned - len(files)

	pkg, err := r.packager()
	if err != nil {
		return err
	}

	type result struct {
		input  string
		output string
		size   int64
		err    error
	}

	results := make(chan result, len(files))

	group := errgroup.Group{}
	group.SetLimit(r.cfg.Parallel)

	printed := make(chan struct{})

	var processed, errored int

	var totalSize int64

	go func() {
		defer close(printed)

		for res := range results {
			if res.err != nil {
				errored++

				r.printError(res.input, res.err)

				continue
			}

			processed++

			totalSize += res.size

			r.printf("Unpacked %q -> %q\n", res.input, res.output)
		}
	}()

	outputs := unpackDirs(files, r.cfg.Output)

	for idx, file := range files {
		group.Go(func() error {
			output := outputs[idx]

			size, err := r.unpackOne(ctx, pkg, file, output)
			if err != nil {
				results <- result{input: file, err: err}

				return err
			}

			results <- result{input: file, output: output, size: size}

			return nil
		})
	}

	err = group.Wait()

	close(results)

	<-printed

	if r.cfg.Stats {
		printStats(r.stderr, scanned, excluded, processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("unpacking packages: %w", err)
	}

	return nil
}

func (r *Runner) unpackOne(ctx context.Context, pkg *packager.Packager, file, output string) (int64, error) {
	if err := ensureDir(output); err != nil {
		return 0, err
	}

	info, err := pkg.Unpack(ctx, file, output)
	if err != nil {
		return 0, err
	}

	return info.UnencryptedContentSize, nil
}

// unpackDirs returns the extraction directory of every file. A single file is extracted
// into output itself, several files into subdirectories named after them. Containers that
// share a base name get a numeric suffix.
func unpackDirs(files []string, output string) []string {
	dirs := make([]string, len(files))

	if len(files) == 1 {
		dirs[0] = output

		return dirs
	}

	used := make(map[string]struct{}, len(files))

	for idx, file := range files {
		base := filepath.Base(file)
		stem := strings.TrimSuffix(base, filepath.Ext(base))

		name := stem
		for n := 2; ; n++ {
			if _, taken := used[strings.ToLower(name)]; !taken {
				break
			}

			name = fmt.Sprintf("%s-%d", stem, n)
		}

		used[strings.ToLower(name)] = struct{}{}
		dirs[idx] = filepath.Join(output, name)
	}

	return dirs
}

// Package logic runs the command-line operations on top of the packager.
package logic

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"

	"github.com/idelchi/intunewin/internal/config"
	"github.com/idelchi/intunewin/internal/filter"
	"github.com/idelchi/intunewin/internal/packager"
	"github.com/idelchi/intunewin/pkg/pathmatch"
)

const dirPerm = 0o750

// Runner executes the operation selected by a validated configuration.
type Runner struct {
	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

// NewRunner returns a Runner writing results to stdout and diagnostics to stderr.
func NewRunner(cfg *config.Config, stdout, stderr io.Writer) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: NewLogger(cfg, stderr),
		stdout: stdout,
		stderr: stderr,
	}
}

// NewLogger builds the logger for cfg: debug with --verbose, errors only with --quiet,
// warnings otherwise.
func NewLogger(cfg *config.Config, w io.Writer) *log.Logger {
	level := log.WarnLevel

	switch {
	case cfg.Verbose:
		level = log.DebugLevel
	case cfg.Quiet:
		level = log.ErrorLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:          "intunewin",
		Level:           level,
		ReportTimestamp: cfg.Verbose,
	})
}

// Run dispatches on the configured mode.
func (r *Runner) Run(ctx context.Context) error {
	if r.cfg.Show {
		return r.Show()
	}

	switch r.cfg.Mode {
	case config.ModePack:
		return r.Pack(ctx)
	case config.ModeUnpack:
		return r.Unpack(ctx)
	case config.ModeEncrypt:
		return r.Encrypt(ctx)
	case config.ModeDecrypt:
		return r.Decrypt(ctx)
	case config.ModeInspect:
		return r.Inspect(ctx)
	case config.ModeCheck:
		return r.Check(ctx)
	default:
		return fmt.Errorf("unknown mode %q", r.cfg.Mode)
	}
}

// Show prints the effective configuration as YAML.
func (r *Runner) Show() error {
	data, err := yaml.Marshal(r.cfg)
	if err != nil {
		return fmt.Errorf("marshalling configuration: %w", err)
	}

	_, err = r.stdout.Write(data)

	return err
}

// matchOptions returns the pattern options for exclude patterns.
func (r *Runner) matchOptions() []pathmatch.Option {
	if r.cfg.IgnoreCase {
		return []pathmatch.Option{pathmatch.IgnoreCase()}
	}

	return nil
}

// packager builds a Packager from the configured temp dir, excludes and key file.
func (r *Runner) packager() (*packager.Packager, error) {
	opts := []packager.Option{
		packager.WithLogger(r.logger),
		packager.WithTempDir(r.cfg.TempDir),
	}

	excludes, err := filter.LoadAll(r.cfg.Exclude, r.cfg.ExcludeFrom)
	if err != nil {
		return nil, fmt.Errorf("loading exclude patterns: %w", err)
	}

	if len(excludes) > 0 {
		flt, err := filter.NewFilter(nil, excludes, r.matchOptions()...)
		if err != nil {
			return nil, fmt.Errorf("compiling exclude patterns: %w", err)
		}

		opts = append(opts, packager.WithFilter(flt))
	}

	if r.cfg.KeyFile != "" {
		keys, err := LoadKeys(r.cfg.KeyFile)
		if err != nil {
			return nil, err
		}

		opts = append(opts, packager.WithKeySource(keys))
	}

	return packager.New(opts...), nil
}

// printf writes a progress line unless --quiet is set.
func (r *Runner) printf(format string, args ...any) {
	if !r.cfg.Quiet {
		fmt.Fprintf(r.stdout, format, args...)
	}
}

func (r *Runner) printError(input string, err error) {
	fmt.Fprintf(r.stderr, "Error processing %q: %v\n", input, err)
}

// ensureDir creates dir when it is missing.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}

	return nil
}

func printStats(w io.Writer, scanned, excluded, processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(w, "  Excluded:  %d\n", excluded)
	fmt.Fprintf(w, "  Processed: %d\n", processed)
	fmt.Fprintf(w, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(w, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(w, "  Duration:  %s\n", duration.Round(time.Millisecond))
}

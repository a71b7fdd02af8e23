package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/idelchi/intunewin/internal/fileutil"
	"github.com/idelchi/intunewin/internal/filter"
)

const (
	dirPerm     = 0o750
	archivePerm = 0o644
)

// Option configures ArchiveDirectory.
type Option func(*options)

type options struct {
	compress   bool
	rootFolder bool
	filter     *filter.Filter
}

// WithCompression selects deflate (true) or store (false). Defaults to true.
func WithCompression(compress bool) Option {
	return func(o *options) {
		o.compress = compress
	}
}

// WithRootFolder prefixes every entry with the base name of the source directory.
func WithRootFolder(include bool) Option {
	return func(o *options) {
		o.rootFolder = include
	}
}

// WithFilter skips the files the filter rejects.
func WithFilter(flt *filter.Filter) Option {
	return func(o *options) {
		o.filter = flt
	}
}

// ArchiveDirectory zips every file below sourceDir into targetPath and returns the summed
// size of the archived files. Parent directories of targetPath are created as needed.
// targetPath is replaced atomically: on error or cancellation it is left untouched.
func ArchiveDirectory(ctx context.Context, sourceDir, targetPath string, opts ...Option) (total int64, err error) {
	cfg := options{compress: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	sourceDir = filepath.Clean(sourceDir)

	info, err := os.Stat(sourceDir)
	if err != nil {
		return 0, fmt.Errorf("stat source %q: %w", sourceDir, err)
	}

	if !info.IsDir() {
		return 0, fmt.Errorf("%w: %q", ErrNotDirectory, sourceDir)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), dirPerm); err != nil {
		return 0, fmt.Errorf("creating archive directory: %w", err)
	}

	tc, err := fileutil.NewTempContext("", targetPath)
	if err != nil {
		return 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	zw := newWriter(tc.TmpFile)

	prefix := ""
	if cfg.rootFolder {
		prefix = filepath.Base(sourceDir) + "/"
	}

	total, err = addTree(ctx, zw, sourceDir, prefix, cfg)
	if err != nil {
		zw.Close() //nolint:gosec // archive is discarded

		return 0, err
	}

	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}

	if err := tc.Commit(archivePerm); err != nil {
		return 0, err
	}

	return total, nil
}

// addTree walks root and writes one entry per file, plus an entry for every empty directory.
func addTree(ctx context.Context, zw *zip.Writer, root, prefix string, cfg options) (int64, error) {
	var total int64

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		slashed := filepath.ToSlash(rel)
		name := EntryName(prefix + slashed)

		if d.IsDir() {
			if cfg.filter.Prune(slashed) {
				return filepath.SkipDir
			}

			return addEmptyDir(zw, path, name)
		}

		if !cfg.filter.Match(slashed) {
			return nil
		}

		size, err := addFile(ctx, zw, path, name, cfg.compress)
		if err != nil {
			return err
		}

		total += size

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("archiving %q: %w", root, err)
	}

	return total, nil
}

// EntryName normalizes a relative path into a zip entry name:
// backslashes become forward slashes and leading slashes are stripped.
func EntryName(rel string) string {
	return strings.TrimLeft(strings.ReplaceAll(rel, `\`, "/"), "/")
}

func addEmptyDir(zw *zip.Writer, path, name string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("reading directory %q: %w", path, err)
	}

	if len(entries) > 0 {
		return nil
	}

	if _, err := zw.Create(name + "/"); err != nil {
		return fmt.Errorf("adding directory %q: %w", name, err)
	}

	return nil
}

// addFile writes a single file entry. Symlinks are followed; anything that is not a regular
// file after that is skipped.
func addFile(ctx context.Context, zw *zip.Writer, path, name string, compress bool) (size int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %q: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return 0, nil
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, fmt.Errorf("creating header for %q: %w", path, err)
	}

	header.Name = name
	header.Method = zip.Store

	if compress {
		header.Method = zip.Deflate
	}

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return 0, fmt.Errorf("adding %q: %w", name, err)
	}

	file, err := os.Open(path) //nolint:gosec // path comes from walking the source tree
	if err != nil {
		return 0, fmt.Errorf("opening %q: %w", path, err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %q: %w", path, closeErr)
		}
	}()

	written, err := io.CopyBuffer(writer, contextReader{ctx: ctx, r: file}, make([]byte, copyBufferSize))
	if err != nil {
		return 0, fmt.Errorf("writing %q: %w", name, err)
	}

	return written, nil
}

package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const filePerm = 0o600

// Extract writes every entry of the zip read from src into destDir.
//
// Entries are processed one at a time and ctx is checked between them. On cancellation the
// entries written so far stay on disk and the context error is returned.
func Extract(ctx context.Context, src io.ReaderAt, size int64, destDir string) error {
	zr, err := newReader(src, size)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}

	if err := os.MkdirAll(destDir, dirPerm); err != nil {
		return fmt.Errorf("creating destination %q: %w", destDir, err)
	}

	buf := make([]byte, copyBufferSize)

	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := extractEntry(entry, destDir, buf); err != nil {
			return err
		}
	}

	return nil
}

// ExtractFile extracts the zip archive at path into destDir.
func ExtractFile(ctx context.Context, path, destDir string) error {
	file, err := os.Open(path) //nolint:gosec // caller-owned path
	if err != nil {
		return fmt.Errorf("opening archive %q: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat archive %q: %w", path, err)
	}

	return Extract(ctx, file, info.Size(), destDir)
}

// ReadEntry returns the contents of the named entry of the zip archive at path.
// Entries larger than limit bytes are rejected.
func ReadEntry(path, name string, limit int64) ([]byte, error) {
	file, err := os.Open(path) //nolint:gosec // caller-owned path
	if err != nil {
		return nil, fmt.Errorf("opening archive %q: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive %q: %w", path, err)
	}

	zr, err := newReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("opening archive %q: %w", path, err)
	}

	for _, entry := range zr.File {
		if EntryName(entry.Name) != name {
			continue
		}

		if entry.UncompressedSize64 > uint64(limit) { //nolint:gosec // limit is a positive constant
			return nil, fmt.Errorf("%w: %q is %d bytes", ErrEntryTooLarge, name, entry.UncompressedSize64)
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("opening entry %q: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, limit))
		if err != nil {
			return nil, fmt.Errorf("reading entry %q: %w", name, err)
		}

		return data, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
}

// destination resolves an entry name below destDir, rejecting names that escape it.
func destination(destDir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(EntryName(name)))

	if clean == "." || filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	target := filepath.Join(destDir, clean)

	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	return target, nil
}

// extractEntry recreates one entry. Directory entries only create the directory,
// and empty files are created without copying any content.
func extractEntry(entry *zip.File, destDir string, buf []byte) (err error) {
	target, err := destination(destDir, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() || strings.HasSuffix(EntryName(entry.Name), "/") {
		if err := os.MkdirAll(target, dirPerm); err != nil {
			return fmt.Errorf("creating directory %q: %w", target, err)
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %q: %w", target, err)
	}

	perm := entry.Mode().Perm() | filePerm

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // target validated above
	if err != nil {
		return fmt.Errorf("creating %q: %w", target, err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %q: %w", target, closeErr)
		}
	}()

	if entry.UncompressedSize64 == 0 {
		return nil
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening entry %q: %w", entry.Name, err)
	}
	defer rc.Close()

	if _, err := io.CopyBuffer(out, rc, buf); err != nil {
		return fmt.Errorf("extracting %q: %w", entry.Name, err)
	}

	return nil
}

// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TempContext holds state for an atomic file write operation.
type TempContext struct {
	SrcInfo os.FileInfo
	TmpFile *os.File
	TmpName string

	outPath string
}

// NewTempContext creates a temp file next to outPath for atomic writing.
// When filename is not empty it is stat'ed so its mode and timestamps can be carried over.
// Caller must defer CleanupOnError.
func NewTempContext(filename, outPath string) (*TempContext, error) {
	var info os.FileInfo

	if filename != "" {
		var err error

		if info, err = os.Stat(filename); err != nil {
			return nil, fmt.Errorf("getting file info for %q: %w", filename, err)
		}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &TempContext{
		SrcInfo: info,
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
		outPath: outPath,
	}, nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:gosec // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:gosec // best-effort cleanup
	}
}

// Commit closes the temp file, applies perm and renames it over the output path.
// The source's permission bits win over perm when a source was given.
func (tc *TempContext) Commit(perm os.FileMode) error {
	if tc.SrcInfo != nil {
		perm = tc.SrcInfo.Mode().Perm()
	}

	if err := tc.TmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing temporary file: %w", err)
	}

	if err := tc.TmpFile.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Chmod(tc.TmpName, perm); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tc.TmpName, tc.outPath); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	return nil
}

// FinalizeOutput optionally restores modTime and returns the output file size.
// A zero modTime leaves the timestamps untouched.
func FinalizeOutput(outPath string, modTime time.Time) (int64, error) {
	if !modTime.IsZero() {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return outInfo.Size(), nil
}

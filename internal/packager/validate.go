package packager

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/idelchi/intunewin/internal/fileutil"
)

// createParams are the cleaned, absolute arguments of CreatePackage.
type createParams struct {
	source string
	setup  string
	output string
	// setupRel is the setup file relative to source, using the host separator.
	setupRel string
}

// checkCreate validates the CreatePackage arguments without touching the file system
// beyond stat calls and the output writability probe.
func (p *Packager) checkCreate(sourceDir, setupFile, outputDir string) (createParams, error) {
	var params createParams

	switch {
	case strings.TrimSpace(sourceDir) == "":
		return params, newError(OpValidate, "", ErrInvalidArgument, "source directory is required")
	case strings.TrimSpace(setupFile) == "":
		return params, newError(OpValidate, "", ErrInvalidArgument, "setup file is required")
	case strings.TrimSpace(outputDir) == "":
		return params, newError(OpValidate, "", ErrInvalidArgument, "output directory is required")
	}

	source, err := filepath.Abs(sourceDir)
	if err != nil {
		return params, newError(OpValidate, sourceDir, ErrInvalidArgument, "resolving source directory: %w", err)
	}

	if err := requireDir(source, "source directory"); err != nil {
		return params, err
	}

	setup, err := resolveSetup(source, setupFile)
	if err != nil {
		return params, newError(OpValidate, setupFile, ErrInvalidArgument, "resolving setup file: %w", err)
	}

	if err := requireFile(setup, "setup file"); err != nil {
		return params, err
	}

	if !within(setup, source) {
		return params, newError(OpValidate, setup, ErrInvalidArgument, "setup file must be inside the source directory %q", source)
	}

	rel := strings.TrimLeft(setup[len(source):], string(filepath.Separator))

	if excluded(p, filepath.ToSlash(rel)) {
		return params, newError(OpValidate, setup, ErrInvalidArgument, "setup file is excluded by the filter")
	}

	output, err := filepath.Abs(outputDir)
	if err != nil {
		return params, newError(OpValidate, outputDir, ErrInvalidArgument, "resolving output directory: %w", err)
	}

	if sameDir(output, source) || within(output, source) {
		return params, newError(OpValidate, output, ErrInvalidArgument, "output directory must not be inside the source directory %q", source)
	}

	if err := requireDir(output, "output directory"); err != nil {
		return params, err
	}

	if err := checkTempRoot(p.tempDir, source); err != nil {
		return params, err
	}

	if err := fileutil.ProbeWritable(output); err != nil {
		return params, newError(OpValidate, output, ErrInvalidArgument, "%w", err)
	}

	return createParams{source: source, setup: setup, output: output, setupRel: rel}, nil
}

// checkUnpack validates the Unpack arguments.
func checkUnpack(packageFile, outputDir string) error {
	switch {
	case strings.TrimSpace(packageFile) == "":
		return newError(OpValidate, "", ErrInvalidArgument, "package file is required")
	case strings.TrimSpace(outputDir) == "":
		return newError(OpValidate, "", ErrInvalidArgument, "output directory is required")
	}

	if err := requireFile(packageFile, "package file"); err != nil {
		return err
	}

	return requireDir(outputDir, "output directory")
}

// checkTempRoot rejects a work directory root at or below source, where the walk
// would pick up the archive being written.
func checkTempRoot(tempDir, source string) error {
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	root, err := filepath.Abs(tempDir)
	if err != nil {
		return newError(OpValidate, tempDir, ErrInvalidArgument, "resolving temp directory: %w", err)
	}

	if sameDir(root, source) || within(root, source) {
		return newError(OpValidate, root, ErrInvalidArgument, "temp directory must not be inside the source directory %q", source)
	}

	return nil
}

// resolveSetup makes setupFile absolute. A relative path is looked up in source first
// and falls back to the working directory.
func resolveSetup(source, setupFile string) (string, error) {
	if filepath.IsAbs(setupFile) {
		return filepath.Clean(setupFile), nil
	}

	candidate := filepath.Join(source, setupFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	return filepath.Abs(setupFile)
}

func requireDir(dir, what string) error {
	info, err := os.Stat(dir)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return newError(OpValidate, dir, ErrNotFound, "%s does not exist: %w", what, err)
	case err != nil:
		return newError(OpValidate, dir, ErrInvalidArgument, "%s: %w", what, err)
	case !info.IsDir():
		return newError(OpValidate, dir, ErrInvalidArgument, "%s is not a directory", what)
	}

	return nil
}

func requireFile(file, what string) error {
	info, err := os.Stat(file)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return newError(OpValidate, file, ErrNotFound, "%s does not exist: %w", what, err)
	case err != nil:
		return newError(OpValidate, file, ErrInvalidArgument, "%s: %w", what, err)
	case info.IsDir():
		return newError(OpValidate, file, ErrInvalidArgument, "%s is a directory", what)
	}

	return nil
}

// within reports whether path starts with dir followed by a separator.
// Windows paths compare case-insensitively.
func within(path, dir string) bool {
	prefix := strings.TrimRight(dir, string(filepath.Separator)) + string(filepath.Separator)

	if len(path) < len(prefix) {
		return false
	}

	if runtime.GOOS == "windows" {
		return strings.EqualFold(path[:len(prefix)], prefix)
	}

	return path[:len(prefix)] == prefix
}

func sameDir(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}

	return a == b
}

// excluded reports whether the filter drops rel or prunes one of its parent directories.
func excluded(p *Packager, rel string) bool {
	if !p.filter.Match(rel) {
		return true
	}

	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if p.filter.Prune(dir) {
			return true
		}
	}

	return false
}

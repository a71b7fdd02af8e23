package fileutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	privateDirPerm = 0o700
	removeRetries  = 5
)

// WorkDir is a private directory owned by a single operation.
type WorkDir struct {
	Path string
}

// NewWorkDir creates a uniquely named directory under parent, or under the system temp dir
// when parent is empty.
func NewWorkDir(parent string) (*WorkDir, error) {
	if parent == "" {
		parent = os.TempDir()
	}

	if err := os.MkdirAll(parent, privateDirPerm); err != nil {
		return nil, fmt.Errorf("creating temp root %q: %w", parent, err)
	}

	path := filepath.Join(parent, uuid.NewString())

	// Mkdir fails if the name is taken, so no two operations share a directory.
	if err := os.Mkdir(path, privateDirPerm); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	return &WorkDir{Path: path}, nil
}

// Join returns a path inside the work directory.
func (w *WorkDir) Join(elem ...string) string {
	return filepath.Join(append([]string{w.Path}, elem...)...)
}

// Remove deletes the directory tree, retrying with exponential backoff while files are still busy.
func (w *WorkDir) Remove(ctx context.Context) error {
	return RemoveAll(ctx, w.Path)
}

// RemoveAll removes path and everything below it, retrying transient failures.
func RemoveAll(ctx context.Context, path string) error {
	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(50*time.Millisecond),
		backoff.WithMaxInterval(time.Second),
	)

	operation := func() error {
		err := os.RemoveAll(path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, removeRetries), ctx)); err != nil {
		return fmt.Errorf("removing %q: %w", path, err)
	}

	return nil
}

// ProbeWritable creates and removes a uniquely named file in dir.
func ProbeWritable(dir string) error {
	path := filepath.Join(dir, uuid.NewString())

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) //nolint:gosec // probe path is generated
	if err != nil {
		return fmt.Errorf("directory %q is not writable: %w", dir, err)
	}

	closeErr := file.Close()
	removeErr := os.Remove(path)

	if err := errors.Join(closeErr, removeErr); err != nil {
		return fmt.Errorf("cleaning up write probe in %q: %w", dir, err)
	}

	return nil
}

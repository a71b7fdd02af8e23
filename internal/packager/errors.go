package packager

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"

	"github.com/idelchi/intunewin/internal/archive"
	"github.com/idelchi/intunewin/internal/encryption"
	"github.com/idelchi/intunewin/internal/metadata"
)

var (
	// ErrInvalidArgument is returned for missing or contradictory arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when an input file or directory does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidData is returned when a container or payload is corrupt or tampered with.
	ErrInvalidData = errors.New("invalid data")
)

// Operation names used in Error.
const (
	OpCreate   = "create"
	OpUpload   = "create-uploadable"
	OpUnpack   = "unpack"
	OpDecrypt  = "decrypt"
	OpReadMeta = "read-metadata"
	OpValidate = "validate"
)

// Error records the operation and path that failed.
// It unwraps to both its kind (one of the Err* values, when classified) and the cause.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}

	return []error{e.Kind, e.Err}
}

func newError(op, path string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// wrap attaches op and path to err and classifies it.
// Errors that already carry this context are returned unchanged.
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var perr *Error
	if errors.As(err, &perr) {
		return err
	}

	return &Error{Op: op, Path: path, Kind: classify(err), Err: err}
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil
	case errors.Is(err, encryption.ErrInvalidArgument):
		return ErrInvalidArgument
	case errors.Is(err, encryption.ErrHashMismatch),
		errors.Is(err, encryption.ErrInvalidKey),
		errors.Is(err, encryption.ErrTruncated),
		errors.Is(err, encryption.ErrInvalidPadding),
		errors.Is(err, encryption.ErrEmptyData),
		errors.Is(err, encryption.ErrInvalidBlockSize),
		errors.Is(err, metadata.ErrInvalidMetadata),
		errors.Is(err, archive.ErrUnsafePath),
		errors.Is(err, archive.ErrEntryNotFound),
		errors.Is(err, archive.ErrEntryTooLarge),
		errors.Is(err, zip.ErrFormat),
		errors.Is(err, zip.ErrChecksum),
		errors.Is(err, zip.ErrAlgorithm):
		return ErrInvalidData
	}

	return nil
}

// IsCanceled reports whether err was caused by context cancellation or deadline.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

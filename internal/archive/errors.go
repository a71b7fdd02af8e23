package archive

import "errors"

var (
	// ErrNotDirectory is returned when the archive source is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrUnsafePath is returned for entries that would be written outside the destination.
	ErrUnsafePath = errors.New("entry escapes destination directory")
	// ErrEntryNotFound is returned when a named entry is absent from an archive.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrEntryTooLarge is returned when an entry exceeds the caller's size limit.
	ErrEntryTooLarge = errors.New("entry too large")
)

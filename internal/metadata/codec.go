package metadata

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Marshal renders info as indented XML without a declaration.
func Marshal(info *ApplicationInfo) ([]byte, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: nil ApplicationInfo", ErrInvalidMetadata)
	}

	out := *info
	out.setNamespaces()

	data, err := xml.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling application info: %w", err)
	}

	return data, nil
}

// Write renders info to w.
func Write(w io.Writer, info *ApplicationInfo) error {
	data, err := Marshal(info)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing application info: %w", err)
	}

	return nil
}

// WriteFile renders info to a new file at path.
func WriteFile(path string, info *ApplicationInfo) (err error) {
	const perm = 0o600

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // caller-owned path
	if err != nil {
		return fmt.Errorf("creating metadata file: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing metadata file: %w", closeErr)
		}
	}()

	return Write(file, info)
}

// Parse reads an ApplicationInfo document.
// Malformed documents and documents without EncryptionInfo yield ErrInvalidMetadata.
func Parse(r io.Reader) (*ApplicationInfo, error) {
	var info ApplicationInfo

	if err := xml.NewDecoder(r).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	if info.EncryptionInfo == nil {
		return nil, fmt.Errorf("%w: missing EncryptionInfo", ErrInvalidMetadata)
	}

	info.setNamespaces()

	return &info, nil
}

// ParseFile reads an ApplicationInfo document from disk.
func ParseFile(path string) (*ApplicationInfo, error) {
	file, err := os.Open(path) //nolint:gosec // caller-owned path
	if err != nil {
		return nil, fmt.Errorf("opening metadata file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

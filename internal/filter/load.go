package filter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// LoadPatterns reads a JSONC file holding an array of glob patterns.
// Comments and trailing commas are allowed.
func LoadPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return nil, fmt.Errorf("reading patterns file %q: %w", path, err)
	}

	clean := jsonc.ToJSONInPlace(data)

	var patterns []string
	if err := json.Unmarshal(clean, &patterns); err != nil {
		return nil, fmt.Errorf("parsing patterns file %q: %w", path, err)
	}

	return normalizePatterns(patterns), nil
}

// LoadAll merges inline patterns with the patterns of every file in paths.
func LoadAll(inline []string, paths ...string) ([]string, error) {
	patterns := append([]string{}, inline...)

	for _, path := range paths {
		if path == "" {
			continue
		}

		loaded, err := LoadPatterns(path)
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, loaded...)
	}

	return normalizePatterns(patterns), nil
}

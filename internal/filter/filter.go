// Package filter selects the files of a source tree using find -path style patterns.
package filter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/idelchi/intunewin/pkg/pathmatch"
)

// Filter selects files based on include/exclude patterns using find -path semantics.
// Patterns are matched against slash-separated paths relative to the walked root.
// Empty includes means "match all". Excludes always win.
type Filter struct {
	includes    *pathmatch.Matcher
	excludes    *pathmatch.Matcher
	hasIncludes bool
}

// NewFilter compiles include/exclude patterns into a reusable filter.
// The options apply to both pattern sets.
func NewFilter(includes, excludes []string, opts ...pathmatch.Option) (*Filter, error) {
	includes = normalizePatterns(includes)
	excludes = normalizePatterns(excludes)

	inc, err := pathmatch.NewMatcher(includes, opts...)
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}

	exc, err := pathmatch.NewMatcher(excludes, opts...)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{includes: inc, excludes: exc, hasIncludes: len(includes) > 0}, nil
}

// Match returns true if the relative file path should be kept.
// A nil Filter keeps everything.
func (f *Filter) Match(path string) bool {
	if f == nil {
		return true
	}

	included := !f.hasIncludes || f.includes.MatchAny(path)
	excluded := f.excludes.MatchAny(path)

	return included && !excluded
}

// Prune returns true if the relative directory path is excluded as a whole.
func (f *Filter) Prune(dir string) bool {
	if f == nil {
		return false
	}

	return f.excludes.MatchAny(dir)
}

// normalizePatterns strips leading "./" and drops blank patterns.
func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))

	for _, p := range patterns {
		p = strings.TrimPrefix(strings.TrimSpace(p), "./")
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Resolve takes positional args (files/directories) and include/exclude patterns.
// Files are added directly (bypassing filtering). Directories are walked and filtered,
// with patterns matched against paths relative to the directory.
// Returns matched files and total candidates scanned.
func Resolve(args, includes, excludes []string) (files []string, scanned int, err error) {
	flt, err := NewFilter(includes, excludes)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]struct{})

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		arg = filepath.Clean(arg)

		info, err := os.Stat(arg)
		if err != nil {
			return nil, 0, fmt.Errorf("stat %q: %w", arg, err)
		}

		if !info.IsDir() {
			scanned++

			add(arg)

			continue
		}

		walked, total, err := Walk(arg, flt)
		if err != nil {
			return nil, 0, err
		}

		scanned += total

		for _, rel := range walked {
			add(filepath.Join(arg, rel))
		}
	}

	if len(files) == 0 {
		return nil, scanned, fmt.Errorf("no files matched the provided patterns: %v", args)
	}

	return files, scanned, nil
}

// Walk walks root recursively and returns the relative paths of the files that pass the filter,
// along with the number of files considered. Excluded directories are not descended into.
func Walk(root string, flt *Filter) (files []string, total int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		// Use forward slashes for pattern matching consistency.
		clean := filepath.ToSlash(rel)

		if d.IsDir() {
			if flt.Prune(clean) {
				return filepath.SkipDir
			}

			return nil
		}

		total++

		if !flt.Match(clean) {
			return nil
		}

		files = append(files, rel)

		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walking %q: %w", root, err)
	}

	return files, total, nil
}

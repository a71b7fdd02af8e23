package logic

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/idelchi/intunewin/internal/filter"
	"github.com/idelchi/intunewin/pkg/pathmatch"
)

// Check reports, for every exclude pattern, how many entries of the source tree it removes.
// Patterns that remove nothing, including patterns shadowed by an earlier one, are errors.
func (r *Runner) Check(ctx context.Context) error {
	excludes, err := filter.LoadAll(r.cfg.Exclude, r.cfg.ExcludeFrom)
	if err != nil {
		return fmt.Errorf("loading exclude patterns: %w", err)
	}

	if len(excludes) == 0 {
		return errors.New("no exclude patterns to check")
	}

	matcher, err := pathmatch.NewMatcher(excludes, r.matchOptions()...)
	if err != nil {
		return err
	}

	counts, err := countMatches(ctx, r.cfg.Source, matcher)
	if err != nil {
		return err
	}

	var failures int

	for _, pattern := range excludes {
		count := counts[pattern]
		if count == 0 {
			fmt.Fprintf(r.stderr, "exclude: %s: 0 entries (ERROR)\n", pattern)

			failures++

			continue
		}

		r.printf("exclude: %s: %d entries\n", pattern, count)
	}

	if r.cfg.Setup != "" {
		setup := filepath.ToSlash(relativeTo(r.cfg.Source, r.cfg.Setup))
		if pattern, ok := matcher.Which(setup); ok {
			fmt.Fprintf(r.stderr, "setup file %q is excluded by %s (ERROR)\n", setup, pattern)

			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d problem(s) with exclude patterns", failures)
	}

	return nil
}

// countMatches walks root and attributes every file and directory to the first pattern
// matching its slash-separated relative path. Matched directories are not descended into.
func countMatches(ctx context.Context, root string, matcher *pathmatch.Matcher) (map[string]int, error) {
	counts := make(map[string]int, matcher.Len())

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

		pattern, ok := matcher.Which(filepath.ToSlash(rel))
		if !ok {
			return nil
		}

		counts[pattern]++

		if d.IsDir() {
			return filepath.SkipDir
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", root, err)
	}

	return counts, nil
}

// relativeTo returns path relative to root when path is absolute, and path cleaned otherwise.
func relativeTo(root, path string) string {
	if !filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return path
	}

	rel, err := filepath.Rel(abs, path)
	if err != nil {
		return path
	}

	return rel
}

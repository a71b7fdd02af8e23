// Package pathmatch implements find -path matching semantics.
//
// It follows fnmatch(3) without FNM_PATHNAME:
//   - * matches any characters including /
//   - ? matches exactly one character including /
//   - [...] matches one character from the set including /
//   - \ escapes the next character
//
// This differs from Go's filepath.Match where * does not cross directory separators.
// IgnoreCase switches to -ipath semantics, which suits trees authored on Windows.
package pathmatch

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Option configures how patterns are compiled.
type Option func(*settings)

type settings struct {
	fold bool
}

// IgnoreCase matches letters regardless of case, like find -ipath.
func IgnoreCase() Option {
	return func(s *settings) {
		s.fold = true
	}
}

// Match reports whether path matches the pattern using find -path semantics.
func Match(pattern, path string, opts ...Option) (bool, error) {
	re, err := compile(pattern, apply(opts).fold)
	if err != nil {
		return false, err
	}

	return re.MatchString(path), nil
}

// Matcher pre-compiles patterns for reuse across many paths.
type Matcher struct {
	sources  []string
	patterns []*regexp.Regexp
}

// NewMatcher compiles the given patterns into a reusable matcher.
func NewMatcher(patterns []string, opts ...Option) (*Matcher, error) {
	fold := apply(opts).fold

	matcher := &Matcher{
		sources:  append([]string(nil), patterns...),
		patterns: make([]*regexp.Regexp, len(patterns)),
	}

	for idx, p := range patterns {
		re, err := compile(p, fold)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}

		matcher.patterns[idx] = re
	}

	return matcher, nil
}

// MatchAny reports whether path matches any of the compiled patterns.
func (m *Matcher) MatchAny(path string) bool {
	_, ok := m.Which(path)

	return ok
}

// Which returns the first pattern that matches path.
func (m *Matcher) Which(path string) (string, bool) {
	for idx, re := range m.patterns {
		if re.MatchString(path) {
			return m.sources[idx], true
		}
	}

	return "", false
}

// Len returns the number of compiled patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}

func apply(opts []Option) settings {
	var s settings

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

type cacheKey struct {
	pattern string
	fold    bool
}

var cache sync.Map //nolint:gochecknoglobals // package-level cache is appropriate for compiled regexps

// compile converts a find -path glob pattern to a compiled regexp.
// Results are cached for repeated use.
func compile(pattern string, fold bool) (*regexp.Regexp, error) {
	key := cacheKey{pattern: pattern, fold: fold}

	if v, ok := cache.Load(key); ok {
		cached, _ := v.(*regexp.Regexp) //nolint:errcheck // type is guaranteed by cache.Store below

		return cached, nil
	}

	re, err := toRegexp(pattern)
	if err != nil {
		return nil, err
	}

	if fold {
		re = "(?i)" + re
	}

	compiled, err := regexp.Compile(re)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	cache.Store(key, compiled)

	return compiled, nil
}

// toRegexp converts a find -path glob pattern to an anchored regex string.
func toRegexp(pattern string) (string, error) {
	var buf strings.Builder

	buf.WriteString("^")

	for pos := 0; pos < len(pattern); {
		switch pattern[pos] {
		case '*':
			// Runs of stars behave like a single one.
			for pos < len(pattern) && pattern[pos] == '*' {
				pos++
			}

			buf.WriteString("(?s:.*)")

		case '?':
			buf.WriteString("(?s:.)")

			pos++

		case '[':
			end, err := findClosingBracket(pattern, pos)
			if err != nil {
				return "", err
			}

			buf.WriteString(bracketClass(pattern[pos+1 : end]))

			pos = end + 1

		case '\\':
			if pos+1 >= len(pattern) {
				return "", fmt.Errorf("trailing backslash in pattern %q", pattern)
			}

			buf.WriteString(regexp.QuoteMeta(pattern[pos+1 : pos+2]))

			pos += 2

		default:
			buf.WriteString(regexp.QuoteMeta(pattern[pos : pos+1]))

			pos++
		}
	}

	buf.WriteString("$")

	return buf.String(), nil
}

// bracketClass renders the body of a [...] glob class as a regexp class.
// A leading ! negates, and regexp metacharacters other than - are escaped.
func bracketClass(body string) string {
	var buf strings.Builder

	buf.WriteString("[")

	if strings.HasPrefix(body, "!") {
		buf.WriteString("^")

		body = body[1:]
	}

	for _, r := range body {
		switch r {
		case '\\', '[', ']', '^':
			buf.WriteByte('\\')
		}

		buf.WriteRune(r)
	}

	buf.WriteString("]")

	return buf.String()
}

// findClosingBracket finds the index of the closing ] for a character class starting at pos.
func findClosingBracket(pattern string, pos int) (int, error) {
	idx := pos + 1

	// Skip leading ! (negation)
	if idx < len(pattern) && pattern[idx] == '!' {
		idx++
	}

	// Skip leading ] (literal)
	if idx < len(pattern) && pattern[idx] == ']' {
		idx++
	}

	for idx < len(pattern) {
		if pattern[idx] == ']' {
			return idx, nil
		}

		idx++
	}

	return 0, fmt.Errorf("unclosed character class in pattern %q", pattern)
}

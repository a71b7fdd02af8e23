package filter_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/idelchi/intunewin/internal/filter"
	"github.com/idelchi/intunewin/pkg/pathmatch"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()

	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))

		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("mkdir %q: %v", path, err)
		}

		if err := os.WriteFile(path, []byte(f), 0o600); err != nil {
			t.Fatalf("write %q: %v", path, err)
		}
	}
}

func TestFilterMatch(t *testing.T) {
	t.Parallel()

	flt, err := filter.NewFilter(nil, []string{"./*.log", "  ", "cache/*"})
	if err != nil {
		t.Fatalf("NewFilter() error: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"setup.exe", true},
		{"logs/install.log", false},
		{"cache/blob", false},
		{"data/cache/blob", true},
	}

	for _, tc := range tests {
		if got := flt.Match(tc.path); got != tc.want {
			t.Errorf("Match(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}

	var none *filter.Filter
	if !none.Match("anything") || none.Prune("dir") {
		t.Error("nil filter must keep everything")
	}
}

func TestFilterIgnoreCase(t *testing.T) {
	t.Parallel()

	folded, err := filter.NewFilter(nil, []string{"*.LOG", "Cache"}, pathmatch.IgnoreCase())
	if err != nil {
		t.Fatalf("NewFilter() error: %v", err)
	}

	exact, err := filter.NewFilter(nil, []string{"*.LOG", "Cache"})
	if err != nil {
		t.Fatalf("NewFilter() error: %v", err)
	}

	if folded.Match("logs/Install.log") || !folded.Prune("cache") {
		t.Error("case-insensitive filter kept differently cased paths")
	}

	if !exact.Match("logs/Install.log") || exact.Prune("cache") {
		t.Error("case-sensitive filter dropped differently cased paths")
	}
}

func TestWalkPrunesExcludedDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "setup.exe", "lib/a.dll", "tmp/x.bin", "tmp/deep/y.bin", "notes.log")

	flt, err := filter.NewFilter(nil, []string{"tmp", "*.log"})
	if err != nil {
		t.Fatalf("NewFilter() error: %v", err)
	}

	files, total, err := filter.Walk(root, flt)
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	slices.Sort(files)

	want := []string{filepath.Join("lib", "a.dll"), "setup.exe"}
	if !slices.Equal(files, want) {
		t.Errorf("Walk() = %v, want %v", files, want)
	}

	if total != 3 {
		t.Errorf("total = %d, want 3 (pruned directories are not scanned)", total)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a.intunewin", "nested/b.intunewin", "nested/readme.txt")

	explicit := filepath.Join(root, "nested", "readme.txt")

	files, scanned, err := filter.Resolve([]string{root, explicit, root}, []string{"*.intunewin"}, nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	want := []string{
		filepath.Join(root, "a.intunewin"),
		filepath.Join(root, "nested", "b.intunewin"),
		explicit,
	}

	slices.Sort(files)
	slices.Sort(want)

	if !slices.Equal(files, want) {
		t.Errorf("Resolve() = %v, want %v", files, want)
	}

	if scanned != 7 {
		t.Errorf("scanned = %d, want 7", scanned)
	}

	if _, _, err := filter.Resolve([]string{root}, []string{"*.none"}, nil); err == nil {
		t.Error("Resolve() without matches returned no error")
	}

	if _, _, err := filter.Resolve([]string{filepath.Join(root, "missing")}, nil, nil); err == nil {
		t.Error("Resolve() of a missing path returned no error")
	}
}

func TestLoadPatterns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.jsonc")

	content := `[
  // build leftovers
  "*.pdb",
  "./obj/*", /* intermediate output */
  "",
]`

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing patterns: %v", err)
	}

	patterns, err := filter.LoadPatterns(path)
	if err != nil {
		t.Fatalf("LoadPatterns() error: %v", err)
	}

	if want := []string{"*.pdb", "obj/*"}; !slices.Equal(patterns, want) {
		t.Errorf("LoadPatterns() = %v, want %v", patterns, want)
	}

	merged, err := filter.LoadAll([]string{"*.tmp"}, "", path)
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if want := []string{"*.tmp", "*.pdb", "obj/*"}; !slices.Equal(merged, want) {
		t.Errorf("LoadAll() = %v, want %v", merged, want)
	}

	if _, err := filter.LoadPatterns(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Error("LoadPatterns() of a missing file returned no error")
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/pflag"

	"github.com/idelchi/intunewin/internal/config"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)

	flags.IntP("parallel", "j", 4, "")
	flags.BoolP("quiet", "q", false, "")
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("output", "o", "", "")
	flags.StringP("source", "c", "", "")
	flags.StringSlice("exclude", nil, "")
	flags.String("temp-dir", "", "")

	return flags
}

func TestLoadFlagsAndEnvironment(t *testing.T) {
	t.Setenv("INTUNEWIN_SOURCE", "from-env")
	t.Setenv("INTUNEWIN_TEMP_DIR", "/tmp/from-env")
	t.Setenv("INTUNEWIN_OUTPUT", "env-output")

	flags := newFlags()
	if err := flags.Parse([]string{"-o", "flag-output", "--exclude", "*.log,*.tmp", "-j", "2"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	var cfg config.Config
	if err := config.Load(flags, &cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Output != "flag-output" {
		t.Errorf("Output = %q, explicit flag should win over the environment", cfg.Output)
	}

	if cfg.Source != "from-env" {
		t.Errorf("Source = %q, want the environment value", cfg.Source)
	}

	if cfg.TempDir != "/tmp/from-env" {
		t.Errorf("TempDir = %q, want dashes mapped to underscores", cfg.TempDir)
	}

	if cfg.Parallel != 2 {
		t.Errorf("Parallel = %d, want 2", cfg.Parallel)
	}

	if !slices.Equal(cfg.Exclude, []string{"*.log", "*.tmp"}) {
		t.Errorf("Exclude = %q", cfg.Exclude)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	patterns := filepath.Join(dir, "exclude.jsonc")

	if err := os.WriteFile(patterns, []byte(`["*.log"]`), 0o600); err != nil {
		t.Fatalf("writing patterns: %v", err)
	}

	pack := func(edit func(*config.Config)) config.Config {
		cfg := config.Config{
			Parallel: 1,
			Mode:     config.ModePack,
			Source:   filepath.Join(dir, "source"),
			Setup:    "setup.exe",
			Output:   filepath.Join(dir, "output"),
		}

		if edit != nil {
			edit(&cfg)
		}

		return cfg
	}

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{name: "pack", cfg: pack(nil)},
		{name: "pack with pattern file", cfg: pack(func(c *config.Config) { c.ExcludeFrom = patterns })},
		{name: "missing pattern file", cfg: pack(func(c *config.Config) { c.ExcludeFrom = filepath.Join(dir, "nope") }), wantErr: true},
		{name: "pack without source", cfg: pack(func(c *config.Config) { c.Source = "" }), wantErr: true},
		{name: "pack without setup", cfg: pack(func(c *config.Config) { c.Setup = "" }), wantErr: true},
		{name: "pack without output", cfg: pack(func(c *config.Config) { c.Output = "" }), wantErr: true},
		{name: "pack with arguments", cfg: pack(func(c *config.Config) { c.Files = []string{"x"} }), wantErr: true},
		{name: "output inside source", cfg: pack(func(c *config.Config) { c.Output = filepath.Join(c.Source, "out") }), wantErr: true},
		{name: "output is source", cfg: pack(func(c *config.Config) { c.Output = c.Source }), wantErr: true},
		{name: "output next to source", cfg: pack(func(c *config.Config) { c.Output = c.Source + "-out" })},
		{name: "quiet and verbose", cfg: pack(func(c *config.Config) { c.Quiet, c.Verbose = true, true }), wantErr: true},
		{name: "no workers", cfg: pack(func(c *config.Config) { c.Parallel = 0 }), wantErr: true},
		{name: "unknown mode", cfg: pack(func(c *config.Config) { c.Mode = "repack" }), wantErr: true},
		{
			name: "unpack",
			cfg:  config.Config{Parallel: 2, Mode: config.ModeUnpack, Output: dir, Files: []string{"a.intunewin", "b.intunewin"}},
		},
		{
			name:    "unpack without packages",
			cfg:     config.Config{Parallel: 2, Mode: config.ModeUnpack, Output: dir},
			wantErr: true,
		},
		{
			name: "inspect without output",
			cfg:  config.Config{Parallel: 1, Mode: config.ModeInspect, Files: []string{"a.intunewin"}},
		},
		{
			name:    "encrypt with two inputs",
			cfg:     config.Config{Parallel: 1, Mode: config.ModeEncrypt, Output: "payload.bin", Files: []string{"a.zip", "b.zip"}},
			wantErr: true,
		},
		{
			name:    "decrypt without metadata",
			cfg:     config.Config{Parallel: 1, Mode: config.ModeDecrypt, Output: dir, Files: []string{"payload.bin"}},
			wantErr: true,
		},
		{
			name: "check",
			cfg:  config.Config{Parallel: 1, Mode: config.ModeCheck, Source: dir, Exclude: []string{"*.log"}},
		},
		{
			name:    "check without source",
			cfg:     config.Config{Parallel: 1, Mode: config.ModeCheck, Exclude: []string{"*.log"}},
			wantErr: true,
		},
		{
			name:    "check with arguments",
			cfg:     config.Config{Parallel: 1, Mode: config.ModeCheck, Source: dir, Files: []string{"x"}},
			wantErr: true,
		},
		{
			name: "decrypt",
			cfg:  config.Config{Parallel: 1, Mode: config.ModeDecrypt, Output: dir, Metadata: "payload.xml", Files: []string{"payload.bin"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNested(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	tests := []struct {
		dir, parent string
		want        bool
	}{
		{dir: root, parent: root, want: true},
		{dir: filepath.Join(root, "a", "b"), parent: root, want: true},
		{dir: filepath.Join(root, "a", "..", "b"), parent: filepath.Join(root, "b"), want: true},
		{dir: root + "-sibling", parent: root, want: false},
		{dir: filepath.Join(root, "..", "..other"), parent: root, want: false},
		{dir: filepath.Dir(root), parent: root, want: false},
	}

	for _, tt := range tests {
		if got := config.Nested(tt.dir, tt.parent); got != tt.want {
			t.Errorf("Nested(%q, %q) = %v, want %v", tt.dir, tt.parent, got, tt.want)
		}
	}
}

package packager

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/idelchi/intunewin/internal/encryption"
	"github.com/idelchi/intunewin/internal/filter"
)

// Option configures a Packager.
type Option func(*Packager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(p *Packager) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTempDir sets the parent of the per-operation work directories.
// The default is the system temp directory.
func WithTempDir(dir string) Option {
	return func(p *Packager) {
		p.tempDir = dir
	}
}

// WithKeySource overrides the source of encryption keys and IVs.
func WithKeySource(source encryption.KeySource) Option {
	return func(p *Packager) {
		if source != nil {
			p.keys = source
		}
	}
}

// WithFilter restricts which files of the source tree are packaged.
func WithFilter(flt *filter.Filter) Option {
	return func(p *Packager) {
		p.filter = flt
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"

	"github.com/klauspost/compress/flate"
)

// copyBufferSize is the fixed chunk used when streaming entry contents.
const copyBufferSize = 128 * 1024

// fastestCompressor deflates at the fastest level, matching what Windows tooling uses for containers.
func fastestCompressor(w io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(w, flate.BestSpeed)
}

func newWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, fastestCompressor)

	return zw
}

func newReader(r io.ReaderAt, size int64) (*zip.Reader, error) {
	// Insecure names are rejected per entry during extraction.
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, err
	}

	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)

	return zr, nil
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context //nolint:containedctx
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}

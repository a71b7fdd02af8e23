package encryption

import (
	"context"
	"io"
	"sync"
)

// chunkSize is the streaming unit for hashing and encryption. It is a multiple of the AES block size.
const chunkSize = 2 << 20

// bufferPool provides a pool of reusable chunk buffers.
//
//nolint:gochecknoglobals
var bufferPool = sync.Pool{
	New: func() any {
		return make([]byte, chunkSize)
	},
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

// copyChunked copies src to dst through a pooled chunk buffer, honouring ctx between chunks.
func copyChunked(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := bufferPool.Get().([]byte) //nolint:forcetypeassert
	defer bufferPool.Put(buf)        //nolint:staticcheck

	return io.CopyBuffer(dst, contextReader{ctx: ctx, r: src}, buf)
}

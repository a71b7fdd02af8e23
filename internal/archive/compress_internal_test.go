package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestContextReaderStopsMidCopy(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	r := contextReader{ctx: ctx, r: strings.NewReader(strings.Repeat("x", 64))}

	buf := make([]byte, 16)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("Read() before cancel: %v", err)
	}

	cancel()

	if _, err := io.Copy(io.Discard, r); !errors.Is(err, context.Canceled) {
		t.Errorf("copy after cancel error = %v, want %v", err, context.Canceled)
	}
}

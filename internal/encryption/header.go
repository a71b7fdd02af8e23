package encryption

import (
	"context"
	"crypto/aes"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"
)

const (
	// KeySize is the size of the AES-256 key and of the HMAC key.
	KeySize = 32
	// MACSize is the size of the HMAC-SHA256 tag at the start of a payload.
	MACSize = sha256.Size
	// IVSize is the size of the CBC initialization vector following the tag.
	IVSize = aes.BlockSize
	// HeaderSize is the number of bytes preceding the ciphertext.
	HeaderSize = MACSize + IVSize
	// MinPayloadSize is the smallest payload that can hold a header and ciphertext.
	MinPayloadSize = HeaderSize + 1
)

// headerWriter reserves the MAC region at the start of a payload and back-patches it
// once the body following it is complete.
type headerWriter struct {
	dst  io.ReadWriteSeeker
	base int64
}

// reserveHeader writes MACSize zero bytes at the current position of dst.
func reserveHeader(dst io.ReadWriteSeeker) (*headerWriter, error) {
	base, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating payload start: %w", err)
	}

	if _, err := dst.Write(make([]byte, MACSize)); err != nil {
		return nil, fmt.Errorf("reserving MAC: %w", err)
	}

	return &headerWriter{dst: dst, base: base}, nil
}

// patch computes HMAC-SHA256 over the bodyLen bytes after the reserved region, writes the tag
// into the region and leaves dst positioned at the end of the body.
func (h *headerWriter) patch(ctx context.Context, macKey []byte, bodyLen int64) ([]byte, error) {
	if _, err := h.dst.Seek(h.base+MACSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to payload body: %w", err)
	}

	mac := hmac.New(sha256.New, macKey)

	n, err := copyChunked(ctx, mac, io.LimitReader(h.dst, bodyLen))
	if err != nil {
		return nil, fmt.Errorf("computing MAC: %w", err)
	}

	if n != bodyLen {
		return nil, fmt.Errorf("computing MAC: read %d of %d bytes: %w", n, bodyLen, io.ErrUnexpectedEOF)
	}

	sum := mac.Sum(nil)

	if _, err := h.dst.Seek(h.base, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to MAC: %w", err)
	}

	if _, err := h.dst.Write(sum); err != nil {
		return nil, fmt.Errorf("writing MAC: %w", err)
	}

	if _, err := h.dst.Seek(h.base+MACSize+bodyLen, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to payload end: %w", err)
	}

	return sum, nil
}

package encryption

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/idelchi/intunewin/internal/metadata"
)

// Option configures Encrypt.
type Option func(*options)

type options struct {
	keys KeySource
}

// WithKeySource replaces the random key source.
func WithKeySource(source KeySource) Option {
	return func(o *options) {
		if source != nil {
			o.keys = source
		}
	}
}

// Encrypt writes the payload for src to dst and returns the envelope describing it.
//
// src is hashed in full, rewound to its start and encrypted. The payload is written at the
// current position of dst, which is left at the end of the payload.
func Encrypt(ctx context.Context, src io.ReadSeeker, dst io.ReadWriteSeeker, opts ...Option) (*metadata.EncryptionInfo, error) {
	cfg := options{keys: RandomKeys{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkSeekable("source", src); err != nil {
		return nil, err
	}

	if err := checkSeekable("target", dst); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys, err := cfg.keys.NewKeys()
	if err != nil {
		return nil, fmt.Errorf("generating keys: %w", err)
	}

	if err := keys.validate(); err != nil {
		return nil, err
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding input: %w", err)
	}

	digest := sha256.New()
	if _, err := copyChunked(ctx, digest, src); err != nil {
		return nil, fmt.Errorf("hashing input: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding input: %w", err)
	}

	block, err := aes.NewCipher(keys.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	header, err := reserveHeader(dst)
	if err != nil {
		return nil, err
	}

	if _, err := dst.Write(keys.IV); err != nil {
		return nil, fmt.Errorf("writing IV: %w", err)
	}

	written, err := encryptCBC(ctx, block, keys.IV, src, dst)
	if err != nil {
		return nil, fmt.Errorf("encrypting input: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mac, err := header.patch(ctx, keys.MacKey, IVSize+written)
	if err != nil {
		return nil, err
	}

	return metadata.NewEncryptionInfo(metadata.Material{
		EncryptionKey: keys.EncryptionKey,
		MacKey:        keys.MacKey,
		IV:            keys.IV,
		Mac:           mac,
		FileDigest:    digest.Sum(nil),
	}), nil
}

// Decrypt authenticates and decrypts the payload starting at the current position of src.
// The MAC is verified over the whole payload before any plaintext is produced.
func Decrypt(ctx context.Context, src io.ReadSeeker, encryptionKey, macKey string) (*bytes.Reader, error) {
	if err := checkSeekable("source", src); err != nil {
		return nil, err
	}

	encKey, err := decodeKey("encryption key", encryptionKey)
	if err != nil {
		return nil, err
	}

	if err := validateEncryptionKey(encKey); err != nil {
		return nil, err
	}

	hmacKey, err := decodeKey("MAC key", macKey)
	if err != nil {
		return nil, err
	}

	base, size, err := remaining(src)
	if err != nil {
		return nil, err
	}

	if size < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, size)
	}

	stored := make([]byte, MACSize)
	if _, err := io.ReadFull(src, stored); err != nil {
		return nil, fmt.Errorf("reading MAC: %w", err)
	}

	mac := hmac.New(sha256.New, hmacKey)
	if _, err := copyChunked(ctx, mac, src); err != nil {
		return nil, fmt.Errorf("computing MAC: %w", err)
	}

	if !hmac.Equal(stored, mac.Sum(nil)) {
		return nil, ErrHashMismatch
	}

	if _, err := src.Seek(base+MACSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to IV: %w", err)
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(src, iv); err != nil {
		return nil, fmt.Errorf("reading IV: %w", err)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	var plain bytes.Buffer
	plain.Grow(int(size - HeaderSize))

	if err := decryptCBC(ctx, block, iv, src, &plain); err != nil {
		return nil, fmt.Errorf("decrypting payload: %w", err)
	}

	return bytes.NewReader(plain.Bytes()), nil
}

// checkSeekable rejects nil streams and streams whose position cannot be queried.
func checkSeekable(name string, s io.Seeker) error {
	if s == nil {
		return fmt.Errorf("%w: %s stream is nil", ErrInvalidArgument, name)
	}

	if _, err := s.Seek(0, io.SeekCurrent); err != nil {
		return fmt.Errorf("%w: %s stream is not seekable: %w", ErrInvalidArgument, name, err)
	}

	return nil
}

// remaining returns the current offset of s and the number of bytes after it.
func remaining(s io.Seeker) (int64, int64, error) {
	base, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, 0, fmt.Errorf("locating payload start: %w", err)
	}

	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("locating payload end: %w", err)
	}

	if _, err := s.Seek(base, io.SeekStart); err != nil {
		return 0, 0, fmt.Errorf("rewinding payload: %w", err)
	}

	return base, end - base, nil
}

func decodeKey(name, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidKey, name)
	}

	key, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrInvalidKey, name, err)
	}

	return key, nil
}

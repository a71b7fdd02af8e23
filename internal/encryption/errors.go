package encryption

import "errors"

var (
	// ErrInvalidArgument is returned when a stream is missing or cannot be seeked.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrHashMismatch is returned when the stored MAC does not match the payload.
	ErrHashMismatch = errors.New("hashes do not match")
	// ErrInvalidKey is returned when key material is not valid base64 or has the wrong size.
	ErrInvalidKey = errors.New("invalid key")
	// ErrTruncated is returned when a payload is shorter than its header.
	ErrTruncated = errors.New("payload truncated")
	// ErrEmptyData is returned when attempting to unpad empty data.
	ErrEmptyData = errors.New("empty data")
	// ErrInvalidPadding is returned when PKCS7 padding is malformed.
	ErrInvalidPadding = errors.New("invalid padding")
	// ErrInvalidBlockSize is returned when encrypted data length is not aligned with AES block size.
	ErrInvalidBlockSize = errors.New("ciphertext is not a multiple of block size")
)

package encryption

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
)

// encryptCBC streams r through AES-CBC into w, padding the final block.
// The last full block of every chunk is held back so padding can be applied at EOF.
// It returns the number of ciphertext bytes written.
func encryptCBC(ctx context.Context, block cipher.Block, iv []byte, r io.Reader, w io.Writer) (int64, error) {
	cbcMode := cipher.NewCBCEncrypter(block, iv)

	buf := bufferPool.Get().([]byte) //nolint:forcetypeassert
	defer bufferPool.Put(buf)        //nolint:staticcheck

	var (
		pending int
		written int64
	)

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, err := io.ReadFull(r, buf[pending:])
		pending += n

		isEOF := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !isEOF {
			return written, fmt.Errorf("reading input: %w", err)
		}

		if isEOF {
			// pending < chunkSize here, so the padded block still fits in buf.
			padded := pkcs7Pad(buf[:pending], aes.BlockSize)
			cbcMode.CryptBlocks(padded, padded)

			m, err := w.Write(padded)
			written += int64(m)

			if err != nil {
				return written, fmt.Errorf("writing final encrypted block: %w", err)
			}

			return written, nil
		}

		body := buf[:len(buf)-aes.BlockSize]
		cbcMode.CryptBlocks(body, body)

		m, err := w.Write(body)
		written += int64(m)

		if err != nil {
			return written, fmt.Errorf("writing encrypted block: %w", err)
		}

		pending = copy(buf, buf[len(body):])
	}
}

// decryptCBC streams r through AES-CBC into w and strips the padding of the final block.
// The last ciphertext block of every chunk is held back until EOF is known.
func decryptCBC(ctx context.Context, block cipher.Block, iv []byte, r io.Reader, w io.Writer) error {
	cbcMode := cipher.NewCBCDecrypter(block, iv)

	buf := bufferPool.Get().([]byte) //nolint:forcetypeassert
	defer bufferPool.Put(buf)        //nolint:staticcheck

	pending := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := io.ReadFull(r, buf[pending:])
		pending += n

		isEOF := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !isEOF {
			return fmt.Errorf("reading input: %w", err)
		}

		if isEOF {
			if pending == 0 || pending%aes.BlockSize != 0 {
				return ErrInvalidBlockSize
			}

			last := buf[:pending]
			cbcMode.CryptBlocks(last, last)

			unpadded, err := pkcs7Unpad(last, aes.BlockSize)
			if err != nil {
				return fmt.Errorf("removing padding: %w", err)
			}

			if _, err := w.Write(unpadded); err != nil {
				return fmt.Errorf("writing final decrypted block: %w", err)
			}

			return nil
		}

		body := buf[:len(buf)-aes.BlockSize]
		cbcMode.CryptBlocks(body, body)

		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("writing decrypted block: %w", err)
		}

		pending = copy(buf, buf[len(body):])
	}
}

package encryption

import (
	"fmt"

	aeadsubtle "github.com/tink-crypto/tink-go/v2/aead/subtle"
	"github.com/tink-crypto/tink-go/v2/subtle/random"
)

// Keys is the secret material of a single payload.
type Keys struct {
	EncryptionKey []byte
	MacKey        []byte
	IV            []byte
}

// KeySource supplies the keys for a new payload.
type KeySource interface {
	NewKeys() (Keys, error)
}

// RandomKeys draws fresh keys from the system CSPRNG for every payload.
type RandomKeys struct{}

// NewKeys implements KeySource.
func (RandomKeys) NewKeys() (Keys, error) {
	return Keys{
		EncryptionKey: random.GetRandomBytes(KeySize),
		MacKey:        random.GetRandomBytes(KeySize),
		IV:            random.GetRandomBytes(IVSize),
	}, nil
}

// FixedKeys returns the same keys for every payload. Use it only for reproducible output in tests.
type FixedKeys Keys

// NewKeys implements KeySource.
func (f FixedKeys) NewKeys() (Keys, error) {
	return Keys{
		EncryptionKey: append([]byte(nil), f.EncryptionKey...),
		MacKey:        append([]byte(nil), f.MacKey...),
		IV:            append([]byte(nil), f.IV...),
	}, nil
}

// validate checks the key sizes of the payload profile: AES-256, a 256-bit MAC key and a block-sized IV.
func (k Keys) validate() error {
	if err := validateEncryptionKey(k.EncryptionKey); err != nil {
		return err
	}

	if len(k.MacKey) != KeySize {
		return fmt.Errorf("%w: MAC key must be %d bytes, got %d", ErrInvalidKey, KeySize, len(k.MacKey))
	}

	if len(k.IV) != IVSize {
		return fmt.Errorf("%w: IV must be %d bytes, got %d", ErrInvalidKey, IVSize, len(k.IV))
	}

	return nil
}

func validateEncryptionKey(key []byte) error {
	//nolint:gosec // key length is bounded by the caller's allocation
	if err := aeadsubtle.ValidateAESKeySize(uint32(len(key))); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if len(key) != KeySize {
		return fmt.Errorf("%w: encryption key must be %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}

	return nil
}

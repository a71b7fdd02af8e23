package metadata

import (
	"encoding/base64"
	"fmt"
)

const (
	// ProfileVersion1 identifies the AES-256-CBC with HMAC-SHA256 payload scheme.
	ProfileVersion1 = "ProfileVersion1"
	// DigestAlgorithmSHA256 names the algorithm of FileDigest.
	DigestAlgorithmSHA256 = "SHA256"
)

// EncryptionInfo records the key material and digests of a single encrypted payload.
// Every binary field holds standard, padded base64 text.
type EncryptionInfo struct {
	EncryptionKey        string `xml:"EncryptionKey"`
	MacKey               string `xml:"MacKey"`
	InitializationVector string `xml:"InitializationVector"`
	Mac                  string `xml:"Mac"`
	ProfileIdentifier    string `xml:"ProfileIdentifier"`
	FileDigest           string `xml:"FileDigest"`
	FileDigestAlgorithm  string `xml:"FileDigestAlgorithm"`
}

// Material is the decoded form of an EncryptionInfo.
type Material struct {
	EncryptionKey []byte
	MacKey        []byte
	IV            []byte
	Mac           []byte
	FileDigest    []byte
}

// NewEncryptionInfo encodes raw key material for the current profile.
func NewEncryptionInfo(m Material) *EncryptionInfo {
	enc := base64.StdEncoding

	return &EncryptionInfo{
		EncryptionKey:        enc.EncodeToString(m.EncryptionKey),
		MacKey:               enc.EncodeToString(m.MacKey),
		InitializationVector: enc.EncodeToString(m.IV),
		Mac:                  enc.EncodeToString(m.Mac),
		ProfileIdentifier:    ProfileVersion1,
		FileDigest:           enc.EncodeToString(m.FileDigest),
		FileDigestAlgorithm:  DigestAlgorithmSHA256,
	}
}

// Keys decodes the base64 fields. Empty fields decode to nil.
func (e *EncryptionInfo) Keys() (Material, error) {
	var (
		m   Material
		err error
	)

	fields := []struct {
		name string
		text string
		dst  *[]byte
	}{
		{"EncryptionKey", e.EncryptionKey, &m.EncryptionKey},
		{"MacKey", e.MacKey, &m.MacKey},
		{"InitializationVector", e.InitializationVector, &m.IV},
		{"Mac", e.Mac, &m.Mac},
		{"FileDigest", e.FileDigest, &m.FileDigest},
	}

	for _, f := range fields {
		if f.text == "" {
			continue
		}

		if *f.dst, err = base64.StdEncoding.DecodeString(f.text); err != nil {
			return Material{}, fmt.Errorf("%w: decoding %s: %w", ErrInvalidMetadata, f.name, err)
		}
	}

	return m, nil
}

// Validate checks that the record can drive a decryption.
// The keys are mandatory, every other field is checked only when present.
func (e *EncryptionInfo) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: missing EncryptionInfo", ErrInvalidMetadata)
	}

	if e.EncryptionKey == "" || e.MacKey == "" {
		return fmt.Errorf("%w: EncryptionInfo without keys", ErrInvalidMetadata)
	}

	if e.ProfileIdentifier != "" && e.ProfileIdentifier != ProfileVersion1 {
		return fmt.Errorf("%w: unsupported profile %q", ErrInvalidMetadata, e.ProfileIdentifier)
	}

	if e.FileDigestAlgorithm != "" && e.FileDigestAlgorithm != DigestAlgorithmSHA256 {
		return fmt.Errorf("%w: unsupported digest algorithm %q", ErrInvalidMetadata, e.FileDigestAlgorithm)
	}

	if _, err := e.Keys(); err != nil {
		return err
	}

	return nil
}

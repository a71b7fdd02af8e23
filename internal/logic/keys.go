package logic

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/idelchi/intunewin/internal/encryption"
)

// keyFile is the JSONC document read by --key-file. Values are standard base64.
type keyFile struct {
	EncryptionKey string `json:"encryptionKey"`
	MacKey        string `json:"macKey"`
	IV            string `json:"iv"`
}

// LoadKeys reads fixed key material from a JSONC file, for reproducible payloads.
func LoadKeys(path string) (encryption.FixedKeys, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return encryption.FixedKeys{}, fmt.Errorf("reading key file %q: %w", path, err)
	}

	var doc keyFile
	if err := json.Unmarshal(jsonc.ToJSONInPlace(data), &doc); err != nil {
		return encryption.FixedKeys{}, fmt.Errorf("parsing key file %q: %w", path, err)
	}

	var keys encryption.FixedKeys

	fields := []struct {
		name string
		text string
		dst  *[]byte
	}{
		{name: "encryptionKey", text: doc.EncryptionKey, dst: &keys.EncryptionKey},
		{name: "macKey", text: doc.MacKey, dst: &keys.MacKey},
		{name: "iv", text: doc.IV, dst: &keys.IV},
	}

	for _, field := range fields {
		if field.text == "" {
			return encryption.FixedKeys{}, fmt.Errorf("key file %q: %s is missing", path, field.name)
		}

		decoded, err := base64.StdEncoding.DecodeString(field.text)
		if err != nil {
			return encryption.FixedKeys{}, fmt.Errorf("key file %q: decoding %s: %w", path, field.name, err)
		}

		*field.dst = decoded
	}

	return keys, nil
}

package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey expands secret into a 32-byte key bound to salt and info using
// HKDF-SHA256.
func DeriveKey(secret, salt []byte, info string) ([]byte, error) {
	out := make([]byte, ContentKeyBytes)
	r := hkdf.New(sha256.New, secret, salt, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

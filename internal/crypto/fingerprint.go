package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const fingerprintBytes = 10

// Fingerprint returns a short display form of an identifier or public key:
// the first 10 bytes of its SHA-256 digest as five space-separated groups of
// four hex digits.
func Fingerprint(id []byte) string {
	sum := sha256.Sum256(id)
	digits := hex.EncodeToString(sum[:fingerprintBytes])
	groups := make([]string, 0, len(digits)/4)
	for i := 0; i < len(digits); i += 4 {
		groups = append(groups, digits[i:i+4])
	}
	return strings.Join(groups, " ")
}

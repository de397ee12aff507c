package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// FromB64 decodes standard base64.
func FromB64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

// Hex returns lowercase hex without a 0x prefix.
func Hex(b []byte) string { return hex.EncodeToString(b) }

// FromHex decodes hex, tolerating a 0x prefix.
func FromHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

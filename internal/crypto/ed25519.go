package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// SeedBytes is the length of a deterministic session seed.
const SeedBytes = ed25519.SeedSize

// GenerateEd25519 returns a new Ed25519 signing key pair.
func GenerateEd25519() (ed25519.PrivateKey, ed25519.PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

// Ed25519FromSeed derives the key pair for a 32-byte seed. The same seed
// always yields the same key.
func Ed25519FromSeed(seed []byte) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	if len(seed) != SeedBytes {
		return nil, nil, fmt.Errorf("seed must be %d bytes, got %d", SeedBytes, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv, priv.Public().(ed25519.PublicKey), nil
}

// SignEd25519 signs msg with priv and returns the signature.
func SignEd25519(priv ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// VerifyEd25519 verifies sig over msg with pub.
func VerifyEd25519(pub ed25519.PublicKey, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}

// Package crypto exposes the minimal primitives used by gatekey.
//
// Contents
//
//   - AES-256-GCM content encryption with a random nonce prefixed to the
//     ciphertext (NewContentKey, Seal, Open)
//   - HKDF key derivation for wrapping keys (DeriveKey)
//   - Ed25519 session keys from a seed, signing and verification
//     (Ed25519FromSeed, GenerateEd25519, SignEd25519, VerifyEd25519)
//   - Hex and base64 codecs matching the payload wire format
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short grouped fingerprints of identifiers for display (Fingerprint)
//
// # Notes
//
// Callers should treat returned keys as sensitive and rely on Wipe when
// practical to reduce lifetime in memory.
package crypto

package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	// The current supported version of the sealed value format.
	envelopeFormatVersion = 1
)

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// sealed value has been modified or moved to another key.
var ErrWrongPassphrase = errors.New("store: wrong passphrase or corrupted value")

// envelope is the on-disk JSON structure holding a sealed value and its KDF
// parameters.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// kdfParams are the scrypt cost parameters used when sealing.
type kdfParams struct{ N, R, P int }

func defaultKDF() kdfParams { return kdfParams{N: 1 << 15, R: 8, P: 1} }

// seal derives a key from passphrase and a fresh salt and seals raw. The
// store key is bound as associated data so a value cannot be replayed under
// another key.
func seal(passphrase, key string, raw []byte, kdf kdfParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	k, err := scrypt.Key([]byte(passphrase), salt[:], kdf.N, kdf.R, kdf.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(k)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; salt-bound key is single use
	ct := aead.Seal(nil, nonce[:], raw, associated(salt[:], key))

	return json.Marshal(envelope{
		V:      envelopeFormatVersion,
		Salt:   salt[:],
		N:      kdf.N,
		R:      kdf.R,
		P:      kdf.P,
		Cipher: ct,
	})
}

// open reverses seal.
func open(passphrase, key string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("store: sealed value unreadable: %w", err)
	}
	if env.V > envelopeFormatVersion {
		return nil, fmt.Errorf("store: unsupported envelope version %d", env.V)
	}

	k, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(k)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, associated(env.Salt, key))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

func associated(salt []byte, key string) []byte {
	ad := make([]byte, 0, len(salt)+len(key))
	ad = append(ad, salt...)
	return append(ad, key...)
}

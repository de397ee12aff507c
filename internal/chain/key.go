package chain

import (
	"context"
	"crypto/ed25519"

	"gatekey/internal/crypto"
	"gatekey/internal/did"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// Key is the seed-backed delegated-key adapter. Its identity is the did:key
// of the ed25519 key derived from the seed.
type Key struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

var _ Adapter = (*Key)(nil)

// NewKey derives the adapter for a 32-byte seed.
func NewKey(seed []byte) (*Key, error) {
	priv, pub, err := crypto.Ed25519FromSeed(seed)
	if err != nil {
		return nil, failure.Wrap(err, failure.InvalidInput, "chain.NewKey", "invalid seed")
	}
	return &Key{priv: priv, pub: pub}, nil
}

func (a *Key) Namespace() domain.Namespace { return domain.NamespaceKey }

// DID returns the adapter's identity.
func (a *Key) DID() domain.DID { return did.KeyFromEd25519(a.pub) }

// PrivateKey exposes the derived key to the session that owns it.
func (a *Key) PrivateKey() ed25519.PrivateKey { return a.priv }

func (a *Key) ResolveAccount(context.Context) (domain.AccountDescriptor, error) {
	return did.ParseAccount(a.DID()), nil
}

func (a *Key) AuthMethod(context.Context, domain.AccountDescriptor) (AuthMethod, error) {
	return signFunc{
		scheme: SchemeEd25519,
		sign: func(_ context.Context, message []byte) (string, error) {
			return crypto.Hex(crypto.SignEd25519(a.priv, message)), nil
		},
	}, nil
}

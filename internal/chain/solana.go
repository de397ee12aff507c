package chain

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"gatekey/internal/crypto"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// Solana adapts a Solana wallet.
type Solana struct {
	provider SolanaProvider
}

var (
	_ Adapter     = (*Solana)(nil)
	_ ProofSigner = (*Solana)(nil)
)

// NewSolana returns the adapter for p.
func NewSolana(p SolanaProvider) *Solana { return &Solana{provider: p} }

func (a *Solana) Namespace() domain.Namespace { return domain.NamespaceSolana }

func (a *Solana) ResolveAccount(ctx context.Context) (domain.AccountDescriptor, error) {
	const op = "chain.Solana.ResolveAccount"

	pub, err := a.provider.Connect(ctx)
	if err != nil {
		return domain.AccountDescriptor{}, providerErr(err, op, "couldn't connect to solana wallet")
	}
	if pub == "" {
		return domain.AccountDescriptor{}, failure.New(failure.ProviderUnavailable, op, "wallet returned no public key")
	}
	return domain.AccountDescriptor{
		Address:   pub,
		Namespace: domain.NamespaceSolana,
		Reference: ReferenceSolana,
	}, nil
}

func (a *Solana) AuthMethod(_ context.Context, account domain.AccountDescriptor) (AuthMethod, error) {
	const op = "chain.Solana.AuthMethod"

	if _, err := solanaKey(account.Address); err != nil {
		return nil, failure.Wrap(err, failure.CredentialConstructionFailed, op, "couldn't generate account id for solana")
	}
	return signFunc{
		scheme: SchemeSolana,
		sign: func(ctx context.Context, message []byte) (string, error) {
			sig, err := a.provider.SignMessage(ctx, message)
			if err != nil {
				return "", signErr(err, op, "signMessage failed")
			}
			return crypto.Hex(sig), nil
		},
	}, nil
}

func (a *Solana) SignProof(ctx context.Context, account domain.AccountDescriptor, message string) (domain.AuthProof, error) {
	const op = "chain.Solana.SignProof"

	sig, err := a.provider.SignMessage(ctx, []byte(message))
	if err != nil {
		return domain.AuthProof{}, signErr(err, op, "error generating signature")
	}
	return domain.AuthProof{
		Sig:           crypto.Hex(sig),
		DerivedVia:    domain.DerivedViaSolanaSign,
		SignedMessage: message,
		Address:       account.Address,
	}, nil
}

func solanaKey(address string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errInvalidSolanaAddress
	}
	return ed25519.PublicKey(raw), nil
}

package chain

import (
	"context"

	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// Tezos adapts a Beacon-style wallet. The key network has no Tezos dialect,
// so Tezos accounts can hold sessions but not AuthProofs.
type Tezos struct {
	provider TezosProvider
}

var _ Adapter = (*Tezos)(nil)

func NewTezos(p TezosProvider) *Tezos { return &Tezos{provider: p} }

func (a *Tezos) Namespace() domain.Namespace { return domain.NamespaceTezos }

// ResolveAccount uses the active account, requesting permissions when none is active.
func (a *Tezos) ResolveAccount(ctx context.Context) (domain.AccountDescriptor, error) {
	const op = "chain.Tezos.ResolveAccount"

	addr, ok, err := a.provider.ActiveAccount(ctx)
	if err != nil {
		return domain.AccountDescriptor{}, providerErr(err, op, "couldn't read active tezos account")
	}
	if !ok {
		addr, err = a.provider.RequestPermissions(ctx)
		if err != nil {
			return domain.AccountDescriptor{}, providerErr(err, op, "tezos permission request failed")
		}
	}
	if addr == "" {
		return domain.AccountDescriptor{}, failure.New(failure.ProviderUnavailable, op, "wallet returned no address")
	}
	return domain.AccountDescriptor{
		Address:   addr,
		Namespace: domain.NamespaceTezos,
		Reference: ReferenceTezos,
	}, nil
}

func (a *Tezos) AuthMethod(_ context.Context, account domain.AccountDescriptor) (AuthMethod, error) {
	const op = "chain.Tezos.AuthMethod"

	if account.Namespace != domain.NamespaceTezos || account.Address == "" {
		return nil, failure.New(failure.CredentialConstructionFailed, op, "not a tezos account")
	}
	return signFunc{
		scheme: SchemeTezos,
		sign: func(ctx context.Context, message []byte) (string, error) {
			sig, err := a.provider.SignPayload(ctx, message)
			if err != nil {
				return "", signErr(err, op, "signPayload failed")
			}
			return sig, nil
		},
	}, nil
}

package chain

import (
	"context"

	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// Stacks adapts a Stacks Connect wallet. Like Tezos, it has no key network
// dialect.
type Stacks struct {
	provider StacksProvider
}

var _ Adapter = (*Stacks)(nil)

func NewStacks(p StacksProvider) *Stacks { return &Stacks{provider: p} }

func (a *Stacks) Namespace() domain.Namespace { return domain.NamespaceStacks }

func (a *Stacks) ResolveAccount(ctx context.Context) (domain.AccountDescriptor, error) {
	const op = "chain.Stacks.ResolveAccount"

	addr, err := a.provider.Address(ctx)
	if err != nil {
		return domain.AccountDescriptor{}, providerErr(err, op, "couldn't read stacks address")
	}
	if addr == "" {
		return domain.AccountDescriptor{}, failure.New(failure.ProviderUnavailable, op, "wallet returned no address")
	}
	return domain.AccountDescriptor{
		Address:   addr,
		Namespace: domain.NamespaceStacks,
		Reference: ReferenceStacks,
	}, nil
}

func (a *Stacks) AuthMethod(_ context.Context, account domain.AccountDescriptor) (AuthMethod, error) {
	const op = "chain.Stacks.AuthMethod"

	if account.Namespace != domain.NamespaceStacks || account.Address == "" {
		return nil, failure.New(failure.CredentialConstructionFailed, op, "not a stacks account")
	}
	return signFunc{
		scheme: SchemeStacks,
		sign: func(ctx context.Context, message []byte) (string, error) {
			sig, err := a.provider.SignMessage(ctx, string(message))
			if err != nil {
				return "", signErr(err, op, "signMessage failed")
			}
			return sig, nil
		},
	}, nil
}

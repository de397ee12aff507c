package chain

import (
	"context"
	"strings"

	"gatekey/internal/crypto"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// EVM adapts an EIP-1193 wallet.
type EVM struct {
	provider EVMProvider
}

var (
	_ Adapter     = (*EVM)(nil)
	_ ProofSigner = (*EVM)(nil)
)

// NewEVM returns the adapter for p.
func NewEVM(p EVMProvider) *EVM { return &EVM{provider: p} }

func (a *EVM) Namespace() domain.Namespace { return domain.NamespaceEIP155 }

// ResolveAccount enables the wallet and returns its first address,
// lowercased, on the mainnet reference. Callers may re-point the reference
// with a DefaultChainPolicy.
func (a *EVM) ResolveAccount(ctx context.Context) (domain.AccountDescriptor, error) {
	const op = "chain.EVM.ResolveAccount"

	addrs, err := a.provider.Enable(ctx)
	if err != nil {
		return domain.AccountDescriptor{}, providerErr(err, op, "error enabling ethereum provider")
	}
	if len(addrs) == 0 || addrs[0] == "" {
		return domain.AccountDescriptor{}, failure.New(failure.ProviderUnavailable, op, "provider returned no accounts")
	}
	return domain.AccountDescriptor{
		Address:   strings.ToLower(addrs[0]),
		Namespace: domain.NamespaceEIP155,
		Reference: ReferenceEthereum,
	}, nil
}

func (a *EVM) AuthMethod(_ context.Context, account domain.AccountDescriptor) (AuthMethod, error) {
	const op = "chain.EVM.AuthMethod"

	if account.Namespace != domain.NamespaceEIP155 || !isHexAddress(account.Address) {
		return nil, failure.New(failure.CredentialConstructionFailed, op, "not an ethereum account")
	}
	return signFunc{
		scheme: SchemeEIP191,
		sign: func(ctx context.Context, message []byte) (string, error) {
			sig, err := a.provider.PersonalSign(ctx, message, account.Address)
			if err != nil {
				return "", signErr(err, op, "personal_sign failed")
			}
			return "0x" + crypto.Hex(sig), nil
		},
	}, nil
}

func (a *EVM) SignProof(ctx context.Context, account domain.AccountDescriptor, message string) (domain.AuthProof, error) {
	const op = "chain.EVM.SignProof"

	sig, err := a.provider.PersonalSign(ctx, []byte(message), account.Address)
	if err != nil {
		return domain.AuthProof{}, signErr(err, op, "error generating signature")
	}
	return domain.AuthProof{
		Sig:           "0x" + crypto.Hex(sig),
		DerivedVia:    domain.DerivedViaPersonalSign,
		SignedMessage: message,
		Address:       account.Address,
	}, nil
}

func isHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return false
	}
	_, err := crypto.FromHex(s)
	return err == nil
}

package chain

import (
	"context"
	"errors"
	"strings"

	"gatekey/internal/domain"
	"gatekey/internal/failure"
)

// Chain tags accepted by Select.
const (
	TagEthereum = "ethereum"
	TagSolana   = "solana"
	TagTezos    = "tezos"
	TagStacks   = "stacks"
	TagKey      = "key"
)

// Mainnet references used when minting identities.
const (
	ReferenceEthereum = "1"
	ReferenceSolana   = "4sGjMW1sUnHzSxGspuhpqLDx6wiyjNtZ"
	ReferenceTezos    = "NetXdQprcVkpaWU"
	ReferenceStacks   = "1"
)

// Signature schemes recorded on capabilities.
const (
	SchemeEIP191  = "eip191"
	SchemeSolana  = "solana:ed25519"
	SchemeTezos   = "tezos:signPayload"
	SchemeStacks  = "stacks:signMessage"
	SchemeEd25519 = "ed25519"
)

// Adapter turns a wallet provider into an account and a signing method.
type Adapter interface {
	Namespace() domain.Namespace
	ResolveAccount(ctx context.Context) (domain.AccountDescriptor, error)
	AuthMethod(ctx context.Context, account domain.AccountDescriptor) (AuthMethod, error)
}

// AuthMethod signs capability messages on behalf of an account.
type AuthMethod interface {
	Scheme() string
	// Sign returns the encoded signature over message.
	Sign(ctx context.Context, message []byte) (string, error)
}

// ProofSigner is implemented by adapters whose chains the key network
// evaluates conditions for.
type ProofSigner interface {
	SignProof(ctx context.Context, account domain.AccountDescriptor, message string) (domain.AuthProof, error)
}

// Select returns the adapter for tag backed by provider. The provider must
// implement the matching provider interface; the key tag takes a 32-byte
// seed or an existing *Key.
func Select(tag string, provider any) (Adapter, error) {
	const op = "chain.Select"

	if provider == nil {
		return nil, failure.New(failure.ProviderUnavailable, op, "no wallet provider supplied")
	}
	switch strings.ToLower(tag) {
	case TagEthereum, "evm", string(domain.NamespaceEIP155):
		p, ok := provider.(EVMProvider)
		if !ok {
			return nil, failure.New(failure.ProviderUnavailable, op, "provider does not support ethereum")
		}
		return NewEVM(p), nil
	case TagSolana:
		p, ok := provider.(SolanaProvider)
		if !ok {
			return nil, failure.New(failure.ProviderUnavailable, op, "provider does not support solana")
		}
		return NewSolana(p), nil
	case TagTezos:
		p, ok := provider.(TezosProvider)
		if !ok {
			return nil, failure.New(failure.ProviderUnavailable, op, "provider does not support tezos")
		}
		return NewTezos(p), nil
	case TagStacks:
		p, ok := provider.(StacksProvider)
		if !ok {
			return nil, failure.New(failure.ProviderUnavailable, op, "provider does not support stacks")
		}
		return NewStacks(p), nil
	case TagKey:
		switch p := provider.(type) {
		case *Key:
			return p, nil
		case []byte:
			return NewKey(p)
		default:
			return nil, failure.New(failure.ProviderUnavailable, op, "key sessions need a seed")
		}
	default:
		return nil, failure.New(failure.InvalidInput, op, "unsupported chain "+tag)
	}
}

// providerErr classifies a failure from enabling or connecting a wallet.
func providerErr(err error, op, msg string) error {
	if errors.Is(err, ErrUserRejected) {
		return failure.Wrap(err, failure.ProviderRejected, op, msg)
	}
	return failure.Wrap(err, failure.ProviderUnavailable, op, msg)
}

// signErr classifies a failure from a signing request.
func signErr(err error, op, msg string) error {
	if errors.Is(err, ErrUserRejected) {
		return failure.Wrap(err, failure.ProviderRejected, op, msg)
	}
	return failure.Wrap(err, failure.SessionAuthorizationFailed, op, msg)
}

type signFunc struct {
	scheme string
	sign   func(ctx context.Context, message []byte) (string, error)
}

func (s signFunc) Scheme() string { return s.scheme }

func (s signFunc) Sign(ctx context.Context, message []byte) (string, error) {
	return s.sign(ctx, message)
}
